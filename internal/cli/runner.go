package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"SeedSleuth/internal/chain"
	"SeedSleuth/internal/insight"
	"SeedSleuth/internal/logsink"
	"SeedSleuth/internal/mnemonic"
	"SeedSleuth/internal/oracle"
	"SeedSleuth/internal/search"
	"SeedSleuth/internal/wallet"
	"SeedSleuth/pkg/appcfg"
	"SeedSleuth/pkg/config"
	"SeedSleuth/pkg/i18n"
	"SeedSleuth/pkg/logx"

	"golang.org/x/term"
)

type Runner struct {
	in      *bufio.Reader
	out     io.Writer
	stdinFd int // -1 when input is not a terminal
	msg     i18n.Messages

	app       *appcfg.Config
	providers *config.ProvidersConfig

	gen      *mnemonic.Generator
	engine   *wallet.Engine
	oracle   oracle.Balancer
	insights insight.Requester
}

func NewRunner(app *appcfg.Config, providers *config.ProvidersConfig, orc oracle.Balancer) (*Runner, error) {
	r, err := newRunner(os.Stdin, os.Stdout, app, providers, orc)
	if err != nil {
		return nil, err
	}
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		r.stdinFd = fd
	}
	return r, nil
}

func newRunner(in io.Reader, out io.Writer, app *appcfg.Config, providers *config.ProvidersConfig, orc oracle.Balancer) (*Runner, error) {
	completion, err := mnemonic.ParseCompletion(app.Completion)
	if err != nil {
		return nil, err
	}
	return &Runner{
		in:        bufio.NewReader(in),
		out:       out,
		stdinFd:   -1,
		msg:       i18n.Get(app.Language),
		app:       app,
		providers: providers,
		gen:       mnemonic.NewGenerator(nil, completion),
		engine:    wallet.NewEngine(app.Passphrase),
		oracle:    orc,
		insights:  insight.NewTemplate(),
	}, nil
}

func (r *Runner) prompt() string {
	text, _ := r.in.ReadString('\n')
	return strings.TrimSpace(text)
}

// promptSecret reads without echo when stdin is a terminal.
func (r *Runner) promptSecret() string {
	if r.stdinFd < 0 {
		return r.prompt()
	}
	b, err := term.ReadPassword(r.stdinFd)
	fmt.Fprintln(r.out)
	if err != nil {
		logx.S().Warnw("read hidden input failed", "err", err)
		return ""
	}
	return strings.TrimSpace(string(b))
}

func (r *Runner) printf(format string, a ...any) { fmt.Fprintf(r.out, format, a...) }
func (r *Runner) print(a ...any)                 { fmt.Fprint(r.out, a...) }
func (r *Runner) println(a ...any)               { fmt.Fprintln(r.out, a...) }

func (r *Runner) Run() {
	for {
		r.println()
		r.println(r.msg.MenuTitle)
		r.println(r.msg.MenuSearch)
		r.println(r.msg.MenuDerive)
		r.println(r.msg.MenuProviders)
		r.println(r.msg.MenuExit)
		r.printf("> ")
		choice := strings.ToLower(r.prompt())
		switch choice {
		case "1":
			r.handleSearch()
		case "2":
			r.handleDerive()
		case "3":
			r.handleProviders()
		case "":
			return
		default:
			r.println(r.msg.UnknownCommand, choice)
		}
	}
}

func (r *Runner) handleSearch() {
	r.print(r.msg.PartialPrompt)
	partial := mnemonic.ParseWords(r.promptSecret())

	r.print(r.msg.WordsPrompt)
	words := mnemonic.Words12
	if s := r.prompt(); s != "" {
		words = mnemonic.WordCount(atoiSafe(s))
	}

	r.print(r.msg.ChainsPrompt)
	chains, err := chain.ParseList(r.prompt())
	if err != nil {
		r.printf(r.msg.BadInput, err)
		return
	}

	cfg := search.Config{
		Partial:       partial,
		Words:         words,
		Chains:        chains,
		Workers:       r.app.Cores,
		ProgressEvery: r.app.ProgressInterval,
	}

	// logs/search/<DD.MM.YYYY>/search_<HH-MM-SS>/app.log
	dir, err := logsink.MakeRunDir(r.app.LogsDir, "search", time.Now())
	if err != nil {
		r.printf(r.msg.BadInput, err)
		return
	}
	if err := logx.Init(logx.Config{
		Level:                r.app.LogLevel,
		FilePath:             logsink.LogPath(dir),
		HideSecretsInConsole: r.app.HideSecretsInConsole,
	}); err != nil {
		logx.S().Errorw("logx init for search failed", "err", err)
	}

	ctx, cancel := withInterrupt(context.Background())
	defer cancel()

	co := search.New(r.gen, r.engine, r.oracle, r.insights)
	if err := co.Start(ctx, cfg); err != nil {
		r.printf(r.msg.BadInput, err)
		return
	}
	r.printf(r.msg.SearchStarted, dir)
	<-co.Done()

	r.printSnapshot(co.Snapshot())
}

func (r *Runner) printSnapshot(s search.Snapshot) {
	if s.Result == nil || !s.Result.Frozen {
		r.printf(r.msg.SearchStopped, s.Attempts, s.Elapsed.Round(time.Second))
		return
	}
	res := s.Result
	r.printf(r.msg.SearchFound, res.Attempt, res.Elapsed.Round(time.Second))
	r.printf(r.msg.SearchSummary, s.State, s.Attempts, s.Checks)
	r.printWallets(res.Mnemonic, &res.Wallets, func(c chain.ID) string {
		b := res.Balances[c]
		switch {
		case b.Status != search.Checked:
			return r.msg.NotChecked
		case b.Uncertain:
			return "0 " + c.Symbol() + " (" + r.msg.Uncertain + ")"
		default:
			return b.Amount.String() + " " + c.Symbol()
		}
	})

	if res.Explanation.State == search.InsightReady {
		r.println(r.msg.ExplanationTitle)
		r.println(res.Explanation.Text)
	}
	if res.Summary.State == search.InsightReady {
		r.println(r.msg.SummaryTitle)
		r.println(res.Summary.Text)
	}
}

// printWallets writes one block per chain. Secrets go to the terminal only,
// never to the logger, and only when console secrets are not hidden.
func (r *Runner) printWallets(m mnemonic.Mnemonic, ws *wallet.Wallets, balance func(chain.ID) string) {
	show := !r.app.HideSecretsInConsole
	if show {
		r.printf("mnemonic: %s\n", m)
	} else {
		r.println(r.msg.SecretsHidden)
	}
	for _, c := range chain.All() {
		k := ws.Get(c)
		r.printf("[%s] %s\n", c.Symbol(), c.Label())
		r.printf("  address: %s\n", k.Address)
		r.printf("  path:    %s\n", k.Path)
		if balance != nil {
			r.printf("  balance: %s\n", balance(c))
		}
		if show {
			r.printf("  private: %s\n", k.PrivateKey)
		}
	}
}

func (r *Runner) handleDerive() {
	r.print(r.msg.PhrasePrompt)
	m := mnemonic.Normalize(r.promptSecret())

	ws, err := r.engine.DeriveAll(m)
	if err != nil {
		r.printf(r.msg.InvalidPhrase, err)
		return
	}

	r.print(r.msg.CheckPrompt)
	yn := strings.ToLower(r.prompt())
	if yn != "y" && yn != "yes" {
		r.printWallets(m, &ws, nil)
		return
	}

	ctx, cancel := withInterrupt(context.Background())
	defer cancel()
	var balances [chain.Count]string
	for _, c := range chain.All() {
		amt, uncertain := oracle.Resolve(ctx, r.oracle, c, ws.Get(c).Address)
		balances[c] = amt.String() + " " + c.Symbol()
		if uncertain {
			balances[c] += " (" + r.msg.Uncertain + ")"
		}
	}
	r.printWallets(m, &ws, func(c chain.ID) string { return balances[c] })
}

func (r *Runner) handleProviders() {
	p := r.providers
	r.printf(r.msg.ProvidersHeader, p.Timeout)
	eps := p.Endpoints()
	for _, c := range chain.All() {
		ep := eps[c.String()]
		if ep.Disabled {
			r.printf(r.msg.ProviderOff, c.String())
			continue
		}
		r.printf(r.msg.ProviderLine, c.String(), ep.URL, ep.RatePerSec, ep.APIKey != "")
	}
}

func atoiSafe(s string) int {
	var n int
	_, _ = fmt.Sscan(s, &n)
	return n
}

// withInterrupt cancels the context on SIGINT/SIGTERM; the search
// coordinator treats that as Stop.
func withInterrupt(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
