// Package search races candidate workers against a shared stop/found
// signal. Every candidate gets a quick balance check on the selected
// chains; the first funded candidate wins, is frozen, and gets a full
// check over every chain plus insights.
package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"SeedSleuth/internal/chain"
	"SeedSleuth/internal/insight"
	"SeedSleuth/internal/mnemonic"
	"SeedSleuth/internal/oracle"
	"SeedSleuth/internal/wallet"
	"SeedSleuth/pkg/logx"

	"golang.org/x/sync/errgroup"
)

var ErrBusy = errors.New("search: session already running")

// Generator yields candidate phrases. *mnemonic.Generator satisfies it.
type Generator interface {
	Generate(partial []string, target mnemonic.WordCount) (mnemonic.Mnemonic, error)
}

// Deriver turns a phrase into keys. *wallet.Engine satisfies it.
type Deriver interface {
	DeriveAll(m mnemonic.Mnemonic) (wallet.Wallets, error)
}

type Coordinator struct {
	gen      Generator
	deriver  Deriver
	balances oracle.Balancer
	insights insight.Requester // may be nil

	mu    sync.Mutex
	state State
	run   *run
}

func New(gen Generator, d Deriver, b oracle.Balancer, r insight.Requester) *Coordinator {
	return &Coordinator{gen: gen, deriver: d, balances: b, insights: r}
}

// run is the per-session state shared by the workers.
type run struct {
	c      *Coordinator
	cfg    Config
	start  time.Time
	ctx    context.Context
	cancel context.CancelFunc

	stop, found atomic.Bool
	completed   atomic.Bool // winner path finished
	attempts    atomic.Uint64
	checks      atomic.Uint64
	elapsed     atomic.Int64 // set once drained
	latest      atomic.Pointer[Result]

	wg   sync.WaitGroup
	done chan struct{}
}

// Start begins a session. It is accepted from Idle or Stopped only.
// Cancelling ctx has the same effect as Stop.
func (c *Coordinator) Start(ctx context.Context, cfg Config) error {
	cfg, err := cfg.normalize()
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.state.Running() {
		c.mu.Unlock()
		return ErrBusy
	}
	c.state = Idle
	rctx, cancel := context.WithCancel(ctx)
	r := &run{
		c:      c,
		cfg:    cfg,
		start:  time.Now(),
		ctx:    rctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	c.run = r
	c.state = Searching
	c.mu.Unlock()

	logx.S().Infow("search started",
		"words", int(cfg.Words),
		"known_words", len(cfg.Partial),
		"chains", chainNames(cfg.Chains),
		"workers", cfg.Workers,
	)

	unwatch := context.AfterFunc(ctx, r.halt)

	statusDone := make(chan struct{})
	go func() {
		defer close(statusDone)
		r.progress()
	}()

	r.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go func(id int) {
			defer r.wg.Done()
			r.worker(id)
		}(i)
	}

	go func() {
		r.wg.Wait()
		unwatch()
		r.cancel()
		<-statusDone
		r.elapsed.Store(int64(time.Since(r.start)))

		c.mu.Lock()
		if !r.completed.Load() {
			c.state = Stopped
		}
		state := c.state
		c.mu.Unlock()

		logx.S().Infow("stopped",
			"state", state.String(),
			"elapsed", humanDuration(time.Since(r.start)),
			"attempts", r.attempts.Load(),
			"checks", r.checks.Load(),
		)
		close(r.done)
	}()
	return nil
}

// Stop signals every worker and cancels in-flight oracle calls. It is
// idempotent and safe after the session finished.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	r := c.run
	c.mu.Unlock()
	if r != nil {
		r.halt()
	}
}

func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	r, state := c.run, c.state
	c.mu.Unlock()

	s := Snapshot{State: state}
	if r == nil {
		return s
	}
	s.Attempts = r.attempts.Load()
	s.Checks = r.checks.Load()
	s.Result = r.latest.Load()
	if e := r.elapsed.Load(); e > 0 {
		s.Elapsed = time.Duration(e)
	} else {
		s.Elapsed = time.Since(r.start)
	}
	return s
}

var closedCh = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Done is closed once the current session's workers have drained.
func (c *Coordinator) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.run == nil {
		return closedCh
	}
	return c.run.done
}

// Wait blocks until the session drains or ctx ends.
func (c *Coordinator) Wait(ctx context.Context) error {
	select {
	case <-c.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// =============================== WORKERS ===============================

func (r *run) halt() {
	r.stop.Store(true)
	r.cancel()
}

func (r *run) halted() bool { return r.stop.Load() || r.found.Load() }

func (r *run) worker(id int) {
	for !r.halted() {
		n := r.attempts.Add(1)

		m, err := r.c.gen.Generate(r.cfg.Partial, r.cfg.Words)
		if err != nil {
			if !errors.Is(err, mnemonic.ErrNoCandidate) {
				logx.S().Errorw("mnemonic generate failed", "worker", id, "err", err)
			}
			continue
		}
		if !m.Valid() {
			continue
		}

		ws, err := r.c.deriver.DeriveAll(m)
		if err != nil {
			var de *wallet.DerivationError
			switch {
			case errors.As(err, &de):
				logx.S().Warnw("derivation failed", "worker", id, "chain", de.Chain.String(), "err", de.Err)
			case !errors.Is(err, wallet.ErrInvalidMnemonic):
				logx.S().Warnw("derivation failed", "worker", id, "err", err)
			}
			continue
		}

		if r.halted() {
			return
		}
		res := newResult(m, ws, n, time.Since(r.start))
		r.check(res, r.cfg.Chains, true)
		if r.halted() {
			return
		}

		if len(res.Funded()) == 0 {
			if !r.publish(res) {
				return
			}
			continue
		}

		if !r.found.CompareAndSwap(false, true) {
			return
		}
		r.win(res)
		return
	}
}

// check queries chains concurrently and records the answers in res. With
// gate set, a query is skipped once the session is halted.
func (r *run) check(res *Result, chains []chain.ID, gate bool) {
	var g errgroup.Group
	for _, c := range chains {
		g.Go(func() error {
			if gate && r.halted() {
				return nil
			}
			r.checks.Add(1)
			amt, uncertain := oracle.Resolve(r.ctx, r.c.balances, c, res.Wallets.Get(c).Address)
			res.Balances[c] = ChainBalance{Chain: c, Amount: amt, Status: Checked, Uncertain: uncertain}
			return nil
		})
	}
	_ = g.Wait()
}

// publish makes res the latest progress snapshot unless a result has
// already been frozen.
func (r *run) publish(res *Result) bool {
	for {
		cur := r.latest.Load()
		if cur != nil && cur.Frozen {
			return false
		}
		if r.latest.CompareAndSwap(cur, res) {
			return true
		}
	}
}

// extend publishes a modified copy of the frozen result. Only the winner
// calls it.
func (r *run) extend(fn func(*Result)) *Result {
	next := *r.latest.Load()
	fn(&next)
	r.latest.Store(&next)
	return &next
}

func (r *run) win(res *Result) {
	res.Frozen = true
	res.Explanation.State = InsightPending
	res.Summary.State = InsightPending
	for {
		cur := r.latest.Load()
		if r.latest.CompareAndSwap(cur, res) {
			break
		}
	}
	r.c.setState(Found)

	funded := res.Funded()
	logx.S().Infow("FOUND",
		"attempt", res.Attempt,
		"elapsed", humanDuration(res.Elapsed),
		"chains", chainNames(funded),
		"addresses", res.Wallets.Addresses(funded...),
	)

	r.c.setState(Verifying)
	var rest []chain.ID
	for _, b := range res.Balances {
		if b.Status != Checked {
			rest = append(rest, b.Chain)
		}
	}
	res = r.extend(func(next *Result) { r.check(next, rest, false) })

	r.c.setState(FetchingInsights)
	explain, summary := r.fetchInsights(res)
	r.extend(func(next *Result) {
		next.Explanation = explain
		next.Summary = summary
	})

	r.completed.Store(true)
	r.c.setState(Idle)
}

func (r *run) fetchInsights(res *Result) (explain, summary Insight) {
	explain.State, summary.State = InsightAbsent, InsightAbsent
	req := r.c.insights
	if req == nil {
		return explain, summary
	}

	var g errgroup.Group
	g.Go(func() error {
		txt, err := req.Explain(r.ctx, res.Wallets.Addresses())
		if err != nil {
			logx.S().Warnw("explain failed", "err", err)
			return nil
		}
		explain = Insight{State: InsightReady, Text: txt}
		return nil
	})
	g.Go(func() error {
		txt, err := req.Summarize(r.ctx, res.Checked())
		if err != nil {
			logx.S().Warnw("summarize failed", "err", err)
			return nil
		}
		summary = Insight{State: InsightReady, Text: txt}
		return nil
	})
	_ = g.Wait()
	return explain, summary
}

func (r *run) progress() {
	ticker := time.NewTicker(r.cfg.ProgressEvery)
	defer ticker.Stop()
	for {
		select {
		case <-r.ctx.Done():
			return
		case now := <-ticker.C:
			elapsed := now.Sub(r.start)
			rate := 0.0
			n := r.attempts.Load()
			if elapsed > 0 {
				rate = float64(n) / elapsed.Seconds()
			}
			logx.S().Infow("progress",
				"attempts", n,
				"checks", r.checks.Load(),
				"rate_per_sec", fmt.Sprintf("%.2f", rate),
				"elapsed", humanDuration(elapsed),
			)
		}
	}
}

// ------------------------------- helpers ------------------------------------

func chainNames(ids []chain.ID) []string {
	out := make([]string, len(ids))
	for i, c := range ids {
		out[i] = c.String()
	}
	return out
}

func humanDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
}
