package search

import (
	"fmt"
	"time"

	"SeedSleuth/internal/chain"
	"SeedSleuth/internal/mnemonic"
	"SeedSleuth/internal/oracle"
	"SeedSleuth/internal/wallet"
)

type State int32

const (
	Idle State = iota
	Searching
	Found
	Verifying
	FetchingInsights
	Stopped
)

var stateNames = [...]string{"idle", "searching", "found", "verifying", "fetching_insights", "stopped"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int32(s))
	}
	return stateNames[s]
}

// Running reports whether workers or the winner may still be active.
func (s State) Running() bool { return s != Idle && s != Stopped }

type BalanceStatus uint8

const (
	Pending BalanceStatus = iota
	Checked
)

// ChainBalance is the balance of one chain for a candidate. Uncertain means
// the oracle could not answer and Amount was degraded to zero.
type ChainBalance struct {
	Chain     chain.ID
	Amount    oracle.Amount
	Status    BalanceStatus
	Uncertain bool
}

type InsightState uint8

const (
	InsightPending InsightState = iota
	InsightReady
	InsightAbsent
)

type Insight struct {
	State InsightState
	Text  string
}

// Result is one candidate and what is known about it. Published results
// are never mutated; the winner publishes extended copies instead.
type Result struct {
	Mnemonic    mnemonic.Mnemonic
	Wallets     wallet.Wallets
	Balances    [chain.Count]ChainBalance
	Explanation Insight
	Summary     Insight

	Attempt uint64
	Elapsed time.Duration
	Frozen  bool
}

func newResult(m mnemonic.Mnemonic, ws wallet.Wallets, attempt uint64, elapsed time.Duration) *Result {
	r := &Result{Mnemonic: m, Wallets: ws, Attempt: attempt, Elapsed: elapsed}
	for _, c := range chain.All() {
		r.Balances[c] = ChainBalance{Chain: c, Amount: oracle.Zero(c)}
	}
	return r
}

// Funded returns the checked chains holding a positive balance.
func (r *Result) Funded() []chain.ID {
	var out []chain.ID
	for _, b := range r.Balances {
		if b.Status == Checked && b.Amount.IsPositive() {
			out = append(out, b.Chain)
		}
	}
	return out
}

// Checked returns the balances that have been queried, keyed by chain.
func (r *Result) Checked() map[chain.ID]oracle.Amount {
	out := make(map[chain.ID]oracle.Amount, len(r.Balances))
	for _, b := range r.Balances {
		if b.Status == Checked {
			out[b.Chain] = b.Amount
		}
	}
	return out
}

// Snapshot is a read-only view of a session.
type Snapshot struct {
	State    State
	Attempts uint64
	Checks   uint64 // balance queries issued
	Elapsed  time.Duration
	Result   *Result // latest candidate, or the frozen find; nil before the first
}
