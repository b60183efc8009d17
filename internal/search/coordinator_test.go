package search

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"SeedSleuth/internal/chain"
	"SeedSleuth/internal/mnemonic"
	"SeedSleuth/internal/oracle"
	"SeedSleuth/internal/wallet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const abandonAbout = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

// stubOracle counts calls, in total and per chain, and from the hitFrom-th
// call onward reports a positive balance on hitChain (every chain when
// hitAny is set).
type stubOracle struct {
	calls    atomic.Int64
	perChain [chain.Count]atomic.Int64
	hitFrom  int64
	hitChain chain.ID
	hitAny   bool
	delay    time.Duration
}

func (s *stubOracle) Balance(ctx context.Context, c chain.ID, address string) (oracle.Amount, error) {
	n := s.calls.Add(1)
	s.perChain[c].Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return oracle.Zero(c), ctx.Err()
		}
	}
	if s.hitFrom > 0 && n >= s.hitFrom && (s.hitAny || c == s.hitChain) {
		return oracle.NewAmount(c, big.NewInt(n)), nil
	}
	return oracle.Zero(c), nil
}

// fakeDeriver skips the real key derivation and fills in fake addresses.
type fakeDeriver struct{}

func (fakeDeriver) DeriveAll(m mnemonic.Mnemonic) (wallet.Wallets, error) {
	var ws wallet.Wallets
	for _, c := range chain.All() {
		ws[c] = wallet.WalletKey{Chain: c, Address: fmt.Sprintf("%s:%d", c, len(m))}
	}
	return ws, nil
}

type stubInsights struct {
	explains, summaries atomic.Int32
	err                 error
}

func (s *stubInsights) Explain(_ context.Context, addrs map[chain.ID]string) (string, error) {
	s.explains.Add(1)
	if s.err != nil {
		return "", s.err
	}
	return fmt.Sprintf("%d addresses", len(addrs)), nil
}

func (s *stubInsights) Summarize(_ context.Context, bals map[chain.ID]oracle.Amount) (string, error) {
	s.summaries.Add(1)
	if s.err != nil {
		return "", s.err
	}
	return fmt.Sprintf("%d balances", len(bals)), nil
}

func newGen(seed uint64) *mnemonic.Generator {
	return mnemonic.NewGenerator(mnemonic.NewSeededReader(seed), mnemonic.CompletionPad)
}

func waitDone(t *testing.T, c *Coordinator) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, c.Wait(ctx))
}

func TestSingleWinner(t *testing.T) {
	orc := &stubOracle{hitFrom: 40, hitAny: true}
	ins := &stubInsights{}
	c := New(newGen(1), fakeDeriver{}, orc, ins)

	require.NoError(t, c.Start(context.Background(), Config{
		Words:   mnemonic.Words12,
		Chains:  []chain.ID{chain.Ethereum, chain.Bitcoin},
		Workers: 8,
	}))
	waitDone(t, c)

	s := c.Snapshot()
	assert.Equal(t, Idle, s.State)
	require.NotNil(t, s.Result)
	assert.True(t, s.Result.Frozen)
	assert.NotEmpty(t, s.Result.Funded())
	assert.True(t, s.Result.Mnemonic.Valid())
	for _, b := range s.Result.Balances {
		assert.Equal(t, Checked, b.Status, b.Chain.String())
	}

	assert.Equal(t, int32(1), ins.explains.Load())
	assert.Equal(t, int32(1), ins.summaries.Load())
	assert.Equal(t, InsightReady, s.Result.Explanation.State)
	assert.Equal(t, "6 addresses", s.Result.Explanation.Text)
	assert.Equal(t, "6 balances", s.Result.Summary.Text)

	// the frozen result is final
	assert.Same(t, s.Result, c.Snapshot().Result)

	// nothing queries the oracle once the session has drained
	drained := orc.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, drained, orc.calls.Load())
	assert.Equal(t, uint64(drained), c.Snapshot().Checks)

	// quick checks only touch the selected chains, so every other chain was
	// queried by the single full check and nothing else
	var rest int64
	for _, ch := range chain.All() {
		if ch == chain.Ethereum || ch == chain.Bitcoin {
			continue
		}
		assert.Equal(t, int64(1), orc.perChain[ch].Load(), ch.String())
		rest += orc.perChain[ch].Load()
	}
	assert.Equal(t, int64(chain.Count-2), rest)
}

func TestFullCheckKeepsQuickCheckAnswers(t *testing.T) {
	orc := &stubOracle{hitFrom: 1, hitChain: chain.Solana}
	c := New(newGen(2), fakeDeriver{}, orc, nil)

	require.NoError(t, c.Start(context.Background(), Config{
		Chains:  []chain.ID{chain.Solana},
		Workers: 1,
	}))
	waitDone(t, c)

	res := c.Snapshot().Result
	require.NotNil(t, res)
	assert.Equal(t, []chain.ID{chain.Solana}, res.Funded())
	// one quick check plus one query for each other chain
	assert.Equal(t, int64(chain.Count), orc.calls.Load())
	assert.Equal(t, "0.000000001", res.Balances[chain.Solana].Amount.String())
}

func TestStopHaltsWorkers(t *testing.T) {
	orc := &stubOracle{delay: time.Millisecond}
	c := New(newGen(3), fakeDeriver{}, orc, nil)
	require.NoError(t, c.Start(context.Background(), Config{Workers: 4}))

	require.Eventually(t, func() bool { return orc.calls.Load() > 20 }, 5*time.Second, time.Millisecond)
	assert.Equal(t, Searching, c.Snapshot().State)

	c.Stop()
	waitDone(t, c)
	c.Stop()

	s := c.Snapshot()
	assert.Equal(t, Stopped, s.State)
	assert.Positive(t, s.Attempts)

	drained := orc.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, drained, orc.calls.Load())
	assert.Equal(t, uint64(drained), s.Checks)
	if s.Result != nil {
		assert.False(t, s.Result.Frozen)
	}
}

func TestContextCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := New(newGen(4), fakeDeriver{}, &stubOracle{}, nil)
	require.NoError(t, c.Start(ctx, Config{Workers: 2}))

	cancel()
	waitDone(t, c)
	assert.Equal(t, Stopped, c.Snapshot().State)
}

func TestZeroOracleKeepsSearching(t *testing.T) {
	orc := &stubOracle{}
	c := New(newGen(5), wallet.NewEngine(""), orc, nil)

	require.NoError(t, c.Start(context.Background(), Config{
		Partial: mnemonic.ParseWords(abandonAbout),
		Words:   mnemonic.Words12,
		Chains:  []chain.ID{chain.Ethereum},
		Workers: 2,
	}))
	require.Eventually(t, func() bool { return c.Snapshot().Result != nil }, 10*time.Second, 5*time.Millisecond)

	s := c.Snapshot()
	assert.Equal(t, Searching, s.State)
	assert.Equal(t, "0x9858EfFD232B4033E47d90003D41EC34EcaEda94", s.Result.Wallets.Get(chain.Ethereum).Address)
	assert.Equal(t, Checked, s.Result.Balances[chain.Ethereum].Status)
	assert.Equal(t, Pending, s.Result.Balances[chain.Bitcoin].Status)
	assert.Empty(t, s.Result.Funded())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, Searching, c.Snapshot().State)

	c.Stop()
	waitDone(t, c)
	assert.Equal(t, Stopped, c.Snapshot().State)
}

func TestInsightFailureLeavesAbsent(t *testing.T) {
	ins := &stubInsights{err: errors.New("quota exceeded")}
	c := New(newGen(6), fakeDeriver{}, &stubOracle{hitFrom: 1, hitAny: true}, ins)
	require.NoError(t, c.Start(context.Background(), Config{Workers: 3}))
	waitDone(t, c)

	res := c.Snapshot().Result
	require.NotNil(t, res)
	assert.Equal(t, InsightAbsent, res.Explanation.State)
	assert.Equal(t, InsightAbsent, res.Summary.State)
	assert.Empty(t, res.Explanation.Text)
	assert.Equal(t, int32(1), ins.explains.Load())
	assert.Equal(t, Idle, c.Snapshot().State)

	// no requester at all behaves the same
	c = New(newGen(7), fakeDeriver{}, &stubOracle{hitFrom: 1, hitAny: true}, nil)
	require.NoError(t, c.Start(context.Background(), Config{Workers: 1}))
	waitDone(t, c)
	assert.Equal(t, InsightAbsent, c.Snapshot().Result.Summary.State)
}

func TestDegradedBalancesAreUncertain(t *testing.T) {
	b := balancerFunc(func(_ context.Context, c chain.ID, _ string) (oracle.Amount, error) {
		if c == chain.Cardano {
			return oracle.NewAmount(c, big.NewInt(5)), nil
		}
		return oracle.Zero(c), oracle.ErrUnavailable
	})
	c := New(newGen(8), fakeDeriver{}, b, nil)
	require.NoError(t, c.Start(context.Background(), Config{Workers: 2}))
	waitDone(t, c)

	res := c.Snapshot().Result
	require.NotNil(t, res)
	assert.Equal(t, []chain.ID{chain.Cardano}, res.Funded())
	assert.False(t, res.Balances[chain.Cardano].Uncertain)
	assert.True(t, res.Balances[chain.Bitcoin].Uncertain)
	assert.False(t, res.Balances[chain.Bitcoin].Amount.IsPositive())
}

type balancerFunc func(ctx context.Context, c chain.ID, address string) (oracle.Amount, error)

func (f balancerFunc) Balance(ctx context.Context, c chain.ID, address string) (oracle.Amount, error) {
	return f(ctx, c, address)
}

func TestStartLifecycle(t *testing.T) {
	c := New(newGen(9), fakeDeriver{}, &stubOracle{}, nil)
	assert.Equal(t, Idle, c.Snapshot().State)
	select {
	case <-c.Done():
	default:
		t.Fatal("Done should be closed before any session")
	}
	c.Stop()

	require.NoError(t, c.Start(context.Background(), Config{Workers: 1}))
	assert.ErrorIs(t, c.Start(context.Background(), Config{Workers: 1}), ErrBusy)

	c.Stop()
	waitDone(t, c)
	first := c.Snapshot()
	assert.Equal(t, Stopped, first.State)

	require.NoError(t, c.Start(context.Background(), Config{Workers: 1}))
	assert.Equal(t, Searching, c.Snapshot().State)
	c.Stop()
	waitDone(t, c)
}

func TestStartRejectsBadConfig(t *testing.T) {
	c := New(newGen(10), fakeDeriver{}, &stubOracle{}, nil)

	err := c.Start(context.Background(), Config{Words: 15})
	assert.Error(t, err)

	err = c.Start(context.Background(), Config{Partial: []string{"abandon", "notaword"}})
	assert.ErrorIs(t, err, mnemonic.ErrNoCandidate)

	bad := mnemonic.ParseWords("abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon")
	err = c.Start(context.Background(), Config{Partial: bad, Words: mnemonic.Words12})
	assert.ErrorIs(t, err, mnemonic.ErrNoCandidate)

	err = c.Start(context.Background(), Config{Chains: []chain.ID{chain.ID(99)}})
	assert.Error(t, err)

	assert.Equal(t, Idle, c.Snapshot().State)
}

func TestConfigNormalize(t *testing.T) {
	cfg, err := Config{
		Partial: []string{"Abandon  ABOUT", " zoo"},
		Chains:  []chain.ID{chain.Bitcoin, chain.Bitcoin, chain.Solana},
	}.normalize()
	require.NoError(t, err)
	assert.Equal(t, []string{"abandon", "about", "zoo"}, cfg.Partial)
	assert.Equal(t, []chain.ID{chain.Bitcoin, chain.Solana}, cfg.Chains)
	assert.Equal(t, mnemonic.Words12, cfg.Words)
	assert.Positive(t, cfg.Workers)
	assert.Equal(t, DefaultProgressEvery, cfg.ProgressEvery)

	cfg, err = Config{}.normalize()
	require.NoError(t, err)
	assert.Equal(t, chain.All(), cfg.Chains)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "fetching_insights", FetchingInsights.String())
	assert.Equal(t, "state(42)", State(42).String())
	assert.True(t, Verifying.Running())
	assert.False(t, Stopped.Running())
}

func TestHumanDuration(t *testing.T) {
	assert.Equal(t, "42s", humanDuration(42*time.Second))
	assert.Equal(t, "3m05s", humanDuration(3*time.Minute+5*time.Second))
	assert.Equal(t, "2h01m09s", humanDuration(2*time.Hour+time.Minute+9*time.Second))
}
