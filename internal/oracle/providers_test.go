package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"SeedSleuth/internal/chain"
	"SeedSleuth/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// jsonRPCServer answers single JSON-RPC 2.0 calls with whatever result
// returns for the method.
func jsonRPCServer(t *testing.T, result func(method string, params []json.RawMessage) any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage   `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result(req.Method, req.Params),
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEVMProvider(t *testing.T) {
	const addr = "0x9858EfFD232B4033E47d90003D41EC34EcaEda94"
	srv := jsonRPCServer(t, func(method string, params []json.RawMessage) any {
		assert.Equal(t, "eth_getBalance", method)
		if assert.NotEmpty(t, params) {
			var got string
			assert.NoError(t, json.Unmarshal(params[0], &got))
			assert.True(t, strings.EqualFold(addr, got), got)
		}
		return "0xde0b6b3a7640000" // 1 ether
	})

	p := NewEVMProvider(srv.URL)
	defer p.Close()
	wei, err := p.Balance(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, "1", NewAmount(chain.Ethereum, wei).String())

	_, err = p.Balance(context.Background(), "bc1qnotevm")
	assert.Error(t, err)
}

func TestSolanaProvider(t *testing.T) {
	const addr = "11111111111111111111111111111111"
	srv := jsonRPCServer(t, func(method string, params []json.RawMessage) any {
		assert.Equal(t, "getBalance", method)
		if assert.NotEmpty(t, params) {
			var got string
			assert.NoError(t, json.Unmarshal(params[0], &got))
			assert.Equal(t, addr, got)
		}
		return map[string]any{
			"context": map[string]any{"slot": 1},
			"value":   2500000000,
		}
	})

	lamports, err := NewSolanaProvider(srv.URL, 0).Balance(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, "2.5", NewAmount(chain.Solana, lamports).String())

	_, err = NewSolanaProvider(srv.URL, 0).Balance(context.Background(), "0xnotbase58")
	assert.Error(t, err)
}

func TestBlockcypherProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/addrs/bc1qfunded/balance":
			assert.Equal(t, "tok", r.URL.Query().Get("token"))
			_, _ = w.Write([]byte(`{"address":"bc1qfunded","final_balance":150000000}`))
		case "/addrs/bc1qlimited/balance":
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p := NewBlockcypherProvider(srv.URL+"/", "tok", 0)

	sat, err := p.Balance(context.Background(), "bc1qfunded")
	require.NoError(t, err)
	assert.Equal(t, "1.5", NewAmount(chain.Bitcoin, sat).String())

	sat, err = p.Balance(context.Background(), "bc1qunknown")
	require.NoError(t, err)
	assert.Zero(t, sat.Sign())

	_, err = p.Balance(context.Background(), "bc1qlimited")
	assert.ErrorIs(t, err, errRateLimited)
}

func TestBlockfrostProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("project_id") != "mainnetXYZ" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		switch r.URL.Path {
		case "/addresses/addr1funded":
			_, _ = w.Write([]byte(`{"address":"addr1funded","amount":[{"unit":"abc123","quantity":"5"},{"unit":"lovelace","quantity":"42000000"}]}`))
		case "/addresses/addr1broken":
			_, _ = w.Write([]byte(`{"amount":[{"unit":"lovelace","quantity":"lots"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p := NewBlockfrostProvider(srv.URL, "mainnetXYZ", 0)

	lovelace, err := p.Balance(context.Background(), "addr1funded")
	require.NoError(t, err)
	assert.Equal(t, "42", NewAmount(chain.Cardano, lovelace).String())

	lovelace, err = p.Balance(context.Background(), "addr1fresh")
	require.NoError(t, err)
	assert.Zero(t, lovelace.Sign())

	_, err = p.Balance(context.Background(), "addr1broken")
	assert.Error(t, err)

	_, err = NewBlockfrostProvider(srv.URL, "wrong", 0).Balance(context.Background(), "addr1funded")
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	cfg := config.DefaultProviders()
	cfg.Cardano.Disabled = true

	o := FromConfig(cfg)
	defer o.Close()
	assert.Equal(t, cfg.Timeout, o.Timeout())
	for _, c := range chain.All() {
		assert.Equal(t, c != chain.Cardano, o.Has(c), c.String())
	}
}

// A request queued behind the limiter must give up with the per-call
// timeout instead of waiting for its slot.
func TestBalanceTimeoutCoversRateLimitWait(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"final_balance":0}`))
	}))
	defer srv.Close()

	const timeout = 50 * time.Millisecond
	o := New(timeout).Register(chain.Bitcoin, NewBlockcypherProvider(srv.URL, "", 1))

	const calls = 4
	var (
		wg    sync.WaitGroup
		errs  [calls]error
		spent [calls]time.Duration
	)
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start := time.Now()
			_, errs[i] = o.Balance(context.Background(), chain.Bitcoin, "bc1qaddr")
			spent[i] = time.Since(start)
		}(i)
	}
	wg.Wait()

	failed := 0
	for i := 0; i < calls; i++ {
		assert.Less(t, spent[i], 10*timeout, "call %d", i)
		if errs[i] != nil {
			assert.ErrorIs(t, errs[i], ErrUnavailable)
			failed++
		}
	}
	// one token per second: at most one call gets through
	assert.GreaterOrEqual(t, failed, calls-1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	_, err := o.Balance(ctx, chain.Bitcoin, "bc1qaddr")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Less(t, time.Since(start), 2*timeout)
}

func TestSolanaProviderCancelledWhileRateLimited(t *testing.T) {
	srv := jsonRPCServer(t, func(string, []json.RawMessage) any {
		return map[string]any{"context": map[string]any{"slot": 1}, "value": 0}
	})
	p := NewSolanaProvider(srv.URL, 1)
	const addr = "11111111111111111111111111111111"

	_, err := p.Balance(context.Background(), addr)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err = p.Balance(ctx, addr)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestFromConfigSharesBlockcypherQuota(t *testing.T) {
	cfg := config.DefaultProviders()
	cfg.Bitcoin.RatePerSec = 3
	cfg.Litecoin.RatePerSec = 5

	o := FromConfig(cfg)
	defer o.Close()
	btc, ok := o.providers[chain.Bitcoin].(*BlockcypherProvider)
	require.True(t, ok)
	ltc, ok := o.providers[chain.Litecoin].(*BlockcypherProvider)
	require.True(t, ok)

	assert.Same(t, btc.src.limiter, ltc.src.limiter)
	assert.Equal(t, rate.Limit(3), btc.src.limiter.Limit())

	sol, ok := o.providers[chain.Solana].(*SolanaProvider)
	require.True(t, ok)
	assert.NotSame(t, btc.src.limiter, sol.limiter)
}

func TestBlockcypherRate(t *testing.T) {
	ep := func(n int, off bool) config.Endpoint { return config.Endpoint{RatePerSec: n, Disabled: off} }
	cases := []struct {
		name     string
		btc, ltc config.Endpoint
		want     int
	}{
		{"strictest", ep(3, false), ep(5, false), 3},
		{"one unlimited", ep(0, false), ep(5, false), 5},
		{"disabled ignored", ep(2, true), ep(4, false), 4},
		{"both unlimited", ep(0, false), ep(0, false), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, blockcypherRate(tc.btc, tc.ltc))
		})
	}
}
