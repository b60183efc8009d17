// Package oracle resolves native balances for derived addresses. Providers
// talk to public explorers and RPC nodes; the Oracle wraps them with a
// per-call timeout and folds every failure into ErrUnavailable.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"SeedSleuth/internal/chain"
	"SeedSleuth/pkg/logx"
)

// ErrUnavailable means the balance could not be determined. Callers treat
// it as "zero, but uncertain".
var ErrUnavailable = errors.New("balance unavailable")

const DefaultTimeout = 10 * time.Second

// Provider queries one chain. It returns the balance in base units.
type Provider interface {
	Balance(ctx context.Context, address string) (*big.Int, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, address string) (*big.Int, error)

func (f ProviderFunc) Balance(ctx context.Context, address string) (*big.Int, error) {
	return f(ctx, address)
}

// Balancer is the capability the search coordinator depends on.
type Balancer interface {
	Balance(ctx context.Context, c chain.ID, address string) (Amount, error)
}

// Oracle dispatches balance queries to one Provider per chain.
type Oracle struct {
	providers [chain.Count]Provider
	timeout   time.Duration
}

func New(timeout time.Duration) *Oracle {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Oracle{timeout: timeout}
}

// Register sets the provider for c. It is not safe to call once queries
// are in flight.
func (o *Oracle) Register(c chain.ID, p Provider) *Oracle {
	if c.Valid() {
		o.providers[c] = p
	}
	return o
}

func (o *Oracle) Has(c chain.ID) bool { return c.Valid() && o.providers[c] != nil }

func (o *Oracle) Timeout() time.Duration { return o.timeout }

// Balance never returns a raw transport error: failures, timeouts and
// missing providers all wrap ErrUnavailable and come with a zero Amount.
func (o *Oracle) Balance(ctx context.Context, c chain.ID, address string) (Amount, error) {
	if !o.Has(c) {
		return Zero(c), fmt.Errorf("%s: no provider: %w", c, ErrUnavailable)
	}
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	units, err := o.providers[c].Balance(ctx, address)
	if err != nil {
		return Zero(c), fmt.Errorf("%s: %w (%v)", c, ErrUnavailable, err)
	}
	if units == nil || units.Sign() < 0 {
		return Zero(c), fmt.Errorf("%s: bad balance from provider: %w", c, ErrUnavailable)
	}
	return NewAmount(c, units), nil
}

// Resolve asks b for a balance and degrades any failure to zero, reporting
// it as uncertain. A degraded result is never positive.
func Resolve(ctx context.Context, b Balancer, c chain.ID, address string) (amt Amount, uncertain bool) {
	amt, err := b.Balance(ctx, c, address)
	if err != nil {
		if ctx.Err() == nil {
			logx.S().Debugw("balance degraded", "chain", c.String(), "address", address, "err", err)
		}
		return Zero(c), true
	}
	return amt, false
}
