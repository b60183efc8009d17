package oracle

import (
	"context"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"golang.org/x/time/rate"
)

// SolanaProvider reads lamport balances with getBalance at confirmed commitment.
type SolanaProvider struct {
	client  *rpc.Client
	limiter *rate.Limiter
}

func NewSolanaProvider(url string, ratePerSec int) *SolanaProvider {
	return &SolanaProvider{client: rpc.New(url), limiter: newLimiter(ratePerSec)}
}

func (p *SolanaProvider) Balance(ctx context.Context, address string) (*big.Int, error) {
	owner, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("invalid solana address: %w", err)
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	res, err := p.client.GetBalance(ctx, owner, rpc.CommitmentConfirmed)
	if err != nil {
		return nil, fmt.Errorf("getBalance: %w", err)
	}
	return new(big.Int).SetUint64(res.Value), nil
}
