package oracle

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// EVMProvider reads native balances over Ethereum JSON-RPC. Used for
// Ethereum and BSC with different endpoints.
type EVMProvider struct {
	url string

	mu     sync.Mutex
	client *ethclient.Client
}

func NewEVMProvider(url string) *EVMProvider { return &EVMProvider{url: url} }

func (p *EVMProvider) dial(ctx context.Context) (*ethclient.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		return p.client, nil
	}
	c, err := ethclient.DialContext(ctx, p.url)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", p.url, err)
	}
	p.client = c
	return c, nil
}

func (p *EVMProvider) Balance(ctx context.Context, address string) (*big.Int, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("not an evm address: %q", address)
	}
	c, err := p.dial(ctx)
	if err != nil {
		return nil, err
	}
	wei, err := c.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return nil, fmt.Errorf("eth_getBalance: %w", err)
	}
	return wei, nil
}

func (p *EVMProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		p.client.Close()
		p.client = nil
	}
}
