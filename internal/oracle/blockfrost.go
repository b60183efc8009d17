package oracle

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strings"
)

const BlockfrostMainnet = "https://cardano-mainnet.blockfrost.io/api/v0"

// BlockfrostProvider reads lovelace balances. Blockfrost answers 404 for
// addresses that never appeared on chain, which is a zero balance.
type BlockfrostProvider struct {
	src *restSource
}

func NewBlockfrostProvider(base, projectID string, ratePerSec int) *BlockfrostProvider {
	src := newRestSource(strings.TrimRight(base, "/"), ratePerSec)
	if projectID != "" {
		src.header.Set("project_id", projectID)
	}
	return &BlockfrostProvider{src: src}
}

type blockfrostAddress struct {
	Address string `json:"address"`
	Amount  []struct {
		Unit     string `json:"unit"`
		Quantity string `json:"quantity"`
	} `json:"amount"`
}

func (p *BlockfrostProvider) Balance(ctx context.Context, address string) (*big.Int, error) {
	var out blockfrostAddress
	if err := p.src.getJSON(ctx, "/addresses/"+url.PathEscape(address), &out); err != nil {
		if errors.Is(err, errNotFound) {
			return new(big.Int), nil
		}
		return nil, err
	}
	for _, a := range out.Amount {
		if a.Unit != "lovelace" {
			continue
		}
		v, ok := new(big.Int).SetString(a.Quantity, 10)
		if !ok {
			return nil, fmt.Errorf("bad lovelace quantity %q", a.Quantity)
		}
		return v, nil
	}
	return new(big.Int), nil
}
