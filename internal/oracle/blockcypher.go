package oracle

import (
	"context"
	"errors"
	"math/big"
	"net/url"
	"strings"

	"golang.org/x/time/rate"
)

const (
	BlockcypherBitcoin  = "https://api.blockcypher.com/v1/btc/main"
	BlockcypherLitecoin = "https://api.blockcypher.com/v1/ltc/main"
)

// BlockcypherProvider serves Bitcoin and Litecoin from the Blockcypher
// address balance endpoint.
type BlockcypherProvider struct {
	src   *restSource
	token string
}

func NewBlockcypherProvider(base, token string, ratePerSec int) *BlockcypherProvider {
	return newBlockcypherProvider(base, token, newLimiter(ratePerSec))
}

// newBlockcypherProvider takes the limiter from the caller. Blockcypher
// meters per token and IP, not per coin, so Bitcoin and Litecoin share one.
func newBlockcypherProvider(base, token string, lim *rate.Limiter) *BlockcypherProvider {
	return &BlockcypherProvider{src: newRestSourceWith(strings.TrimRight(base, "/"), lim), token: token}
}

type blockcypherBalance struct {
	Address      string `json:"address"`
	FinalBalance int64  `json:"final_balance"`
}

func (p *BlockcypherProvider) Balance(ctx context.Context, address string) (*big.Int, error) {
	path := "/addrs/" + url.PathEscape(address) + "/balance"
	if p.token != "" {
		path += "?token=" + url.QueryEscape(p.token)
	}
	var out blockcypherBalance
	if err := p.src.getJSON(ctx, path, &out); err != nil {
		if errors.Is(err, errNotFound) {
			return new(big.Int), nil
		}
		return nil, err
	}
	return big.NewInt(out.FinalBalance), nil
}
