package oracle

import (
	"SeedSleuth/internal/chain"
	"SeedSleuth/pkg/config"
)

// FromConfig wires the stock providers. Disabled endpoints are left empty
// and resolve as ErrUnavailable.
func FromConfig(cfg *config.ProvidersConfig) *Oracle {
	o := New(cfg.Timeout)
	if ep := cfg.Ethereum; !ep.Disabled {
		o.Register(chain.Ethereum, NewEVMProvider(ep.URL))
	}
	if ep := cfg.BSC; !ep.Disabled {
		o.Register(chain.BSC, NewEVMProvider(ep.URL))
	}
	bcy := newLimiter(blockcypherRate(cfg.Bitcoin, cfg.Litecoin))
	if ep := cfg.Bitcoin; !ep.Disabled {
		o.Register(chain.Bitcoin, newBlockcypherProvider(ep.URL, ep.APIKey, bcy))
	}
	if ep := cfg.Litecoin; !ep.Disabled {
		o.Register(chain.Litecoin, newBlockcypherProvider(ep.URL, ep.APIKey, bcy))
	}
	if ep := cfg.Solana; !ep.Disabled {
		o.Register(chain.Solana, NewSolanaProvider(ep.URL, ep.RatePerSec))
	}
	if ep := cfg.Cardano; !ep.Disabled {
		o.Register(chain.Cardano, NewBlockfrostProvider(ep.URL, ep.APIKey, ep.RatePerSec))
	}
	return o
}

// blockcypherRate picks the strictest positive rate among the enabled
// Blockcypher endpoints. Zero means unlimited.
func blockcypherRate(eps ...config.Endpoint) int {
	n := 0
	for _, ep := range eps {
		if ep.Disabled || ep.RatePerSec <= 0 {
			continue
		}
		if n == 0 || ep.RatePerSec < n {
			n = ep.RatePerSec
		}
	}
	return n
}

// Close releases RPC connections held by providers.
func (o *Oracle) Close() {
	for _, p := range o.providers {
		if c, ok := p.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
