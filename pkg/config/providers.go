package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// ProvidersConfig describes the balance providers, one endpoint per chain.
type ProvidersConfig struct {
	Timeout  time.Duration `yaml:"timeout"` // per balance call
	Ethereum Endpoint      `yaml:"ethereum"`
	BSC      Endpoint      `yaml:"bsc"`
	Bitcoin  Endpoint      `yaml:"bitcoin"`
	Litecoin Endpoint      `yaml:"litecoin"`
	Solana   Endpoint      `yaml:"solana"`
	Cardano  Endpoint      `yaml:"cardano"`
}

type Endpoint struct {
	URL        string `yaml:"url"`
	APIKey     string `yaml:"api_key"`      // blockcypher token / blockfrost project_id
	RatePerSec int    `yaml:"rate_per_sec"` // 0 = unlimited
	Disabled   bool   `yaml:"disabled"`
}

// envOverrides lets secrets and endpoints come from SLEUTH_* variables
// instead of the yaml file.
type envOverrides struct {
	Timeout             time.Duration `envconfig:"ORACLE_TIMEOUT"`
	EthereumRPCURL      string        `envconfig:"ETHEREUM_RPC_URL"`
	BSCRPCURL           string        `envconfig:"BSC_RPC_URL"`
	SolanaRPCURL        string        `envconfig:"SOLANA_RPC_URL"`
	BlockcypherToken    string        `envconfig:"BLOCKCYPHER_TOKEN"`
	BlockfrostProjectID string        `envconfig:"BLOCKFROST_PROJECT_ID"`
}

const EnvPrefix = "SLEUTH"

func DefaultProviders() *ProvidersConfig {
	return &ProvidersConfig{
		Timeout:  10 * time.Second,
		Ethereum: Endpoint{URL: "https://cloudflare-eth.com"},
		BSC:      Endpoint{URL: "https://bsc-dataseed.binance.org"},
		Bitcoin:  Endpoint{URL: "https://api.blockcypher.com/v1/btc/main", RatePerSec: 3},
		Litecoin: Endpoint{URL: "https://api.blockcypher.com/v1/ltc/main", RatePerSec: 3},
		Solana:   Endpoint{URL: "https://api.mainnet-beta.solana.com", RatePerSec: 10},
		Cardano:  Endpoint{URL: "https://cardano-mainnet.blockfrost.io/api/v0", RatePerSec: 10},
	}
}

// Load reads path on top of the defaults, applies SLEUTH_* overrides and
// validates the result.
func Load(path string) (*ProvidersConfig, error) {
	cfg := DefaultProviders()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config %q: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode yaml %q: %w", path, err)
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation %q: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault falls back to the defaults (plus env) when path is missing.
func LoadOrDefault(path string) (*ProvidersConfig, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := DefaultProviders()
		if err := applyEnv(cfg); err != nil {
			return nil, err
		}
		if err := validate(cfg); err != nil {
			return nil, fmt.Errorf("config validation: %w", err)
		}
		return cfg, nil
	}
	return Load(path)
}

func applyEnv(c *ProvidersConfig) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("process env: %w", err)
	}
	if env.Timeout > 0 {
		c.Timeout = env.Timeout
	}
	if env.EthereumRPCURL != "" {
		c.Ethereum.URL = env.EthereumRPCURL
	}
	if env.BSCRPCURL != "" {
		c.BSC.URL = env.BSCRPCURL
	}
	if env.SolanaRPCURL != "" {
		c.Solana.URL = env.SolanaRPCURL
	}
	if env.BlockcypherToken != "" {
		c.Bitcoin.APIKey = env.BlockcypherToken
		c.Litecoin.APIKey = env.BlockcypherToken
	}
	if env.BlockfrostProjectID != "" {
		c.Cardano.APIKey = env.BlockfrostProjectID
	}
	return nil
}

func validate(c *ProvidersConfig) error {
	if c == nil {
		return errors.New("nil config")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be > 0")
	}
	for name, ep := range c.Endpoints() {
		if ep.Disabled {
			continue
		}
		if err := validateURL(ep.URL); err != nil {
			return fmt.Errorf("%s.url: %w", name, err)
		}
		if ep.RatePerSec < 0 {
			return fmt.Errorf("%s.rate_per_sec must be >= 0", name)
		}
	}
	return nil
}

// Endpoints returns the endpoints keyed by chain name.
func (c *ProvidersConfig) Endpoints() map[string]Endpoint {
	return map[string]Endpoint{
		"ethereum": c.Ethereum,
		"bsc":      c.BSC,
		"bitcoin":  c.Bitcoin,
		"litecoin": c.Litecoin,
		"solana":   c.Solana,
		"cardano":  c.Cardano,
	}
}

func validateURL(s string) error {
	if s == "" {
		return errors.New("must not be empty")
	}
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}
