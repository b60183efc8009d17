package appcfg

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Language             string        `yaml:"language"`  // "ru" | "en"
	LogLevel             string        `yaml:"log_level"` // "debug"|"info"|"warn"|"error"
	LogsDir              string        `yaml:"logs_dir"`
	HideSecretsInConsole bool          `yaml:"hide_secrets_in_console"`
	Cores                int           `yaml:"cores"`      // search workers, 0 = all CPUs
	Completion           string        `yaml:"completion"` // "pad" | "checksum"
	Passphrase           string        `yaml:"passphrase"` // BIP-39 passphrase, usually empty
	ProvidersPath        string        `yaml:"providers_path"`
	ProgressInterval     time.Duration `yaml:"progress_interval"`
}

// Default is used when configs/app.yaml is missing.
func Default() *Config {
	c := &Config{HideSecretsInConsole: true}
	c.applyDefaults()
	return c
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open app config %q: %w", path, err)
	}
	defer f.Close()

	var c Config
	if err := yaml.NewDecoder(f).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode app yaml %q: %w", path, err)
	}
	c.applyDefaults()
	if c.Cores < 0 {
		return nil, fmt.Errorf("app config %q: cores must be >= 0", path)
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Language == "" {
		c.Language = "ru"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogsDir == "" {
		c.LogsDir = "logs"
	}
	if c.Completion == "" {
		c.Completion = "pad"
	}
	if c.ProvidersPath == "" {
		c.ProvidersPath = "configs/providers.yaml"
	}
	if c.ProgressInterval <= 0 {
		c.ProgressInterval = 10 * time.Second
	}
}
