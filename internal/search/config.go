package search

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"SeedSleuth/internal/chain"
	"SeedSleuth/internal/mnemonic"
)

const DefaultProgressEvery = 10 * time.Second

// Config is one search session.
type Config struct {
	Partial       []string           // known leading words, may be empty
	Words         mnemonic.WordCount // 12 or 24
	Chains        []chain.ID         // quick-check chains; all when empty
	Workers       int                // runtime.NumCPU() when <= 0
	ProgressEvery time.Duration      // DefaultProgressEvery when <= 0
}

func (c Config) normalize() (Config, error) {
	if c.Words == 0 {
		c.Words = mnemonic.Words12
	}
	if !c.Words.Valid() {
		return c, fmt.Errorf("word count must be 12 or 24, got %d", int(c.Words))
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.ProgressEvery <= 0 {
		c.ProgressEvery = DefaultProgressEvery
	}

	if len(c.Chains) == 0 {
		c.Chains = chain.All()
	}
	var seen [chain.Count]bool
	chains := make([]chain.ID, 0, len(c.Chains))
	for _, id := range c.Chains {
		if !id.Valid() {
			return c, fmt.Errorf("unknown chain %s", id)
		}
		if !seen[id] {
			seen[id] = true
			chains = append(chains, id)
		}
	}
	c.Chains = chains

	words := make([]string, 0, len(c.Partial))
	for _, w := range c.Partial {
		words = append(words, mnemonic.ParseWords(w)...)
	}
	for _, w := range words {
		if !mnemonic.InWordlist(w) {
			return c, fmt.Errorf("%q is not a BIP-39 word: %w", w, mnemonic.ErrNoCandidate)
		}
	}
	if len(words) >= int(c.Words) {
		if !mnemonic.Mnemonic(strings.Join(words, " ")).Valid() {
			return c, fmt.Errorf("complete phrase has a bad checksum: %w", mnemonic.ErrNoCandidate)
		}
	}
	c.Partial = words
	return c, nil
}
