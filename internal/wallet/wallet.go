// Package wallet turns one BIP-39 mnemonic into a key pair and address for
// every supported chain.
package wallet

import (
	"errors"
	"fmt"

	"SeedSleuth/internal/chain"
)

// ErrInvalidMnemonic is returned for phrases that fail the BIP-39 checksum.
var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// DerivationError reports a chain-specific derivation step that failed.
// It condemns the candidate, never the search.
type DerivationError struct {
	Chain chain.ID
	Err   error
}

func (e *DerivationError) Error() string {
	return fmt.Sprintf("derive %s: %v", e.Chain, e.Err)
}

func (e *DerivationError) Unwrap() error { return e.Err }

// WalletKey is the derived account for one chain. PrivateKey holds secret
// material in the chain's usual text form and must not be logged.
type WalletKey struct {
	Chain      chain.ID
	Address    string
	PrivateKey string
	Path       string
}

// Wallets holds one WalletKey per chain, indexed by chain.ID.
type Wallets [chain.Count]WalletKey

func (w *Wallets) Get(c chain.ID) WalletKey {
	if !c.Valid() {
		return WalletKey{}
	}
	return w[c]
}

// Addresses returns chain -> address for the requested chains, or for every
// chain when none are given.
func (w *Wallets) Addresses(chains ...chain.ID) map[chain.ID]string {
	if len(chains) == 0 {
		chains = chain.All()
	}
	out := make(map[chain.ID]string, len(chains))
	for _, c := range chains {
		if c.Valid() {
			out[c] = w[c].Address
		}
	}
	return out
}

// Empty reports whether nothing has been derived.
func (w *Wallets) Empty() bool {
	for _, k := range w {
		if k.Address != "" {
			return false
		}
	}
	return true
}

var errUnsupported = errors.New("unsupported chain")
