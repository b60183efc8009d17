package wallet

import (
	"SeedSleuth/internal/chain"
	"SeedSleuth/internal/crypto"
	"SeedSleuth/internal/mnemonic"

	bip39 "github.com/tyler-smith/go-bip39"
)

// Engine derives wallets for every chain. The zero value derives with an
// empty BIP-39 passphrase; the engine is stateless and safe for concurrent use.
type Engine struct {
	Passphrase string
}

func NewEngine(passphrase string) *Engine { return &Engine{Passphrase: passphrase} }

type seedMaterial struct {
	seed       []byte
	entropy    []byte
	passphrase string
}

// DeriveAll is a pure function of the mnemonic and passphrase. It returns
// ErrInvalidMnemonic for a bad checksum and a *DerivationError when a chain
// step fails; in both cases the returned Wallets is empty.
func (e *Engine) DeriveAll(m mnemonic.Mnemonic) (Wallets, error) {
	sm, err := e.material(m)
	if err != nil {
		return Wallets{}, err
	}

	var out Wallets
	for _, c := range chain.All() {
		if c == chain.BSC {
			continue
		}
		kp, err := derive(c, sm)
		if err != nil {
			return Wallets{}, &DerivationError{Chain: c, Err: err}
		}
		out[c] = WalletKey{Chain: c, Address: kp.Address, PrivateKey: kp.Private, Path: kp.Path}
	}
	// BSC reuses the Ethereum account as is.
	out[chain.BSC] = out[chain.Ethereum]
	out[chain.BSC].Chain = chain.BSC
	return out, nil
}

// Derive returns the key for a single chain.
func (e *Engine) Derive(m mnemonic.Mnemonic, c chain.ID) (WalletKey, error) {
	sm, err := e.material(m)
	if err != nil {
		return WalletKey{}, err
	}
	kp, err := derive(c, sm)
	if err != nil {
		return WalletKey{}, &DerivationError{Chain: c, Err: err}
	}
	return WalletKey{Chain: c, Address: kp.Address, PrivateKey: kp.Private, Path: kp.Path}, nil
}

func (e *Engine) material(m mnemonic.Mnemonic) (*seedMaterial, error) {
	if !m.Valid() {
		return nil, ErrInvalidMnemonic
	}
	entropy, err := bip39.EntropyFromMnemonic(string(m))
	if err != nil {
		return nil, ErrInvalidMnemonic
	}
	return &seedMaterial{
		seed:       bip39.NewSeed(string(m), e.Passphrase),
		entropy:    entropy,
		passphrase: e.Passphrase,
	}, nil
}

func derive(c chain.ID, sm *seedMaterial) (crypto.KeyPair, error) {
	switch c {
	case chain.Ethereum, chain.BSC:
		return crypto.DeriveEVM(sm.seed)
	case chain.Bitcoin:
		return crypto.DeriveBitcoin(sm.seed)
	case chain.Litecoin:
		return crypto.DeriveLitecoin(sm.seed)
	case chain.Solana:
		return crypto.DeriveSolana(sm.seed)
	case chain.Cardano:
		return crypto.DeriveCardano(sm.entropy, sm.passphrase)
	default:
		return crypto.KeyPair{}, errUnsupported
	}
}
