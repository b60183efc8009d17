package crypto

import (
	"crypto/ed25519"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// SolanaPath documents that no BIP-32 path is involved: the first 32 seed
// bytes are the ed25519 private seed, as Keypair.fromSeed does.
const SolanaPath = "seed[0:32]"

func DeriveSolana(seed []byte) (KeyPair, error) {
	if len(seed) < ed25519.SeedSize {
		return KeyPair{}, fmt.Errorf("seed too short: %d bytes", len(seed))
	}
	priv := solana.PrivateKey(ed25519.NewKeyFromSeed(seed[:ed25519.SeedSize]))
	return KeyPair{
		Address: priv.PublicKey().String(),
		Private: priv.String(),
		Path:    SolanaPath,
	}, nil
}
