package crypto

import (
	"crypto/ecdsa"
	"fmt"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	hdwallet "github.com/miguelmota/go-ethereum-hdwallet"
)

// EVMPath is the default first account used by MetaMask, ethers and friends.
const EVMPath = "m/44'/60'/0'/0/0"

// KeyPair is one chain-native address plus its private key material.
// Private must never reach a logger.
type KeyPair struct {
	Address string
	Private string
	Path    string
}

// DeriveEVM derives the default Ethereum account from a BIP-39 seed. Every
// EVM-compatible chain (BSC included) shares this key.
func DeriveEVM(seed []byte) (KeyPair, error) {
	w, err := hdwallet.NewFromSeed(seed)
	if err != nil {
		return KeyPair{}, fmt.Errorf("hd wallet from seed: %w", err)
	}
	acct, err := w.Derive(hdwallet.MustParseDerivationPath(EVMPath), false)
	if err != nil {
		return KeyPair{}, fmt.Errorf("derive %s: %w", EVMPath, err)
	}
	priv, err := w.PrivateKey(acct)
	if err != nil {
		return KeyPair{}, fmt.Errorf("private key: %w", err)
	}
	return KeyPair{
		Address: AddressHex(priv),
		Private: PrivToHex(priv),
		Path:    EVMPath,
	}, nil
}

func PrivToHex(priv *ecdsa.PrivateKey) string {
	return "0x" + fmt.Sprintf("%x", gethcrypto.FromECDSA(priv))
}

// AddressHex returns the EIP-55 checksummed address.
func AddressHex(priv *ecdsa.PrivateKey) string {
	return gethcrypto.PubkeyToAddress(priv.PublicKey).Hex()
}
