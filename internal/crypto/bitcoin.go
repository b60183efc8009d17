package crypto

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
)

const (
	BitcoinPath  = "m/84'/0'/0'/0/0"
	LitecoinPath = "m/84'/2'/0'/0/0"
)

// LitecoinParams are the Bitcoin mainnet params with Litecoin's address,
// WIF and bech32 prefixes. Only the fields used for key encoding matter.
var LitecoinParams = func() chaincfg.Params {
	p := chaincfg.MainNetParams
	p.Name = "litecoin"
	p.Bech32HRPSegwit = "ltc"
	p.PubKeyHashAddrID = 0x30
	p.ScriptHashAddrID = 0x32
	p.PrivateKeyID = 0xB0
	p.HDCoinType = 2
	return p
}()

// DeriveBitcoin derives the first BIP-84 native SegWit receive address.
func DeriveBitcoin(seed []byte) (KeyPair, error) {
	return deriveSegwit(seed, &chaincfg.MainNetParams, BitcoinPath)
}

// DeriveLitecoin is DeriveBitcoin under coin type 2 with ltc1 addresses.
func DeriveLitecoin(seed []byte) (KeyPair, error) {
	return deriveSegwit(seed, &LitecoinParams, LitecoinPath)
}

func deriveSegwit(seed []byte, params *chaincfg.Params, path string) (KeyPair, error) {
	master, err := hdkeychain.NewMaster(seed, params)
	if err != nil {
		return KeyPair{}, fmt.Errorf("master key: %w", err)
	}
	const h = hdkeychain.HardenedKeyStart
	key := master
	for _, i := range []uint32{h + 84, h + params.HDCoinType, h + 0, 0, 0} {
		if key, err = key.Derive(i); err != nil {
			return KeyPair{}, fmt.Errorf("derive %s: %w", path, err)
		}
	}

	pub, err := key.ECPubKey()
	if err != nil {
		return KeyPair{}, fmt.Errorf("public key: %w", err)
	}
	addr, err := btcutil.NewAddressWitnessPubKeyHash(btcutil.Hash160(pub.SerializeCompressed()), params)
	if err != nil {
		return KeyPair{}, fmt.Errorf("p2wpkh address: %w", err)
	}
	priv, err := key.ECPrivKey()
	if err != nil {
		return KeyPair{}, fmt.Errorf("private key: %w", err)
	}
	wif, err := btcutil.NewWIF(priv, params, true)
	if err != nil {
		return KeyPair{}, fmt.Errorf("wif: %w", err)
	}
	return KeyPair{Address: addr.EncodeAddress(), Private: wif.String(), Path: path}, nil
}
