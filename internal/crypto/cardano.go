package crypto

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/pbkdf2"
)

const (
	CardanoPaymentPath = "m/1852'/1815'/0'/0/0"
	CardanoStakePath   = "m/1852'/1815'/0'/2/0"

	cardanoHardened = 0x80000000

	// Shelley base address, payment key hash + stake key hash, mainnet.
	cardanoBaseAddrHeader = 0x01
	cardanoMainnetHRP     = "addr"
)

// edKey is a BIP32-Ed25519 extended private key: kL || kR || chain code.
type edKey struct {
	kl, kr, cc [32]byte
}

// icarusMaster builds the root key from raw BIP-39 entropy the way Icarus
// and Shelley wallets do: PBKDF2-HMAC-SHA512(passphrase, entropy, 4096, 96)
// followed by scalar clamping.
func icarusMaster(entropy []byte, passphrase string) *edKey {
	raw := pbkdf2.Key([]byte(passphrase), entropy, 4096, 96, sha512.New)
	raw[0] &= 0xf8
	raw[31] &= 0x1f
	raw[31] |= 0x40

	var k edKey
	copy(k.kl[:], raw[:32])
	copy(k.kr[:], raw[32:64])
	copy(k.cc[:], raw[64:])
	return &k
}

func (k *edKey) bytes() []byte {
	out := make([]byte, 0, 96)
	out = append(out, k.kl[:]...)
	out = append(out, k.kr[:]...)
	return append(out, k.cc[:]...)
}

// public returns the 32 byte ed25519 point kL*B.
func (k *edKey) public() ([]byte, error) {
	var wide [64]byte
	copy(wide[:], k.kl[:])
	s, err := new(edwards25519.Scalar).SetUniformBytes(wide[:])
	if err != nil {
		return nil, err
	}
	return new(edwards25519.Point).ScalarBaseMult(s).Bytes(), nil
}

// child implements the V2 derivation scheme used by cardano-serialization-lib.
func (k *edKey) child(index uint32) (*edKey, error) {
	var idx [4]byte
	binary.LittleEndian.PutUint32(idx[:], index)

	zmac := hmac.New(sha512.New, k.cc[:])
	imac := hmac.New(sha512.New, k.cc[:])
	if index >= cardanoHardened {
		zmac.Write([]byte{0x00})
		zmac.Write(k.kl[:])
		zmac.Write(k.kr[:])
		imac.Write([]byte{0x01})
		imac.Write(k.kl[:])
		imac.Write(k.kr[:])
	} else {
		pub, err := k.public()
		if err != nil {
			return nil, err
		}
		zmac.Write([]byte{0x02})
		zmac.Write(pub)
		imac.Write([]byte{0x03})
		imac.Write(pub)
	}
	zmac.Write(idx[:])
	imac.Write(idx[:])
	z := zmac.Sum(nil)
	i := imac.Sum(nil)

	out := &edKey{
		kl: add28Mul8(k.kl, z[:28]),
		kr: add256(k.kr, z[32:64]),
	}
	copy(out.cc[:], i[32:])
	return out, nil
}

func (k *edKey) derivePath(path ...uint32) (*edKey, error) {
	key := k
	for _, i := range path {
		next, err := key.child(i)
		if err != nil {
			return nil, err
		}
		key = next
	}
	return key, nil
}

// add28Mul8 returns x + 8*y[:28] as 256-bit little-endian integers,
// dropping any carry out of the top byte.
func add28Mul8(x [32]byte, y []byte) [32]byte {
	var out [32]byte
	var carry uint16
	for i := 0; i < 28; i++ {
		r := uint16(x[i]) + uint16(y[i])<<3 + carry
		out[i] = byte(r)
		carry = r >> 8
	}
	for i := 28; i < 32; i++ {
		r := uint16(x[i]) + carry
		out[i] = byte(r)
		carry = r >> 8
	}
	return out
}

// add256 returns x + y mod 2^256, little-endian.
func add256(x [32]byte, y []byte) [32]byte {
	var out [32]byte
	var carry uint16
	for i := 0; i < 32; i++ {
		r := uint16(x[i]) + uint16(y[i]) + carry
		out[i] = byte(r)
		carry = r >> 8
	}
	return out
}

func blake2b224(b []byte) []byte {
	h, _ := blake2b.New(28, nil)
	h.Write(b)
	return h.Sum(nil)
}

// CardanoBaseAddress encodes a mainnet Shelley base address for the given
// payment and stake public keys.
func CardanoBaseAddress(paymentPub, stakePub []byte) (string, error) {
	payload := make([]byte, 0, 57)
	payload = append(payload, cardanoBaseAddrHeader)
	payload = append(payload, blake2b224(paymentPub)...)
	payload = append(payload, blake2b224(stakePub)...)

	conv, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("convert bits: %w", err)
	}
	return bech32.Encode(cardanoMainnetHRP, conv)
}

// DeriveCardano needs the BIP-39 entropy, not the seed: Icarus master keys
// are stretched from entropy directly. Private is the hex root extended key.
func DeriveCardano(entropy []byte, passphrase string) (KeyPair, error) {
	root := icarusMaster(entropy, passphrase)
	account, err := root.derivePath(cardanoHardened+1852, cardanoHardened+1815, cardanoHardened+0)
	if err != nil {
		return KeyPair{}, fmt.Errorf("derive account: %w", err)
	}
	payment, err := account.derivePath(0, 0)
	if err != nil {
		return KeyPair{}, fmt.Errorf("derive %s: %w", CardanoPaymentPath, err)
	}
	stake, err := account.derivePath(2, 0)
	if err != nil {
		return KeyPair{}, fmt.Errorf("derive %s: %w", CardanoStakePath, err)
	}

	paymentPub, err := payment.public()
	if err != nil {
		return KeyPair{}, fmt.Errorf("payment public key: %w", err)
	}
	stakePub, err := stake.public()
	if err != nil {
		return KeyPair{}, fmt.Errorf("stake public key: %w", err)
	}
	addr, err := CardanoBaseAddress(paymentPub, stakePub)
	if err != nil {
		return KeyPair{}, fmt.Errorf("base address: %w", err)
	}
	return KeyPair{
		Address: addr,
		Private: hex.EncodeToString(root.bytes()),
		Path:    CardanoPaymentPath,
	}, nil
}
