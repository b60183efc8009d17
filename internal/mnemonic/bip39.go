package mnemonic

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"

	bip39 "github.com/tyler-smith/go-bip39"
)

// ErrNoCandidate is returned when Generate cannot offer a mnemonic for the
// given input. Callers retry; it is not a search error.
var ErrNoCandidate = errors.New("mnemonic: no candidate")

type WordCount int

const (
	Words12 WordCount = 12
	Words24 WordCount = 24
)

func (w WordCount) Valid() bool { return w == Words12 || w == Words24 }

// EntropyBits is 128 for 12 words and 256 for 24 words.
func (w WordCount) EntropyBits() int {
	if w == Words24 {
		return 256
	}
	return 128
}

// Completion selects how a partial phrase is filled up to the target length.
type Completion string

const (
	// CompletionPad appends uniformly random words and leaves the checksum
	// alone, so most completed phrases are invalid.
	CompletionPad Completion = "pad"
	// CompletionChecksum appends random words and picks the last word from
	// the set that makes the checksum valid.
	CompletionChecksum Completion = "checksum"
)

func ParseCompletion(s string) (Completion, error) {
	switch Completion(strings.ToLower(strings.TrimSpace(s))) {
	case "", CompletionPad:
		return CompletionPad, nil
	case CompletionChecksum:
		return CompletionChecksum, nil
	default:
		return "", fmt.Errorf("unknown completion mode %q (want pad|checksum)", s)
	}
}

// Mnemonic is a space separated BIP-39 phrase. It is never mutated.
type Mnemonic string

// Normalize lowercases s and collapses whitespace.
func Normalize(s string) Mnemonic {
	return Mnemonic(strings.Join(ParseWords(s), " "))
}

func ParseWords(s string) []string {
	return strings.Fields(strings.ToLower(s))
}

func (m Mnemonic) Words() []string { return strings.Fields(string(m)) }
func (m Mnemonic) Len() int        { return len(m.Words()) }

// Valid reports whether every word is in the English wordlist and the
// checksum matches the entropy.
func (m Mnemonic) Valid() bool { return bip39.IsMnemonicValid(string(m)) }

var wordIndex = func() map[string]int {
	list := bip39.GetWordList()
	idx := make(map[string]int, len(list))
	for i, w := range list {
		idx[w] = i
	}
	return idx
}()

// InWordlist reports whether w is one of the 2048 English BIP-39 words.
func InWordlist(w string) bool {
	_, ok := wordIndex[w]
	return ok
}

// Generator produces candidate mnemonics from an injected randomness source.
// The source must be safe for concurrent reads when the generator is shared.
type Generator struct {
	rand       io.Reader
	completion Completion
}

// NewGenerator uses crypto/rand when r is nil.
func NewGenerator(r io.Reader, completion Completion) *Generator {
	if r == nil {
		r = rand.Reader
	}
	if completion == "" {
		completion = CompletionPad
	}
	return &Generator{rand: r, completion: completion}
}

func (g *Generator) Completion() Completion { return g.completion }

// Generate returns a candidate phrase of target words built from partial.
//
//   - len(partial) >= target: the phrase is returned only if already valid.
//   - 0 < len(partial) < target: partial is completed per the Completion mode.
//   - empty partial: a fresh phrase from new entropy, always valid.
func (g *Generator) Generate(partial []string, target WordCount) (Mnemonic, error) {
	if !target.Valid() {
		return "", fmt.Errorf("word count %d: %w", target, ErrNoCandidate)
	}
	words := make([]string, 0, len(partial))
	for _, w := range partial {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			words = append(words, w)
		}
	}

	switch {
	case len(words) >= int(target):
		m := Mnemonic(strings.Join(words, " "))
		if !m.Valid() {
			return "", ErrNoCandidate
		}
		return m, nil
	case len(words) > 0:
		if g.completion == CompletionChecksum {
			return g.completeChecksum(words, target)
		}
		return g.completePad(words, target)
	default:
		return g.fresh(target)
	}
}

func (g *Generator) fresh(target WordCount) (Mnemonic, error) {
	entropy := make([]byte, target.EntropyBits()/8)
	if _, err := io.ReadFull(g.rand, entropy); err != nil {
		return "", fmt.Errorf("read entropy: %w", err)
	}
	mn, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("new mnemonic: %w", err)
	}
	return Mnemonic(mn), nil
}

func (g *Generator) completePad(words []string, target WordCount) (Mnemonic, error) {
	out := append(make([]string, 0, int(target)), words...)
	list := bip39.GetWordList()
	for len(out) < int(target) {
		i, err := g.randomIndex()
		if err != nil {
			return "", err
		}
		out = append(out, list[i])
	}
	return Mnemonic(strings.Join(out, " ")), nil
}

// completeChecksum keeps the partial words as the leading entropy bits,
// fills the remaining entropy randomly and lets BIP-39 derive the final
// checksum word. Only the last word carries checksum bits, so the first
// target-1 words always survive unchanged.
func (g *Generator) completeChecksum(words []string, target WordCount) (Mnemonic, error) {
	indices := make([]int, 0, int(target)-1)
	for _, w := range words {
		i, ok := wordIndex[w]
		if !ok {
			return "", ErrNoCandidate
		}
		indices = append(indices, i)
	}
	for len(indices) < int(target)-1 {
		i, err := g.randomIndex()
		if err != nil {
			return "", err
		}
		indices = append(indices, i)
	}

	entropy := make([]byte, target.EntropyBits()/8)
	if _, err := io.ReadFull(g.rand, entropy); err != nil {
		return "", fmt.Errorf("read entropy: %w", err)
	}
	for n, idx := range indices {
		putBits11(entropy, n*11, idx)
	}
	mn, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("new mnemonic: %w", err)
	}
	return Mnemonic(mn), nil
}

// randomIndex draws a uniform index into the 2048-word list.
func (g *Generator) randomIndex() (int, error) {
	var b [2]byte
	if _, err := io.ReadFull(g.rand, b[:]); err != nil {
		return 0, fmt.Errorf("read word index: %w", err)
	}
	return int(uint16(b[0])<<8|uint16(b[1])) % 2048, nil
}

// putBits11 writes the low 11 bits of v, big-endian, at bit offset off.
func putBits11(buf []byte, off, v int) {
	for b := 0; b < 11; b++ {
		pos := off + b
		mask := byte(0x80 >> (pos % 8))
		if (v>>(10-b))&1 == 1 {
			buf[pos/8] |= mask
		} else {
			buf[pos/8] &^= mask
		}
	}
}
