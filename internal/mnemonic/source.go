package mnemonic

import (
	"encoding/binary"
	"io"
	"math/rand/v2"
	"sync"
)

type seededReader struct {
	mu  sync.Mutex
	src *rand.ChaCha8
}

// NewSeededReader returns a deterministic, concurrency-safe byte stream.
// It exists for reproducible runs and tests; never use it for real keys.
func NewSeededReader(seed uint64) io.Reader {
	var s [32]byte
	binary.LittleEndian.PutUint64(s[:], seed)
	return &seededReader{src: rand.NewChaCha8(s)}
}

func (r *seededReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.Read(p)
}
