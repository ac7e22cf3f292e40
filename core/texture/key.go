package texture

import (
	"encoding/binary"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// KeyGenerator issues process-unique texture keys. Each key is the XXH64 hash of the next
// value of a monotonic counter, so consecutive keys have well spread bit patterns.
// A hash equal to InvalidKey is skipped by hashing the following counter value.
//
// KeyGenerator is safe for concurrent use. The zero value is ready to use.
type KeyGenerator struct {
	mu      sync.Mutex
	counter uint64
}

// NewKeyGenerator returns a generator starting from an empty counter.
func NewKeyGenerator() *KeyGenerator {
	return &KeyGenerator{}
}

// Next returns a key that is never InvalidKey.
//
// It panics with ErrKeySpaceExhausted if the counter rolls over.
func (g *KeyGenerator) Next() Key {
	g.mu.Lock()
	defer g.mu.Unlock()

	var buf [8]byte
	for {
		if g.counter+1 < g.counter {
			panic(ErrKeySpaceExhausted)
		}
		g.counter++
		binary.LittleEndian.PutUint64(buf[:], g.counter)
		if key := Key(xxhash.Sum64(buf[:])); key != InvalidKey {
			return key
		}
	}
}

// Reset rewinds the counter. Keys issued after Reset repeat earlier ones, so it must only
// be used when no texture created from this generator is alive (tests).
func (g *KeyGenerator) Reset() {
	g.mu.Lock()
	g.counter = 0
	g.mu.Unlock()
}

// seek positions the counter so the next call hashes start+1.
func (g *KeyGenerator) seek(start uint64) {
	g.mu.Lock()
	g.counter = start
	g.mu.Unlock()
}
