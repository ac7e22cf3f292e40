package texture

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyGenerator_DistinctAndValid(t *testing.T) {
	g := NewKeyGenerator()
	seen := make(map[Key]struct{}, 10000)

	for i := 0; i < 10000; i++ {
		k := g.Next()
		require.NotEqual(t, InvalidKey, k)
		_, dup := seen[k]
		require.False(t, dup, "duplicate key %s at %d", k, i)
		seen[k] = struct{}{}
	}
}

func TestKeyGenerator_Concurrent(t *testing.T) {
	g := NewKeyGenerator()

	const workers, perWorker = 8, 500
	results := make(chan Key, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				results <- g.Next()
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[Key]struct{})
	for k := range results {
		assert.NotEqual(t, InvalidKey, k)
		seen[k] = struct{}{}
	}
	assert.Len(t, seen, workers*perWorker)
}

func TestKeyGenerator_Reset(t *testing.T) {
	g := NewKeyGenerator()
	first := []Key{g.Next(), g.Next(), g.Next()}

	g.Reset()
	assert.Equal(t, first, []Key{g.Next(), g.Next(), g.Next()})
}

func TestKeyGenerator_RolloverPanics(t *testing.T) {
	g := NewKeyGenerator()
	g.seek(math.MaxUint64)

	assert.PanicsWithValue(t, ErrKeySpaceExhausted, func() { g.Next() })
}

func TestKey_StringRoundTrip(t *testing.T) {
	k := NewKeyGenerator().Next()

	parsed, err := ParseKey(k.String())
	require.NoError(t, err)
	assert.Equal(t, k, parsed)

	_, err = ParseKey("not-hex")
	assert.Error(t, err)

	text, err := k.MarshalText()
	require.NoError(t, err)
	assert.Len(t, text, 16)

	var decoded Key
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, k, decoded)
}
