package texture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalcPreloadMips(t *testing.T) {
	prev := CalcPreloadMips(0)
	assert.Equal(t, 0, prev)

	for levels := 1; levels <= 32; levels++ {
		got := CalcPreloadMips(levels)
		assert.LessOrEqual(t, got, levels, "bounded by chain length")
		assert.GreaterOrEqual(t, got, prev, "monotonic at %d", levels)
		prev = got
	}

	assert.Equal(t, 0, CalcPreloadMips(-3))
	assert.Equal(t, 1, CalcPreloadMips(1))
	assert.Equal(t, PreloadMipCount, CalcPreloadMips(13))
}

func TestMipSkipFor(t *testing.T) {
	tests := []struct {
		name                string
		minimum, levels, pl int
		want                int
	}{
		{"NoSkip", 0, 10, 4, 0},
		{"Skip", 2, 10, 4, 2},
		{"KeepsPreloadPrefix", 9, 10, 4, 6},
		{"ShortChain", 3, 3, 3, 0},
		{"Negative", -1, 10, 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mipSkipFor(tt.minimum, tt.levels, tt.pl))
		})
	}
}

func TestNextMipSkipLevel(t *testing.T) {
	cfg := DefaultConfig()
	stats := func(used uint64) MemoryStats { return MemoryStats{BudgetBytes: 100, UsedBytes: used} }

	assert.Equal(t, 1, nextMipSkipLevel(0, stats(95), cfg), "pressure raises the level")
	assert.Equal(t, 2, nextMipSkipLevel(2, stats(75), cfg), "between watermarks holds")
	assert.Equal(t, 1, nextMipSkipLevel(2, stats(10), cfg), "headroom lowers the level")
	assert.Equal(t, 0, nextMipSkipLevel(0, stats(10), cfg))
	assert.Equal(t, cfg.MaxMipSkip, nextMipSkipLevel(cfg.MaxMipSkip, stats(100), cfg))
	assert.Equal(t, 0, nextMipSkipLevel(0, MemoryStats{}, cfg), "unknown budget never raises")
}

func TestLRUPolicy(t *testing.T) {
	candidates := []DemotionCandidate{
		{Key: 1, Bytes: 40, LastUse: 30},
		{Key: 2, Bytes: 40, LastUse: 10},
		{Key: 3, Bytes: 40, LastUse: 20},
	}

	t.Run("DemotesOldestUntilTarget", func(t *testing.T) {
		p := LRUPolicy{Target: 0.5}
		keys := p.SelectForDemotion(candidates, MemoryStats{BudgetBytes: 200, UsedBytes: 180})
		assert.Equal(t, []Key{2, 3}, keys)
	})

	t.Run("UnderTarget", func(t *testing.T) {
		p := LRUPolicy{Target: 0.5}
		keys := p.SelectForDemotion(candidates, MemoryStats{BudgetBytes: 200, UsedBytes: 50})
		assert.Empty(t, keys)
	})

	t.Run("ZeroTargetDemotesAll", func(t *testing.T) {
		keys := LRUPolicy{}.SelectForDemotion(candidates, MemoryStats{})
		assert.Equal(t, []Key{2, 3, 1}, keys)
	})

	t.Run("DoesNotReorderInput", func(t *testing.T) {
		LRUPolicy{}.SelectForDemotion(candidates, MemoryStats{})
		assert.Equal(t, Key(1), candidates[0].Key)
	})
}

func TestConfigNormalized(t *testing.T) {
	cfg := Config{MaxMipSkip: -1, HighWatermark: 2, LowWatermark: 0.95, DemotionTarget: -1}.normalized()

	assert.Equal(t, DefaultMaxMipSkip, cfg.MaxMipSkip)
	assert.Equal(t, DefaultHighWatermark, cfg.HighWatermark)
	assert.Less(t, cfg.LowWatermark, cfg.HighWatermark)
	assert.Equal(t, DefaultDemotionTarget, cfg.DemotionTarget)
}

func TestColorSpace(t *testing.T) {
	cs, err := ParseColorSpace("Linear")
	assert.NoError(t, err)
	assert.Equal(t, ColorSpaceLinear, cs)

	cs, err = ParseColorSpace("")
	assert.NoError(t, err)
	assert.Equal(t, ColorSpaceSRGB, cs)

	_, err = ParseColorSpace("hdr")
	assert.Error(t, err)

	assert.True(t, ColorSpaceSRGB.Format().IsSrgb())
	assert.False(t, ColorSpaceLinear.Format().IsSrgb())
}
