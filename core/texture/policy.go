package texture

import "sort"

// PreloadMipCount is the number of coarsest mip levels that form a texture's low-resolution
// placeholder. It does not depend on texture size.
const PreloadMipCount = 4

// CalcPreloadMips returns how many of the coarsest levels of a chain of mipLevels should be
// uploaded eagerly. The result is monotonic in mipLevels and never exceeds it.
func CalcPreloadMips(mipLevels int) int {
	return clamp(mipLevels, 0, PreloadMipCount)
}

// mipSkipFor returns how many of the finest levels an upload drops given the global
// minimum mip level. The placeholder prefix is always uploaded.
func mipSkipFor(minimumMip, levels, preloadMips int) int {
	return clamp(minimumMip, 0, max(levels-preloadMips, 0))
}

// nextMipSkipLevel steps the global mip-skip level by one toward relieving (or releasing)
// memory pressure.
func nextMipSkipLevel(current int, stats MemoryStats, cfg Config) int {
	u := stats.Utilization()
	switch {
	case u > cfg.HighWatermark:
		current++
	case u < cfg.LowWatermark:
		current--
	}
	return clamp(current, 0, cfg.MaxMipSkip)
}

// DemotionCandidate describes a resident texture that nothing outside the registry references.
type DemotionCandidate struct {
	Key     Key
	AssetID string
	Bytes   uint64
	// LastUse is a monotonic use tick; lower means less recently used.
	LastUse uint64
}

// DemotionPolicy chooses which candidates DemoteTexturesFromVidmem demotes.
type DemotionPolicy interface {
	SelectForDemotion(candidates []DemotionCandidate, stats MemoryStats) []Key
}

// DemotionPolicyFunc adapts a function to DemotionPolicy.
type DemotionPolicyFunc func(candidates []DemotionCandidate, stats MemoryStats) []Key

func (f DemotionPolicyFunc) SelectForDemotion(candidates []DemotionCandidate, stats MemoryStats) []Key {
	return f(candidates, stats)
}

// LRUPolicy demotes least-recently-used textures first until projected usage falls to
// Target × budget. A zero Target demotes every candidate.
type LRUPolicy struct {
	Target float64
}

func (p LRUPolicy) SelectForDemotion(candidates []DemotionCandidate, stats MemoryStats) []Key {
	sorted := make([]DemotionCandidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LastUse < sorted[j].LastUse
	})

	target := uint64(p.Target * float64(stats.BudgetBytes))
	used := stats.UsedBytes

	keys := make([]Key, 0, len(sorted))
	for _, c := range sorted {
		if p.Target > 0 && used <= target {
			break
		}
		keys = append(keys, c.Key)
		used -= min(c.Bytes, used)
	}
	return keys
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
