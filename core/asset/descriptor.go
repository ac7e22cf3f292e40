package asset

import "math/bits"

// Descriptor identifies a source image in object storage.
type Descriptor struct {
	// Object is the storage object name. It is the texture's asset id.
	Object string `json:"object"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	// Levels overrides the chain length derived from the dimensions when positive.
	Levels int `json:"levels,omitempty"`
}

func (d Descriptor) AssetID() string { return d.Object }

// MipLevels returns the length of the full chain, or 0 when the dimensions are unknown.
func (d Descriptor) MipLevels() int {
	if d.Levels > 0 {
		return d.Levels
	}
	return MipCount(d.Width, d.Height)
}

// MipCount returns the number of levels from width x height down to 1x1.
func MipCount(width, height int) int {
	m := max(width, height)
	if m <= 0 {
		return 0
	}
	return bits.Len(uint(m))
}
