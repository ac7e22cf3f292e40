package texture

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/gputypes"
)

// Key identifies a managed texture for the lifetime of the process.
type Key uint64

// InvalidKey is the sentinel never returned by a KeyGenerator.
const InvalidKey Key = 0

// String formats the key as fixed-width hex.
func (k Key) String() string {
	return fmt.Sprintf("%016x", uint64(k))
}

// ParseKey parses a key produced by Key.String.
func ParseKey(s string) (Key, error) {
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return InvalidKey, fmt.Errorf("texture: parse key %q: %w", s, err)
	}
	return Key(v), nil
}

// MarshalText encodes the key as hex so JSON and URLs agree.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Key) UnmarshalText(b []byte) error {
	v, err := ParseKey(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// ColorSpace selects how decoded pixel data is interpreted on the GPU.
type ColorSpace uint8

const (
	// ColorSpaceSRGB stores gamma-encoded color (albedo, UI).
	ColorSpaceSRGB ColorSpace = iota
	// ColorSpaceLinear stores linear data (normals, roughness, masks).
	ColorSpaceLinear
)

// String returns the lowercase name of the color space.
func (c ColorSpace) String() string {
	switch c {
	case ColorSpaceSRGB:
		return "srgb"
	case ColorSpaceLinear:
		return "linear"
	default:
		return fmt.Sprintf("unknown(%d)", c)
	}
}

// Format returns the GPU format used for RGBA8 data in this color space.
func (c ColorSpace) Format() gputypes.TextureFormat {
	if c == ColorSpaceLinear {
		return gputypes.TextureFormatRGBA8Unorm
	}
	return gputypes.TextureFormatRGBA8UnormSrgb
}

// ParseColorSpace parses "srgb" or "linear". Empty input yields sRGB.
func ParseColorSpace(s string) (ColorSpace, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "srgb":
		return ColorSpaceSRGB, nil
	case "linear":
		return ColorSpaceLinear, nil
	default:
		return ColorSpaceSRGB, fmt.Errorf("%w %q", ErrUnknownColorSpace, s)
	}
}

// State is the residency state of a ManagedTexture.
type State uint8

const (
	StateNotLoaded State = iota
	StateQueued
	StateUploading
	StateResident
	StateDemoted
	StateRetired
)

func (s State) String() string {
	switch s {
	case StateNotLoaded:
		return "not_loaded"
	case StateQueued:
		return "queued"
	case StateUploading:
		return "uploading"
	case StateResident:
		return "resident"
	case StateDemoted:
		return "demoted"
	case StateRetired:
		return "retired"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// AssetData is an opaque, immutable source asset description supplied by the caller.
// The manager never mutates it; it only reads its identity and mip count.
type AssetData interface {
	// AssetID identifies the source asset. Together with a ColorSpace it forms the registry key.
	AssetID() string
	// MipLevels is the length of the full mip chain.
	MipLevels() int
}

// MipLevel is one level of decoded pixel data, tightly packed RGBA8.
type MipLevel struct {
	Width  int
	Height int
	Pixels []byte
}

// MipChain is a decoded texture ready for upload. Levels[0] is the finest level.
type MipChain struct {
	Format gputypes.TextureFormat
	Levels []MipLevel
}

// Bytes returns the total pixel payload of levels [base:].
func (c *MipChain) Bytes(base int) uint64 {
	var n uint64
	for i := base; i < len(c.Levels); i++ {
		n += uint64(len(c.Levels[i].Pixels))
	}
	return n
}

// UploadRequest describes one texture upload handed to an ExecutionContext.
type UploadRequest struct {
	Key    Key
	Label  string
	Format gputypes.TextureFormat
	// Extent is the size of the base (finest uploaded) level.
	Extent gputypes.Extent3D
	// BaseMip is the index in the full chain of Levels[0].
	BaseMip int
	Levels  []MipLevel
}

// MemoryStats is the video-memory telemetry reported by an ExecutionContext.
type MemoryStats struct {
	BudgetBytes  uint64 `json:"budget_bytes"`
	UsedBytes    uint64 `json:"used_bytes"`
	TextureCount int    `json:"texture_count"`
}

// Utilization returns used/budget in [0, +inf). A zero budget reports 0.
func (s MemoryStats) Utilization() float64 {
	if s.BudgetBytes == 0 {
		return 0
	}
	return float64(s.UsedBytes) / float64(s.BudgetBytes)
}

// ExecutionContext is the device/command submission sink that performs uploads.
// Calls are synchronous from the manager's point of view.
type ExecutionContext interface {
	// UploadTexture stores the request's levels in video memory and returns the
	// number of bytes now resident for the key.
	UploadTexture(ctx context.Context, req UploadRequest) (uint64, error)
	// ReleaseTexture frees any video memory held for the key.
	ReleaseTexture(key Key)
	// MemoryStats reports the current budget and usage.
	MemoryStats() MemoryStats
}

// Provider decodes source assets into mip chains.
type Provider interface {
	Decode(ctx context.Context, asset AssetData, colorSpace ColorSpace) (*MipChain, error)
}

// TextureRef is a render-time, non-owning handle. It is a registry lookup key and never
// holds a share of the texture.
type TextureRef struct {
	Key Key
}

// RefOf returns a non-owning reference to t.
func RefOf(t *ManagedTexture) TextureRef {
	return TextureRef{Key: t.Key()}
}
