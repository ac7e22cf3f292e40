package device

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"texture-manager/core/texture"

	"github.com/gogpu/gputypes"
	"go.uber.org/zap"
)

var (
	// ErrBudgetExceeded is returned when an upload would exceed the memory budget.
	ErrBudgetExceeded = errors.New("device: memory budget exceeded")
	// ErrClosed is returned when operating on a closed context.
	ErrClosed = errors.New("device: context closed")
	// ErrNotResident is returned when reading back a key that holds no memory.
	ErrNotResident = errors.New("device: texture not resident")
	// ErrLevelNotResident is returned when reading back a mip level that was skipped.
	ErrLevelNotResident = errors.New("device: mip level not resident")
	// ErrInvalidUpload is returned for requests whose levels do not match their sizes.
	ErrInvalidUpload = errors.New("device: invalid upload")
)

// Allocation describes the memory held for one texture key.
type Allocation struct {
	Key        texture.Key            `json:"key"`
	Label      string                 `json:"label"`
	Format     gputypes.TextureFormat `json:"format"`
	Extent     gputypes.Extent3D      `json:"extent"`
	BaseMip    int                    `json:"base_mip"`
	Levels     int                    `json:"levels"`
	Bytes      uint64                 `json:"bytes"`
	UploadedAt time.Time              `json:"uploaded_at"`
}

type allocation struct {
	Allocation
	levels []texture.MipLevel
}

// HostContext is a texture.ExecutionContext backed by host memory.
//
// HostContext is safe for concurrent use.
type HostContext struct {
	mu sync.RWMutex

	budgetBytes uint64
	usedBytes   uint64
	allocs      map[texture.Key]*allocation
	latency     time.Duration
	uploads     uint64
	rejected    uint64
	closed      bool

	logger *zap.Logger
}

// NewHostContext creates a context with the configured budget.
func NewHostContext(cfg Config, logger *zap.Logger) *HostContext {
	budget := cfg.BudgetMB
	if budget <= 0 {
		budget = DefaultBudgetMB
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	//nolint:gosec // G115: budget is positive
	return &HostContext{
		budgetBytes: uint64(budget) * 1024 * 1024,
		allocs:      make(map[texture.Key]*allocation),
		latency:     time.Duration(max(cfg.UploadLatencyMS, 0)) * time.Millisecond,
		logger:      logger,
	}
}

// UploadTexture copies req's levels into the context, replacing any earlier upload for
// the same key, and returns the bytes now held for it.
func (h *HostContext) UploadTexture(ctx context.Context, req texture.UploadRequest) (uint64, error) {
	if len(req.Levels) == 0 {
		return 0, fmt.Errorf("%w: no levels for %s", ErrInvalidUpload, req.Key)
	}
	var size uint64
	for i, l := range req.Levels {
		if l.Width <= 0 || l.Height <= 0 || len(l.Pixels) != l.Width*l.Height*4 {
			return 0, fmt.Errorf("%w: level %d of %s is %dx%d with %d bytes",
				ErrInvalidUpload, req.BaseMip+i, req.Key, l.Width, l.Height, len(l.Pixels))
		}
		size += uint64(len(l.Pixels))
	}

	if h.latency > 0 {
		select {
		case <-time.After(h.latency):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	} else if err := ctx.Err(); err != nil {
		return 0, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return 0, ErrClosed
	}

	var previous uint64
	if prev, ok := h.allocs[req.Key]; ok {
		previous = prev.Bytes
	}
	if h.usedBytes-previous+size > h.budgetBytes {
		h.rejected++
		return 0, fmt.Errorf("%w: %s needs %d bytes, %d of %d in use",
			ErrBudgetExceeded, req.Key, size, h.usedBytes-previous, h.budgetBytes)
	}

	levels := make([]texture.MipLevel, len(req.Levels))
	for i, l := range req.Levels {
		pixels := make([]byte, len(l.Pixels))
		copy(pixels, l.Pixels)
		levels[i] = texture.MipLevel{Width: l.Width, Height: l.Height, Pixels: pixels}
	}

	h.allocs[req.Key] = &allocation{
		Allocation: Allocation{
			Key:        req.Key,
			Label:      req.Label,
			Format:     req.Format,
			Extent:     req.Extent,
			BaseMip:    req.BaseMip,
			Levels:     len(levels),
			Bytes:      size,
			UploadedAt: time.Now(),
		},
		levels: levels,
	}
	h.usedBytes = h.usedBytes - previous + size
	h.uploads++
	return size, nil
}

// ReleaseTexture frees the memory held for key. Unknown keys are ignored.
func (h *HostContext) ReleaseTexture(key texture.Key) {
	h.mu.Lock()
	defer h.mu.Unlock()

	a, ok := h.allocs[key]
	if !ok {
		return
	}
	h.usedBytes -= a.Bytes
	delete(h.allocs, key)
}

// MemoryStats reports the budget and current usage.
func (h *HostContext) MemoryStats() texture.MemoryStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return texture.MemoryStats{
		BudgetBytes:  h.budgetBytes,
		UsedBytes:    h.usedBytes,
		TextureCount: len(h.allocs),
	}
}

// Counters returns the number of accepted and budget-rejected uploads.
func (h *HostContext) Counters() (uploads, rejected uint64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.uploads, h.rejected
}

// Allocation returns the allocation held for key.
func (h *HostContext) Allocation(key texture.Key) (Allocation, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	a, ok := h.allocs[key]
	if !ok {
		return Allocation{}, false
	}
	return a.Allocation, true
}

// Allocations returns every allocation ordered by label.
func (h *HostContext) Allocations() []Allocation {
	h.mu.RLock()
	out := make([]Allocation, 0, len(h.allocs))
	for _, a := range h.allocs {
		out = append(out, a.Allocation)
	}
	h.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// ReadBack returns a copy of mip level (an index into the full chain) of key. Levels
// finer than the allocation's base mip were skipped at upload and are not resident.
func (h *HostContext) ReadBack(key texture.Key, level int) (texture.MipLevel, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	a, ok := h.allocs[key]
	if !ok {
		return texture.MipLevel{}, fmt.Errorf("%w: %s", ErrNotResident, key)
	}
	i := level - a.BaseMip
	if i < 0 || i >= len(a.levels) {
		return texture.MipLevel{}, fmt.Errorf("%w: %s level %d (resident %d..%d)",
			ErrLevelNotResident, key, level, a.BaseMip, a.BaseMip+len(a.levels)-1)
	}

	l := a.levels[i]
	pixels := make([]byte, len(l.Pixels))
	copy(pixels, l.Pixels)
	return texture.MipLevel{Width: l.Width, Height: l.Height, Pixels: pixels}, nil
}

// Close frees every allocation. Later uploads fail with ErrClosed.
func (h *HostContext) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	h.logger.Info("Host execution context closed",
		zap.Int("textures", len(h.allocs)),
		zap.Uint64("used_bytes", h.usedBytes),
		zap.Uint64("uploads", h.uploads))
	h.allocs = make(map[texture.Key]*allocation)
	h.usedBytes = 0
}

var _ texture.ExecutionContext = (*HostContext)(nil)
