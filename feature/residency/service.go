package residency

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"texture-manager/core/asset"
	"texture-manager/core/logger"
	"texture-manager/core/texture"

	"go.uber.org/zap"
)

// ErrNotPinned is returned by Unpin for textures the service does not hold.
var ErrNotPinned = errors.New("residency: texture not pinned")

// PreloadRequest describes a texture to register.
type PreloadRequest struct {
	// Object is the storage object holding the source image.
	Object string `json:"object"`
	// ColorSpace is "srgb" (default) or "linear".
	ColorSpace string `json:"color_space,omitempty"`
	// Force uploads on the request instead of queueing.
	Force bool `json:"force,omitempty"`
	// Pin keeps a share so the texture is never demoted.
	Pin bool `json:"pin,omitempty"`
	// Width, Height and Levels skip the storage probe when all dimensions are given.
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`
	Levels int `json:"levels,omitempty"`
}

// DemoteResult reports memory before and after a demotion pass.
type DemoteResult struct {
	Before texture.MemoryStats `json:"before"`
	After  texture.MemoryStats `json:"after"`
}

// ReadBacker reads resident mip levels back from an execution context.
type ReadBacker interface {
	ReadBack(key texture.Key, level int) (texture.MipLevel, error)
}

// Service exposes the texture manager to HTTP clients. HTTP clients hold no handles, so
// the service drops the caller share of every preload unless the request pins it.
type Service struct {
	manager  *texture.Manager
	provider *asset.Provider
	exec     texture.ExecutionContext
	reader   ReadBacker
	logger   *zap.Logger

	mu     sync.Mutex
	pinned map[texture.Key]*texture.ManagedTexture
}

// NewService creates a residency service. reader may be nil, disabling mip read-back.
func NewService(manager *texture.Manager, provider *asset.Provider, exec texture.ExecutionContext, reader ReadBacker, logger *zap.Logger) *Service {
	return &Service{
		manager:  manager,
		provider: provider,
		exec:     exec,
		reader:   reader,
		logger:   logger,
		pinned:   make(map[texture.Key]*texture.ManagedTexture),
	}
}

// Preload registers and schedules a texture. With Force the upload error, if any, is
// returned along with the texture's info.
func (s *Service) Preload(ctx context.Context, req PreloadRequest) (texture.TextureInfo, error) {
	cs, err := texture.ParseColorSpace(req.ColorSpace)
	if err != nil {
		return texture.TextureInfo{}, err
	}

	desc := asset.Descriptor{Object: req.Object, Width: req.Width, Height: req.Height, Levels: req.Levels}
	if desc.MipLevels() == 0 {
		if desc, err = s.provider.Describe(ctx, req.Object); err != nil {
			return texture.TextureInfo{}, err
		}
	}

	t, uploadErr := s.manager.PreloadTexture(ctx, desc, cs, nil, req.Force)
	if t == nil {
		return texture.TextureInfo{}, uploadErr
	}

	s.mu.Lock()
	_, held := s.pinned[t.Key()]
	pin := req.Pin && !held
	if pin {
		s.pinned[t.Key()] = t
	}
	s.mu.Unlock()
	if !pin {
		t.Release()
	}

	info := t.Info()
	l := logger.WithTexture(s.logger, t.Key(), req.Object)
	if uploadErr != nil {
		l.Warn("Preload upload failed", zap.String("color_space", cs.String()), zap.Error(uploadErr))
	} else {
		l.Debug("Preloaded texture",
			zap.String("color_space", cs.String()),
			zap.String("state", info.State),
			zap.Bool("pinned", pin || held))
	}
	return info, uploadErr
}

// List returns every registered texture.
func (s *Service) List() []texture.TextureInfo {
	return s.manager.Snapshot()
}

// Get returns one registered texture.
func (s *Service) Get(key texture.Key) (texture.TextureInfo, error) {
	t, ok := s.manager.Lookup(key)
	if !ok {
		return texture.TextureInfo{}, texture.ErrTextureNotFound
	}
	return t.Info(), nil
}

// Stats returns the manager summary.
func (s *Service) Stats() texture.ManagerStats {
	return s.manager.Stats()
}

// Schedule requests residency for key, inline unless async.
func (s *Service) Schedule(ctx context.Context, key texture.Key, async bool) (texture.TextureInfo, error) {
	err := s.manager.ScheduleTextureUpload(ctx, texture.TextureRef{Key: key}, nil, async)
	if errors.Is(err, texture.ErrTextureNotFound) || errors.Is(err, texture.ErrManagerStopped) {
		return texture.TextureInfo{}, err
	}
	info, lookupErr := s.Get(key)
	if lookupErr != nil {
		return texture.TextureInfo{}, lookupErr
	}
	return info, err
}

// Unload retires key and drops its pin so its memory is freed at once.
func (s *Service) Unload(key texture.Key) error {
	t, ok := s.manager.Lookup(key)
	if !ok {
		return texture.ErrTextureNotFound
	}
	s.unpin(key)
	s.manager.UnloadTexture(t)
	return nil
}

// Unpin drops the service's share of key, making it a demotion candidate again.
func (s *Service) Unpin(key texture.Key) error {
	if !s.unpin(key) {
		return ErrNotPinned
	}
	return nil
}

// Release removes key from the registry.
func (s *Service) Release(key texture.Key) error {
	t, ok := s.manager.Lookup(key)
	if !ok {
		return texture.ErrTextureNotFound
	}
	s.manager.ReleaseTexture(t)
	s.unpin(key)
	return nil
}

// ReleaseAsset releases every registered texture of object, pinned or not, and returns
// how many were released.
func (s *Service) ReleaseAsset(object string) int {
	released := 0
	for _, info := range s.manager.Snapshot() {
		if info.AssetID != object {
			continue
		}
		if err := s.Release(info.Key); err == nil {
			released++
		}
	}
	return released
}

// Synchronize waits for the upload queue, or drops it.
func (s *Service) Synchronize(drop bool) texture.ManagerStats {
	s.manager.Synchronize(drop)
	return s.manager.Stats()
}

// Kickoff releases a held upload batch.
func (s *Service) Kickoff() {
	s.manager.Kickoff()
}

// Demote frees the memory of unpinned textures chosen by the demotion policy.
func (s *Service) Demote() DemoteResult {
	before := s.exec.MemoryStats()
	s.manager.DemoteTexturesFromVidmem()
	return DemoteResult{Before: before, After: s.exec.MemoryStats()}
}

// UpdateMipSkip recomputes the global mip-skip level.
func (s *Service) UpdateMipSkip() int {
	return s.manager.UpdateMipMapSkipLevel(nil)
}

// ReadBack returns a resident mip level of key.
func (s *Service) ReadBack(key texture.Key, level int) (texture.MipLevel, error) {
	if s.reader == nil {
		return texture.MipLevel{}, fmt.Errorf("residency: read-back unsupported by the execution context")
	}
	if _, ok := s.manager.Lookup(key); !ok {
		return texture.MipLevel{}, texture.ErrTextureNotFound
	}
	return s.reader.ReadBack(key, level)
}

// Close drops every pin.
func (s *Service) Close() {
	s.mu.Lock()
	pinned := s.pinned
	s.pinned = make(map[texture.Key]*texture.ManagedTexture)
	s.mu.Unlock()

	for _, t := range pinned {
		t.Release()
	}
}

func (s *Service) unpin(key texture.Key) bool {
	s.mu.Lock()
	t, ok := s.pinned[key]
	delete(s.pinned, key)
	s.mu.Unlock()

	if ok {
		t.Release()
	}
	return ok
}
