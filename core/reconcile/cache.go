package reconcile

import (
	"context"
	"sync"
	"time"

	"texture-manager/core/catalog"
	"texture-manager/core/texture"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Index holds the three sources, each keyed by object name.
type Index struct {
	// Catalog maps object names to catalog rows.
	Catalog map[string]catalog.TextureAsset

	// Storage maps object names to object sizes.
	Storage map[string]int64

	// Registry maps object names to the manager's records, one per color space.
	Registry map[string][]texture.TextureInfo

	// Built is the timestamp when this index was built.
	Built time.Time

	// TTL is the time-to-live for this index.
	TTL time.Duration
}

// IsExpired returns true if this index has expired based on its TTL.
func (i *Index) IsExpired() bool {
	if i.TTL == 0 {
		return true // No caching
	}
	return time.Since(i.Built) > i.TTL
}

// indexCache holds the engine's last index.
type indexCache struct {
	mu    sync.RWMutex
	index *Index
	sf    singleflight.Group
}

// BuildIndex loads the catalog and storage listing concurrently and snapshots the registry.
// It does not store the index; use index for that.
func (e *Engine) BuildIndex(ctx context.Context) (*Index, error) {
	var (
		catalogIndex map[string]catalog.TextureAsset
		storageSet   map[string]int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		catalogIndex, err = e.loadCatalogIndex(gctx)
		return err
	})
	g.Go(func() (err error) {
		storageSet, err = e.loadStorageSet(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Index{
		Catalog:  catalogIndex,
		Storage:  storageSet,
		Registry: e.loadRegistryIndex(),
		Built:    time.Now(),
		TTL:      e.spec.CacheTTL,
	}, nil
}

// index returns the cached index, building a new one if it is missing or expired.
// Concurrent callers share one build.
func (e *Engine) index(ctx context.Context) (*Index, error) {
	e.cache.mu.RLock()
	idx := e.cache.index
	e.cache.mu.RUnlock()

	if idx != nil && !idx.IsExpired() {
		return idx, nil
	}

	result, err, _ := e.cache.sf.Do("index", func() (interface{}, error) {
		e.cache.mu.RLock()
		idx := e.cache.index
		e.cache.mu.RUnlock()
		if idx != nil && !idx.IsExpired() {
			return idx, nil
		}

		built, err := e.BuildIndex(ctx)
		if err != nil {
			return nil, err
		}

		e.cache.mu.Lock()
		e.cache.index = built
		e.cache.mu.Unlock()
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Index), nil
}

// Invalidate drops the cached index.
func (e *Engine) Invalidate() {
	e.cache.mu.Lock()
	e.cache.index = nil
	e.cache.mu.Unlock()
}
