package reconcile

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"texture-manager/core/catalog"
	"texture-manager/core/storage"
	"texture-manager/core/texture"

	"github.com/minio/minio-go/v7"
)

// Catalog is the catalog database view the engine reads.
type Catalog interface {
	List(ctx context.Context, f catalog.Filter) ([]catalog.TextureAsset, error)
	Get(ctx context.Context, object string) (*catalog.TextureAsset, error)
}

// Registry is the texture manager view the engine reads.
type Registry interface {
	Snapshot() []texture.TextureInfo
}

// Mutator applies planned actions.
type Mutator interface {
	DeleteCatalog(ctx context.Context, object string) error
	ReleaseTextures(ctx context.Context, object string) error
	AddCatalog(ctx context.Context, object string) error
	Preload(ctx context.Context, asset catalog.TextureAsset) error
}

// CatalogBatchDeleter is implemented by mutators that delete catalog rows in one statement.
type CatalogBatchDeleter interface {
	DeleteCatalogBatch(ctx context.Context, objects []string) error
}

func (e *Engine) loadCatalogIndex(ctx context.Context) (map[string]catalog.TextureAsset, error) {
	assets, err := e.catalog.List(ctx, catalog.Filter{Prefix: e.spec.StoragePrefix})
	if err != nil {
		return nil, err
	}
	index := make(map[string]catalog.TextureAsset, len(assets))
	for _, a := range assets {
		index[a.Object] = a
	}
	return index, nil
}

// loadStorageSet lists the bucket once and maps each image object to its size.
func (e *Engine) loadStorageSet(ctx context.Context) (map[string]int64, error) {
	set := make(map[string]int64)
	opts := minio.ListObjectsOptions{
		Prefix:    e.spec.StoragePrefix,
		Recursive: true,
	}
	for obj := range e.client.ListObjects(ctx, e.bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", obj.Err)
		}
		if e.isImage(obj.Key) {
			set[obj.Key] = obj.Size
		}
	}
	return set, nil
}

func (e *Engine) loadRegistryIndex() map[string][]texture.TextureInfo {
	index := make(map[string][]texture.TextureInfo)
	for _, info := range e.registry.Snapshot() {
		if !strings.HasPrefix(info.AssetID, e.spec.StoragePrefix) {
			continue
		}
		index[info.AssetID] = append(index[info.AssetID], info)
	}
	return index
}

// queryCatalog returns the catalog row for object, or nil.
func (e *Engine) queryCatalog(ctx context.Context, object string) (*catalog.TextureAsset, error) {
	a, err := e.catalog.Get(ctx, object)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, nil
	}
	return a, err
}

// checkStorage reports whether object exists and its size.
func (e *Engine) checkStorage(ctx context.Context, object string) (bool, int64, error) {
	info, err := e.client.StatObject(ctx, e.bucket, object, minio.StatObjectOptions{})
	if storage.IsNotFound(err) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("failed to stat %s: %w", object, err)
	}
	return true, info.Size, nil
}

func (e *Engine) queryRegistry(object string) []texture.TextureInfo {
	var infos []texture.TextureInfo
	for _, info := range e.registry.Snapshot() {
		if info.AssetID == object {
			infos = append(infos, info)
		}
	}
	return infos
}

func (e *Engine) isImage(object string) bool {
	ext := strings.ToLower(path.Ext(object))
	for _, want := range e.extensions {
		if ext == want {
			return true
		}
	}
	return false
}
