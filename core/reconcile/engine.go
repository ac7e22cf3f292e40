package reconcile

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"texture-manager/core/catalog"
	"texture-manager/core/storage"
	"texture-manager/core/texture"
)

// Engine reconciles the texture catalog, the storage bucket and the texture registry.
type Engine struct {
	spec       Spec
	extensions []string
	catalog    Catalog
	client     storage.Client
	bucket     string
	registry   Registry
	cache      indexCache
}

// NewEngine creates an engine over the three sources.
func NewEngine(spec Spec, cat Catalog, client storage.Client, bucket string, registry Registry) *Engine {
	exts := spec.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	lower := make([]string, len(exts))
	for i, ext := range exts {
		lower[i] = strings.ToLower(ext)
	}
	return &Engine{
		spec:       spec,
		extensions: lower,
		catalog:    cat,
		client:     client,
		bucket:     bucket,
		registry:   registry,
	}
}

// ReconcileAll builds a fresh index and returns one result per object name found in any
// source, sorted by name.
func (e *Engine) ReconcileAll(ctx context.Context) ([]Result, error) {
	idx, err := e.BuildIndex(ctx)
	if err != nil {
		return nil, err
	}
	return resultsFromIndex(idx), nil
}

// ReconcileOne reconciles a single object. With a cache TTL it answers from the cached
// index; otherwise it queries each source directly.
func (e *Engine) ReconcileOne(ctx context.Context, object string) (*Result, error) {
	if e.spec.CacheTTL > 0 {
		idx, err := e.index(ctx)
		if err != nil {
			return nil, err
		}
		result := buildResult(object, idx)
		return &result, nil
	}

	asset, err := e.queryCatalog(ctx, object)
	if err != nil {
		return nil, err
	}
	present, size, err := e.checkStorage(ctx, object)
	if err != nil {
		return nil, err
	}

	idx := &Index{
		Catalog:  map[string]catalog.TextureAsset{},
		Storage:  map[string]int64{},
		Registry: map[string][]texture.TextureInfo{},
	}
	if asset != nil {
		idx.Catalog[object] = *asset
	}
	if present {
		idx.Storage[object] = size
	}
	if infos := e.queryRegistry(object); len(infos) > 0 {
		idx.Registry[object] = infos
	}

	result := buildResult(object, idx)
	return &result, nil
}

func resultsFromIndex(idx *Index) []Result {
	union := buildUnion(idx)
	results := make([]Result, 0, len(union))
	for object := range union {
		results = append(results, buildResult(object, idx))
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Object < results[j].Object
	})
	return results
}

// buildUnion collects the object names of all three sources.
func buildUnion(idx *Index) map[string]struct{} {
	union := make(map[string]struct{}, len(idx.Storage))
	for object := range idx.Catalog {
		union[object] = struct{}{}
	}
	for object := range idx.Storage {
		union[object] = struct{}{}
	}
	for object := range idx.Registry {
		union[object] = struct{}{}
	}
	return union
}

// buildResult creates the Result for a single object.
func buildResult(object string, idx *Index) Result {
	asset, inCatalog := idx.Catalog[object]
	size, inStorage := idx.Storage[object]
	infos := idx.Registry[object]

	result := Result{
		Object:         object,
		CatalogPresent: inCatalog,
		StoragePresent: inStorage,
		Registered:     len(infos) > 0,
		Mismatch:       []string{},
		Metadata:       map[string]string{},
	}

	if inCatalog {
		result.Metadata["color_space"] = asset.ColorSpace
		result.Metadata["priority"] = strconv.Itoa(asset.Priority)
	}
	if inStorage {
		result.Metadata["size"] = strconv.FormatInt(size, 10)
		if size == 0 {
			result.Mismatch = append(result.Mismatch, "storage: empty object")
		}
	}
	if len(infos) > 0 {
		keys := make([]string, len(infos))
		states := make([]string, len(infos))
		for i, info := range infos {
			keys[i] = info.Key.String()
			states[i] = info.State
		}
		result.Metadata["keys"] = strings.Join(keys, ",")
		result.Metadata["states"] = strings.Join(states, ",")
	}

	for _, info := range infos {
		if info.Error != "" {
			result.Mismatch = append(result.Mismatch, fmt.Sprintf("upload(%s): %s", info.ColorSpace, info.Error))
		}
	}
	if inCatalog && len(infos) > 0 {
		result.Mismatch = append(result.Mismatch, compareFields(asset, infos)...)
	}
	return result
}

// compareFields reports catalog fields no registered record agrees with.
func compareFields(asset catalog.TextureAsset, infos []texture.TextureInfo) []string {
	var mismatch []string

	var spaces []string
	matched := false
	for _, info := range infos {
		spaces = append(spaces, info.ColorSpace)
		if info.ColorSpace == asset.ColorSpace {
			matched = true
			if want := asset.Descriptor().MipLevels(); want > 0 && info.MipLevels != want {
				mismatch = append(mismatch, fmt.Sprintf("mip_levels: catalog=%d registry=%d", want, info.MipLevels))
			}
		}
	}
	if !matched {
		mismatch = append(mismatch, fmt.Sprintf("color_space: catalog=%s registry=%s", asset.ColorSpace, strings.Join(spaces, ",")))
	}
	return mismatch
}
