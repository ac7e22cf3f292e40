package reconcile

import (
	"context"
	"fmt"
	"testing"
	"time"

	"texture-manager/core/catalog"
	"texture-manager/core/storage/mocks"
	"texture-manager/core/texture"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	rows    []catalog.TextureAsset
	listErr error
	lists   int
}

func (c *fakeCatalog) List(_ context.Context, f catalog.Filter) ([]catalog.TextureAsset, error) {
	c.lists++
	if c.listErr != nil {
		return nil, c.listErr
	}
	var out []catalog.TextureAsset
	for _, r := range c.rows {
		if len(r.Object) >= len(f.Prefix) && r.Object[:len(f.Prefix)] == f.Prefix {
			out = append(out, r)
		}
	}
	return out, nil
}

func (c *fakeCatalog) Get(_ context.Context, object string) (*catalog.TextureAsset, error) {
	for _, r := range c.rows {
		if r.Object == object {
			return &r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", catalog.ErrNotFound, object)
}

type fakeRegistry []texture.TextureInfo

func (r fakeRegistry) Snapshot() []texture.TextureInfo { return r }

func listing(objects ...minio.ObjectInfo) func() <-chan minio.ObjectInfo {
	return func() <-chan minio.ObjectInfo {
		ch := make(chan minio.ObjectInfo, len(objects))
		for _, o := range objects {
			ch <- o
		}
		close(ch)
		return ch
	}
}

func newTestEngine(spec Spec, cat *fakeCatalog, reg fakeRegistry, objects ...minio.ObjectInfo) (*Engine, *mocks.Client) {
	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "textures", mock.Anything).Return(listing(objects...))
	return NewEngine(spec, cat, client, "textures", reg), client
}

func TestBuildIndex_ErrorHandling(t *testing.T) {
	t.Run("Catalog", func(t *testing.T) {
		e, _ := newTestEngine(Spec{}, &fakeCatalog{listErr: fmt.Errorf("db error")}, nil)
		_, err := e.BuildIndex(context.Background())
		assert.ErrorContains(t, err, "db error")
	})

	t.Run("Storage", func(t *testing.T) {
		e, _ := newTestEngine(Spec{}, &fakeCatalog{}, nil, minio.ObjectInfo{Err: fmt.Errorf("storage error")})
		_, err := e.BuildIndex(context.Background())
		assert.ErrorContains(t, err, "storage error")
	})
}

func TestBuildIndex_FiltersExtensions(t *testing.T) {
	e, client := newTestEngine(Spec{StoragePrefix: "walls/"}, &fakeCatalog{}, nil,
		minio.ObjectInfo{Key: "walls/brick.png", Size: 10},
		minio.ObjectInfo{Key: "walls/stone.JPG", Size: 20},
		minio.ObjectInfo{Key: "walls/readme.txt", Size: 5},
	)

	idx, err := e.BuildIndex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"walls/brick.png": 10, "walls/stone.JPG": 20}, idx.Storage)

	client.AssertCalled(t, "ListObjects", mock.Anything, "textures", minio.ListObjectsOptions{Prefix: "walls/", Recursive: true})
}

func TestReconcileAll_PresenceFlags(t *testing.T) {
	cat := &fakeCatalog{rows: []catalog.TextureAsset{
		{Object: "a.png", ColorSpace: "srgb"},
		{Object: "b.png", ColorSpace: "srgb"},
	}}
	reg := fakeRegistry{
		{Key: 1, AssetID: "a.png", ColorSpace: "srgb", State: "resident"},
		{Key: 2, AssetID: "c.png", ColorSpace: "linear", State: "queued"},
	}
	e, _ := newTestEngine(Spec{}, cat, reg,
		minio.ObjectInfo{Key: "a.png", Size: 1},
		minio.ObjectInfo{Key: "d.png", Size: 1},
	)

	results, err := e.ReconcileAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 4)

	byObject := map[string]Result{}
	for _, r := range results {
		byObject[r.Object] = r
	}
	assert.Equal(t, []string{"a.png", "b.png", "c.png", "d.png"}, []string{results[0].Object, results[1].Object, results[2].Object, results[3].Object})

	a := byObject["a.png"]
	assert.True(t, a.CatalogPresent && a.StoragePresent && a.Registered)
	assert.Empty(t, a.Mismatch)
	assert.Equal(t, texture.Key(1).String(), a.Metadata["keys"])

	b := byObject["b.png"]
	assert.True(t, b.CatalogPresent)
	assert.False(t, b.StoragePresent)
	assert.False(t, b.Registered)

	c := byObject["c.png"]
	assert.False(t, c.CatalogPresent)
	assert.True(t, c.Registered)

	d := byObject["d.png"]
	assert.True(t, d.StoragePresent)
	assert.False(t, d.CatalogPresent)
}

func TestReconcileAll_MismatchDetection(t *testing.T) {
	cat := &fakeCatalog{rows: []catalog.TextureAsset{
		{Object: "normal.png", ColorSpace: "linear"},
		{Object: "logo.png", ColorSpace: "srgb", MipLevels: 3},
	}}
	reg := fakeRegistry{
		{Key: 1, AssetID: "normal.png", ColorSpace: "srgb", State: "resident"},
		{Key: 2, AssetID: "logo.png", ColorSpace: "srgb", State: "not_loaded", MipLevels: 9, Error: "decode failed"},
	}
	e, _ := newTestEngine(Spec{}, cat, reg,
		minio.ObjectInfo{Key: "normal.png", Size: 1},
		minio.ObjectInfo{Key: "logo.png", Size: 0},
	)

	results, err := e.ReconcileAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "logo.png", results[0].Object)
	assert.Equal(t, []string{
		"storage: empty object",
		"upload(srgb): decode failed",
		"mip_levels: catalog=3 registry=9",
	}, results[0].Mismatch)

	assert.Equal(t, []string{"color_space: catalog=linear registry=srgb"}, results[1].Mismatch)
}

func TestIndexCache_Hit(t *testing.T) {
	cat := &fakeCatalog{rows: []catalog.TextureAsset{{Object: "a.png", ColorSpace: "srgb"}}}
	e, client := newTestEngine(Spec{CacheTTL: time.Minute}, cat, nil, minio.ObjectInfo{Key: "a.png", Size: 1})

	for i := 0; i < 3; i++ {
		r, err := e.ReconcileOne(context.Background(), "a.png")
		require.NoError(t, err)
		assert.True(t, r.CatalogPresent)
		assert.True(t, r.StoragePresent)
	}
	assert.Equal(t, 1, cat.lists)
	client.AssertNumberOfCalls(t, "ListObjects", 1)

	e.Invalidate()
	_, err := e.ReconcileOne(context.Background(), "a.png")
	require.NoError(t, err)
	assert.Equal(t, 2, cat.lists)
}

func TestIndexCache_Expiration(t *testing.T) {
	idx := &Index{Built: time.Now().Add(-time.Hour), TTL: time.Minute}
	assert.True(t, idx.IsExpired())

	idx = &Index{Built: time.Now(), TTL: time.Minute}
	assert.False(t, idx.IsExpired())

	idx = &Index{Built: time.Now()}
	assert.True(t, idx.IsExpired(), "zero TTL never caches")
}

func TestReconcileOne_Direct(t *testing.T) {
	cat := &fakeCatalog{rows: []catalog.TextureAsset{{Object: "a.png", ColorSpace: "srgb"}}}
	reg := fakeRegistry{{Key: 7, AssetID: "a.png", ColorSpace: "srgb", State: "resident"}}
	e, client := newTestEngine(Spec{}, cat, reg)
	client.On("StatObject", mock.Anything, "textures", "a.png", mock.Anything).Return(minio.ObjectInfo{Key: "a.png", Size: 4}, nil)
	client.On("StatObject", mock.Anything, "textures", "gone.png", mock.Anything).Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"})

	r, err := e.ReconcileOne(context.Background(), "a.png")
	require.NoError(t, err)
	assert.True(t, r.CatalogPresent && r.StoragePresent && r.Registered)
	assert.Equal(t, "4", r.Metadata["size"])

	r, err = e.ReconcileOne(context.Background(), "gone.png")
	require.NoError(t, err)
	assert.False(t, r.CatalogPresent || r.StoragePresent || r.Registered)

	client.AssertNotCalled(t, "ListObjects", mock.Anything, mock.Anything, mock.Anything)
}
