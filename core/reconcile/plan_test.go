package reconcile

import (
	"context"
	"errors"
	"testing"

	"texture-manager/core/catalog"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMutator struct {
	deleted  []string
	released []string
	added    []string
	preload  []string
	failOn   string
}

func (m *recordingMutator) DeleteCatalog(_ context.Context, object string) error {
	m.deleted = append(m.deleted, object)
	return nil
}

func (m *recordingMutator) ReleaseTextures(_ context.Context, object string) error {
	if object == m.failOn {
		return errors.New("boom")
	}
	m.released = append(m.released, object)
	return nil
}

func (m *recordingMutator) AddCatalog(_ context.Context, object string) error {
	m.added = append(m.added, object)
	return nil
}

func (m *recordingMutator) Preload(_ context.Context, a catalog.TextureAsset) error {
	m.preload = append(m.preload, a.Object)
	return nil
}

type batchMutator struct {
	recordingMutator
	batches [][]string
}

func (m *batchMutator) DeleteCatalogBatch(_ context.Context, objects []string) error {
	m.batches = append(m.batches, objects)
	return nil
}

// planFixture has one object of every kind:
//   - kept.png: everywhere
//   - gone.png: catalogued and registered, missing in storage
//   - orphan.png: storage only
//   - cold.png: catalogued for preload and in storage, not registered
func planFixture() (*Engine, *fakeCatalog) {
	cat := &fakeCatalog{rows: []catalog.TextureAsset{
		{Object: "kept.png", ColorSpace: "srgb"},
		{Object: "gone.png", ColorSpace: "srgb"},
		{Object: "cold.png", ColorSpace: "linear", Preload: true},
	}}
	reg := fakeRegistry{
		{Key: 1, AssetID: "kept.png", ColorSpace: "srgb", State: "resident"},
		{Key: 2, AssetID: "gone.png", ColorSpace: "srgb", State: "resident"},
	}
	e, _ := newTestEngine(Spec{}, cat, reg,
		minio.ObjectInfo{Key: "kept.png", Size: 1},
		minio.ObjectInfo{Key: "orphan.png", Size: 1},
		minio.ObjectInfo{Key: "cold.png", Size: 1},
	)
	return e, cat
}

func TestPlan_ReportOnly(t *testing.T) {
	e, _ := planFixture()

	plan, err := e.Plan(context.Background(), Options{})
	require.NoError(t, err)

	assert.Empty(t, plan.Actions)
	assert.Equal(t, Summary{
		TotalObjects:   4,
		MissingStorage: 1,
		MissingCatalog: 1,
		Unregistered:   1,
	}, plan.Summary)
}

func TestPlan_PurgeActions(t *testing.T) {
	e, _ := planFixture()

	plan, err := e.Plan(context.Background(), Options{DoPurge: true})
	require.NoError(t, err)

	assert.Equal(t, []Action{
		{Type: ActionDeleteCatalog, Object: "gone.png", Reason: "missing in storage"},
		{Type: ActionReleaseTexture, Object: "gone.png", Reason: "missing in storage"},
	}, plan.Actions)
	assert.Equal(t, 2, plan.Summary.PurgeActions)
	assert.Zero(t, plan.Summary.SyncActions)
}

func TestPlan_SyncActions(t *testing.T) {
	e, _ := planFixture()

	plan, err := e.Plan(context.Background(), Options{DoSync: true})
	require.NoError(t, err)

	require.Len(t, plan.Actions, 2)
	assert.Equal(t, ActionPreload, plan.Actions[0].Type)
	assert.Equal(t, "cold.png", plan.Actions[0].Object)
	require.NotNil(t, plan.Actions[0].Asset)
	assert.Equal(t, "linear", plan.Actions[0].Asset.ColorSpace)
	assert.Equal(t, Action{Type: ActionAddCatalog, Object: "orphan.png", Reason: "missing in catalog"}, plan.Actions[1])
	assert.Equal(t, 2, plan.Summary.SyncActions)
}

func TestApply_ConfirmationGating(t *testing.T) {
	e, _ := planFixture()
	opts := Options{DoPurge: true, DoSync: true}
	plan, err := e.Plan(context.Background(), opts)
	require.NoError(t, err)

	m := &recordingMutator{}
	executed, err := e.Apply(context.Background(), plan, opts, m)
	require.NoError(t, err)
	assert.Zero(t, executed, "unconfirmed")

	opts.Confirmed, opts.DryRun = true, true
	executed, err = e.Apply(context.Background(), plan, opts, m)
	require.NoError(t, err)
	assert.Zero(t, executed, "dry run")

	opts.DryRun = false
	executed, err = e.Apply(context.Background(), plan, opts, m)
	require.NoError(t, err)
	assert.Equal(t, 4, executed)
	assert.Equal(t, []string{"gone.png"}, m.deleted)
	assert.Equal(t, []string{"gone.png"}, m.released)
	assert.Equal(t, []string{"orphan.png"}, m.added)
	assert.Equal(t, []string{"cold.png"}, m.preload)
}

func TestApply_BatchAndFailure(t *testing.T) {
	e, _ := planFixture()
	opts := Options{DoPurge: true, Confirmed: true}

	t.Run("Batch", func(t *testing.T) {
		m := &batchMutator{}
		plan, executed, err := e.PlanAndApply(context.Background(), opts, m)
		require.NoError(t, err)
		assert.Len(t, plan.Actions, 2)
		assert.Equal(t, 2, executed)
		assert.Equal(t, [][]string{{"gone.png"}}, m.batches)
		assert.Empty(t, m.deleted, "batch path skips single deletes")
	})

	t.Run("Failure", func(t *testing.T) {
		m := &recordingMutator{failOn: "gone.png"}
		_, executed, err := e.PlanAndApply(context.Background(), opts, m)
		assert.ErrorContains(t, err, "gone.png")
		assert.Equal(t, 1, executed)
	})
}
