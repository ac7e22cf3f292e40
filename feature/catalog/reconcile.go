package catalog

import (
	"context"
	"errors"

	store "texture-manager/core/catalog"
	"texture-manager/core/reconcile"
	"texture-manager/core/storage"
	"texture-manager/core/texture"
	"texture-manager/feature/residency"

	"go.uber.org/zap"
)

// Residency is the texture manager surface reconciliation needs.
type Residency interface {
	Preloader
	List() []texture.TextureInfo
	ReleaseAsset(object string) int
}

// ReconcileReport is the outcome of a reconcile request.
type ReconcileReport struct {
	*reconcile.Plan
	Applied  bool `json:"applied"`
	Executed int  `json:"executed"`
}

// Reconciler compares the catalog with the storage bucket and the texture registry.
type Reconciler struct {
	engine  *reconcile.Engine
	mutator *mutator
	logger  *zap.Logger
}

// NewReconciler creates a reconciler over repo, the bucket and res.
func NewReconciler(repo *store.Repository, res Residency, client storage.Client, bucket string, spec reconcile.Spec, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		engine:  reconcile.NewEngine(spec, repo, client, bucket, registryView{res}),
		mutator: &mutator{repo: repo, res: res, logger: logger},
		logger:  logger,
	}
}

// Run plans the actions opts asks for and applies them when opts.Confirmed is set.
func (r *Reconciler) Run(ctx context.Context, opts reconcile.Options) (*ReconcileReport, error) {
	plan, executed, err := r.engine.PlanAndApply(ctx, opts, r.mutator)
	if plan == nil {
		return nil, err
	}
	report := &ReconcileReport{
		Plan:     plan,
		Applied:  opts.Confirmed && !opts.DryRun,
		Executed: executed,
	}

	s := plan.Summary
	r.logger.Info("Catalog reconciliation finished",
		zap.Int("total_objects", s.TotalObjects),
		zap.Int("missing_storage", s.MissingStorage),
		zap.Int("missing_catalog", s.MissingCatalog),
		zap.Int("unregistered", s.Unregistered),
		zap.Int("mismatches", s.Mismatches),
		zap.Int("actions", len(plan.Actions)),
		zap.Int("executed", executed),
		zap.Bool("applied", report.Applied))
	return report, err
}

// Object reconciles a single storage object.
func (r *Reconciler) Object(ctx context.Context, object string) (*reconcile.Result, error) {
	return r.engine.ReconcileOne(ctx, object)
}

type registryView struct {
	res Residency
}

func (v registryView) Snapshot() []texture.TextureInfo {
	return v.res.List()
}

// mutator applies reconcile actions to the catalog and the texture manager.
type mutator struct {
	repo   *store.Repository
	res    Residency
	logger *zap.Logger
}

func (m *mutator) DeleteCatalog(ctx context.Context, object string) error {
	if err := m.repo.Delete(ctx, object); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

func (m *mutator) DeleteCatalogBatch(ctx context.Context, objects []string) error {
	n, err := m.repo.DeleteBatch(ctx, objects)
	if err != nil {
		return err
	}
	m.logger.Debug("Deleted catalog rows", zap.Int64("rows", n), zap.Int("requested", len(objects)))
	return nil
}

func (m *mutator) ReleaseTextures(_ context.Context, object string) error {
	n := m.res.ReleaseAsset(object)
	m.logger.Debug("Released textures", zap.String("object", object), zap.Int("count", n))
	return nil
}

func (m *mutator) AddCatalog(ctx context.Context, object string) error {
	return m.repo.Upsert(ctx, &store.TextureAsset{
		Object:     object,
		ColorSpace: texture.ColorSpaceSRGB.String(),
	})
}

func (m *mutator) Preload(ctx context.Context, a store.TextureAsset) error {
	_, err := m.res.Preload(ctx, residency.PreloadRequest{
		Object:     a.Object,
		ColorSpace: a.ColorSpace,
		Width:      a.Width,
		Height:     a.Height,
		Levels:     a.MipLevels,
	})
	return err
}

var _ reconcile.CatalogBatchDeleter = (*mutator)(nil)
