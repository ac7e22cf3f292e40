package catalog

import (
	"context"

	store "texture-manager/core/catalog"
	"texture-manager/core/database"
	"texture-manager/core/texture"
	"texture-manager/feature/residency"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// preloadConcurrency bounds the in-flight preloads of PreloadAll.
const preloadConcurrency = 4

// Preloader registers textures with the residency manager.
type Preloader interface {
	Preload(ctx context.Context, req residency.PreloadRequest) (texture.TextureInfo, error)
}

// Failure is one catalog row that could not be preloaded.
type Failure struct {
	Object string `json:"object"`
	Error  string `json:"error"`
}

// PreloadReport summarizes a PreloadAll run.
type PreloadReport struct {
	Requested int                   `json:"requested"`
	Textures  []texture.TextureInfo `json:"textures"`
	Failures  []Failure             `json:"failures,omitempty"`
}

// Service serves the texture catalog.
type Service struct {
	repo      *store.Repository
	preloader Preloader
	logger    *zap.Logger
}

// NewService creates a new catalog service.
func NewService(repo *store.Repository, preloader Preloader, logger *zap.Logger) *Service {
	return &Service{repo: repo, preloader: preloader, logger: logger}
}

// List returns catalog rows matching f.
func (s *Service) List(ctx context.Context, f store.Filter) ([]store.TextureAsset, error) {
	return s.repo.List(ctx, f)
}

// Upsert stores a catalog row.
func (s *Service) Upsert(ctx context.Context, a *store.TextureAsset) error {
	return s.repo.Upsert(ctx, a)
}

// Verify compares the catalog table against the model.
func (s *Service) Verify(ctx context.Context) ([]database.ColumnMismatch, error) {
	return s.repo.VerifySchema(ctx)
}

// PreloadAll preloads every row flagged for preload. Rows that fail are reported and do
// not stop the others. Textures are listed in catalog order.
func (s *Service) PreloadAll(ctx context.Context, force bool) (*PreloadReport, error) {
	assets, err := s.repo.PreloadSet(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]texture.TextureInfo, len(assets))
	errs := make([]error, len(assets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(preloadConcurrency)
	for i, a := range assets {
		g.Go(func() error {
			infos[i], errs[i] = s.preloader.Preload(gctx, residency.PreloadRequest{
				Object:     a.Object,
				ColorSpace: a.ColorSpace,
				Force:      force,
				Width:      a.Width,
				Height:     a.Height,
				Levels:     a.MipLevels,
			})
			return nil
		})
	}
	_ = g.Wait()

	report := &PreloadReport{Requested: len(assets), Textures: make([]texture.TextureInfo, 0, len(assets))}
	for i, a := range assets {
		if infos[i].Key != texture.InvalidKey {
			report.Textures = append(report.Textures, infos[i])
		}
		if errs[i] != nil {
			report.Failures = append(report.Failures, Failure{Object: a.Object, Error: errs[i].Error()})
		}
	}

	s.logger.Info("Catalog preload finished",
		zap.Int("requested", report.Requested),
		zap.Int("registered", len(report.Textures)),
		zap.Int("failed", len(report.Failures)),
		zap.Bool("force", force))
	return report, nil
}
