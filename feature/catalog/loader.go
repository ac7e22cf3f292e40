package catalog

import (
	store "texture-manager/core/catalog"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
	enabled bool
}

// NewFeature creates a new catalog feature. A nil repository disables it; a nil
// reconciler serves the catalog without the reconcile routes.
func NewFeature(repo *store.Repository, preloader Preloader, reconciler *Reconciler, logger *zap.Logger) *Feature {
	svc := NewService(repo, preloader, logger)
	h := NewHandler(svc, reconciler)
	return &Feature{service: svc, handler: h, enabled: repo != nil}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "catalog"
}

// IsEnabled reports whether a database is configured.
func (f *Feature) IsEnabled() bool {
	return f.enabled
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// Service returns the feature's service.
func (f *Feature) Service() *Service {
	return f.service
}
