package residency

import (
	"texture-manager/core/asset"
	"texture-manager/core/texture"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new residency feature.
func NewFeature(manager *texture.Manager, provider *asset.Provider, exec texture.ExecutionContext, reader ReadBacker, logger *zap.Logger) *Feature {
	svc := NewService(manager, provider, exec, reader, logger)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "residency"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
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

// Close drops the feature's pinned textures.
func (f *Feature) Close() {
	f.service.Close()
}
