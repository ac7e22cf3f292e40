package integrity

import (
	"texture-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler serves the integrity routes.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the checks under /integrity.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/structure", h.HandleStructureCheck)
	group.Get("/catalog", h.HandleCatalogCheck)
	group.Get("/residency", h.HandleResidencyCheck)
}

// HandleIntegrityCheck runs every check. Failing checks are reported in the body; the
// response is 200 regardless.
// @Summary Run All Integrity Checks
// @Description Performs the structure, catalog and residency checks.
// @Tags integrity
// @Produce json
// @Success 200 {object} integrity.Report "Combined Report"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	report := h.service.Run(c.Context())
	logger.WithRayID(h.service.logger, c).Info("Integrity checks finished",
		zap.String("structure", report.Structure.Status),
		zap.String("catalog", report.Catalog.Status),
		zap.Bool("residency_healthy", report.Residency.Healthy))
	return c.JSON(report)
}

// HandleStructureCheck checks the bucket layout.
// @Summary Check Structure
// @Description Checks that the bucket exists and holds the configured folders. Optionally creates missing folders.
// @Tags integrity
// @Produce json
// @Param fix query boolean false "Fix missing folders"
// @Success 200 {object} integrity.StructureStatus "Structure Report"
// @Failure 500 {object} integrity.StructureStatus "Structure Report"
// @Router /integrity/structure [get]
func (h *Handler) HandleStructureCheck(c *fiber.Ctx) error {
	fix := c.QueryBool("fix")
	status, err := h.service.Structure(c.Context(), fix)

	l := logger.WithRayID(h.service.logger, c)
	switch {
	case err != nil:
		l.Error("Structure check failed", zap.Bool("fix", fix), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(status)
	case len(status.Fixed) > 0:
		l.Info("Created missing folders", zap.Strings("fixed", status.Fixed))
	case len(status.Missing) > 0:
		l.Warn("Missing folders detected", zap.Strings("missing", status.Missing))
	}
	return c.JSON(status)
}

// HandleCatalogCheck compares the catalog table against the model.
// @Summary Check Catalog Schema
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.CatalogReport "Catalog Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/catalog [get]
func (h *Handler) HandleCatalogCheck(c *fiber.Ctx) error {
	report, err := h.service.CheckCatalog(c.Context())
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Catalog schema check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

// HandleResidencyCheck reports texture manager health, with 503 when unhealthy.
// @Summary Check Residency
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.ResidencyReport "Residency Report"
// @Failure 503 {object} checks.ResidencyReport "Residency Report"
// @Router /integrity/residency [get]
func (h *Handler) HandleResidencyCheck(c *fiber.Ctx) error {
	report := h.service.CheckResidency()
	if report.Healthy {
		return c.JSON(report)
	}
	logger.WithRayID(h.service.logger, c).Warn("Texture manager unhealthy",
		zap.String("worker", report.Worker),
		zap.Bool("over_budget", report.OverBudget),
		zap.Int("failed", len(report.Failed)))
	return c.Status(fiber.StatusServiceUnavailable).JSON(report)
}
