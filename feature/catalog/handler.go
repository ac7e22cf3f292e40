package catalog

import (
	"errors"
	"strings"

	store "texture-manager/core/catalog"
	"texture-manager/core/database"
	"texture-manager/core/logger"
	"texture-manager/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the texture catalog.
type Handler struct {
	service    *Service
	reconciler *Reconciler
}

// NewHandler creates a new HTTP handler. A nil reconciler leaves the reconcile routes out.
func NewHandler(service *Service, reconciler *Reconciler) *Handler {
	return &Handler{service: service, reconciler: reconciler}
}

// RegisterRoutes registers the catalog routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/catalog")
	group.Get("/", h.HandleList)
	group.Post("/", h.HandleUpsert)
	group.Get("/verify", h.HandleVerify)
	group.Post("/preload", h.HandlePreload)
	if h.reconciler != nil {
		group.Get("/reconcile", h.HandleReconcilePlan)
		group.Post("/reconcile", h.HandleReconcileApply)
		group.Get("/reconcile/object", h.HandleReconcileObject)
	}
}

// HandleList returns catalog rows.
// @Summary List Catalog
// @Tags catalog
// @Produce json
// @Param prefix query string false "Object name prefix"
// @Param preload query bool false "Only rows flagged for preload"
// @Param limit query int false "Maximum rows"
// @Success 200 {array} catalog.TextureAsset
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /catalog [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	assets, err := h.service.List(c.Context(), store.Filter{
		Prefix:      c.Query("prefix"),
		PreloadOnly: c.QueryBool("preload"),
		Limit:       c.QueryInt("limit"),
	})
	if err != nil {
		l.Error("Catalog list failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(assets)
}

// HandleUpsert inserts or updates a catalog row.
// @Summary Upsert Catalog Row
// @Tags catalog
// @Accept json
// @Produce json
// @Param asset body catalog.TextureAsset true "Catalog row"
// @Success 200 {object} catalog.TextureAsset
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /catalog [post]
func (h *Handler) HandleUpsert(c *fiber.Ctx) error {
	var a store.TextureAsset
	if err := c.BodyParser(&a); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := h.service.Upsert(c.Context(), &a); err != nil {
		if errors.Is(err, store.ErrInvalidAsset) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		logger.WithRayID(h.service.logger, c).Error("Catalog upsert failed", zap.String("object", a.Object), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(a)
}

// HandleVerify checks the catalog table schema.
// @Summary Verify Catalog Schema
// @Description Compares the texture_assets table against the expected columns.
// @Tags catalog
// @Produce json
// @Success 200 {object} map[string]interface{} "Schema report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /catalog/verify [get]
func (h *Handler) HandleVerify(c *fiber.Ctx) error {
	mismatches, err := h.service.Verify(c.Context())
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Catalog schema check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if mismatches == nil {
		mismatches = []database.ColumnMismatch{}
	}
	return c.JSON(fiber.Map{
		"ok":         len(mismatches) == 0,
		"mismatches": mismatches,
	})
}

// HandlePreload preloads every catalog row flagged for preload.
// @Summary Preload Catalog
// @Tags catalog
// @Produce json
// @Param force query bool false "Upload before responding"
// @Success 200 {object} PreloadReport
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /catalog/preload [post]
func (h *Handler) HandlePreload(c *fiber.Ctx) error {
	report, err := h.service.PreloadAll(c.Context(), c.QueryBool("force"))
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Catalog preload failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

// HandleReconcilePlan reports how the catalog, the bucket and the registry disagree.
// @Summary Plan Catalog Reconciliation
// @Description Compares catalog rows, storage objects and registered textures. Nothing is changed.
// @Tags catalog
// @Produce json
// @Param purge query bool false "Plan removal of rows and textures whose object left storage"
// @Param sync query bool false "Plan rows for new objects and preloads for unregistered rows"
// @Success 200 {object} ReconcileReport
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /catalog/reconcile [get]
func (h *Handler) HandleReconcilePlan(c *fiber.Ctx) error {
	return h.runReconcile(c, reconcile.Options{
		DoPurge: c.QueryBool("purge"),
		DoSync:  c.QueryBool("sync"),
		DryRun:  true,
	})
}

// HandleReconcileApply plans and, with confirm=true, applies the reconciliation.
// @Summary Apply Catalog Reconciliation
// @Tags catalog
// @Produce json
// @Param purge query bool false "Remove rows and textures whose object left storage"
// @Param sync query bool false "Add rows for new objects and preload unregistered rows"
// @Param confirm query bool false "Execute the planned actions"
// @Success 200 {object} ReconcileReport
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /catalog/reconcile [post]
func (h *Handler) HandleReconcileApply(c *fiber.Ctx) error {
	return h.runReconcile(c, reconcile.Options{
		DoPurge:   c.QueryBool("purge"),
		DoSync:    c.QueryBool("sync"),
		Confirmed: c.QueryBool("confirm"),
	})
}

func (h *Handler) runReconcile(c *fiber.Ctx, opts reconcile.Options) error {
	report, err := h.reconciler.Run(c.Context(), opts)
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Catalog reconciliation failed",
			zap.Bool("purge", opts.DoPurge),
			zap.Bool("sync", opts.DoSync),
			zap.Error(err))
		body := fiber.Map{"error": err.Error()}
		if report != nil {
			body["executed"] = report.Executed
		}
		return c.Status(fiber.StatusInternalServerError).JSON(body)
	}
	return c.JSON(report)
}

// HandleReconcileObject reconciles one storage object.
// @Summary Reconcile Object
// @Tags catalog
// @Produce json
// @Param name query string true "Storage object name"
// @Success 200 {object} reconcile.Result
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /catalog/reconcile/object [get]
func (h *Handler) HandleReconcileObject(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}

	result, err := h.reconciler.Object(c.Context(), name)
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Object reconciliation failed", zap.String("object", name), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(result)
}
