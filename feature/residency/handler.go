package residency

import (
	"bytes"
	"errors"
	"strconv"

	"texture-manager/core/asset"
	"texture-manager/core/device"
	"texture-manager/core/logger"
	"texture-manager/core/texture"

	"github.com/HugoSmits86/nativewebp"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for texture residency.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the texture routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/textures")
	group.Get("/", h.HandleList)
	group.Get("/stats", h.HandleStats)
	group.Post("/preload", h.HandlePreload)
	group.Post("/synchronize", h.HandleSynchronize)
	group.Post("/kickoff", h.HandleKickoff)
	group.Post("/demote", h.HandleDemote)
	group.Post("/mip-skip", h.HandleMipSkip)
	group.Get("/:key", h.HandleGet)
	group.Delete("/:key", h.HandleRelease)
	group.Post("/:key/schedule", h.HandleSchedule)
	group.Post("/:key/unload", h.HandleUnload)
	group.Post("/:key/unpin", h.HandleUnpin)
	group.Get("/:key/mips/:level", h.HandleMip)
}

// HandleList returns every registered texture.
// @Summary List Textures
// @Tags textures
// @Produce json
// @Success 200 {array} texture.TextureInfo
// @Router /textures [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	return c.JSON(h.service.List())
}

// HandleStats returns the manager summary.
// @Summary Residency Stats
// @Description Worker state, queue depth, registry size and video memory usage.
// @Tags textures
// @Produce json
// @Success 200 {object} texture.ManagerStats
// @Router /textures/stats [get]
func (h *Handler) HandleStats(c *fiber.Ctx) error {
	return c.JSON(h.service.Stats())
}

// HandlePreload registers a texture and schedules its upload.
// @Summary Preload Texture
// @Description Registers the texture for a storage object. With force the upload runs before the response.
// @Tags textures
// @Accept json
// @Produce json
// @Param request body PreloadRequest true "Texture to preload"
// @Success 200 {object} texture.TextureInfo "Registered"
// @Success 202 {object} texture.TextureInfo "Queued"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Object Not Found"
// @Failure 422 {object} map[string]string "Unsupported Image"
// @Router /textures/preload [post]
func (h *Handler) HandlePreload(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req PreloadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Object == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "object is required"})
	}

	info, err := h.service.Preload(c.Context(), req)
	if err != nil {
		status := statusFor(err)
		if status >= fiber.StatusInternalServerError {
			l.Error("Texture preload failed", zap.String("object", req.Object), zap.Error(err))
		}
		body := fiber.Map{"error": err.Error()}
		if info.Key != texture.InvalidKey {
			body["texture"] = info
		}
		return c.Status(status).JSON(body)
	}

	l.Debug("Texture preloaded",
		zap.Stringer("key", info.Key),
		zap.String("object", req.Object),
		zap.String("state", info.State))
	return c.Status(statusForState(info)).JSON(info)
}

// HandleGet returns one texture.
// @Summary Get Texture
// @Tags textures
// @Produce json
// @Param key path string true "Texture key (hex)"
// @Success 200 {object} texture.TextureInfo
// @Failure 404 {object} map[string]string "Not Found"
// @Router /textures/{key} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	key, err := texture.ParseKey(c.Params("key"))
	if err != nil {
		return badKey(c)
	}
	info, err := h.service.Get(key)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(info)
}

// HandleSchedule requests residency for a texture.
// @Summary Schedule Upload
// @Description Uploads the texture before responding, or queues it when async is set.
// @Tags textures
// @Produce json
// @Param key path string true "Texture key (hex)"
// @Param async query bool false "Queue instead of uploading inline"
// @Success 200 {object} texture.TextureInfo "Resident"
// @Success 202 {object} texture.TextureInfo "Queued"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 409 {object} map[string]string "Retired"
// @Router /textures/{key}/schedule [post]
func (h *Handler) HandleSchedule(c *fiber.Ctx) error {
	key, err := texture.ParseKey(c.Params("key"))
	if err != nil {
		return badKey(c)
	}
	l := logger.WithRayID(h.service.logger, c)

	info, err := h.service.Schedule(c.Context(), key, c.QueryBool("async"))
	if err != nil {
		status := statusFor(err)
		if status >= fiber.StatusInternalServerError {
			l.Error("Texture upload failed", zap.Stringer("key", key), zap.Error(err))
		}
		body := fiber.Map{"error": err.Error()}
		if info.Key != texture.InvalidKey {
			body["texture"] = info
		}
		return c.Status(status).JSON(body)
	}
	return c.Status(statusForState(info)).JSON(info)
}

// HandleUnload retires a texture and frees its video memory.
// @Summary Unload Texture
// @Tags textures
// @Param key path string true "Texture key (hex)"
// @Success 204
// @Failure 404 {object} map[string]string "Not Found"
// @Router /textures/{key}/unload [post]
func (h *Handler) HandleUnload(c *fiber.Ctx) error {
	return h.keyed(c, h.service.Unload)
}

// HandleUnpin drops the pin taken by a pinned preload.
// @Summary Unpin Texture
// @Tags textures
// @Param key path string true "Texture key (hex)"
// @Success 204
// @Failure 404 {object} map[string]string "Not Pinned"
// @Router /textures/{key}/unpin [post]
func (h *Handler) HandleUnpin(c *fiber.Ctx) error {
	return h.keyed(c, h.service.Unpin)
}

// HandleRelease removes a texture from the registry.
// @Summary Release Texture
// @Tags textures
// @Param key path string true "Texture key (hex)"
// @Success 204
// @Failure 404 {object} map[string]string "Not Found"
// @Router /textures/{key} [delete]
func (h *Handler) HandleRelease(c *fiber.Ctx) error {
	return h.keyed(c, h.service.Release)
}

// HandleSynchronize waits for queued uploads, or drops them.
// @Summary Synchronize
// @Tags textures
// @Produce json
// @Param drop query bool false "Discard queued uploads instead of waiting"
// @Success 200 {object} texture.ManagerStats
// @Router /textures/synchronize [post]
func (h *Handler) HandleSynchronize(c *fiber.Ctx) error {
	return c.JSON(h.service.Synchronize(c.QueryBool("drop")))
}

// HandleKickoff releases a held upload batch.
// @Summary Kickoff
// @Tags textures
// @Success 202
// @Router /textures/kickoff [post]
func (h *Handler) HandleKickoff(c *fiber.Ctx) error {
	h.service.Kickoff()
	return c.SendStatus(fiber.StatusAccepted)
}

// HandleDemote frees video memory of idle textures.
// @Summary Demote Textures
// @Tags textures
// @Produce json
// @Success 200 {object} DemoteResult
// @Router /textures/demote [post]
func (h *Handler) HandleDemote(c *fiber.Ctx) error {
	res := h.service.Demote()
	logger.WithRayID(h.service.logger, c).Info("Demoted textures",
		zap.Uint64("before_bytes", res.Before.UsedBytes),
		zap.Uint64("after_bytes", res.After.UsedBytes))
	return c.JSON(res)
}

// HandleMipSkip recomputes the global mip-skip level.
// @Summary Update Mip Skip Level
// @Tags textures
// @Produce json
// @Success 200 {object} map[string]int
// @Router /textures/mip-skip [post]
func (h *Handler) HandleMipSkip(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"level": h.service.UpdateMipSkip()})
}

// HandleMip returns a resident mip level as WebP.
// @Summary Read Back Mip Level
// @Tags textures
// @Produce image/webp
// @Param key path string true "Texture key (hex)"
// @Param level path int true "Mip index in the full chain"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string "Not Resident"
// @Router /textures/{key}/mips/{level} [get]
func (h *Handler) HandleMip(c *fiber.Ctx) error {
	key, err := texture.ParseKey(c.Params("key"))
	if err != nil {
		return badKey(c)
	}
	level, err := strconv.Atoi(c.Params("level"))
	if err != nil || level < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid mip level"})
	}

	mip, err := h.service.ReadBack(key, level)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	var buf bytes.Buffer
	if err := nativewebp.Encode(&buf, asset.LevelImage(mip), nil); err != nil {
		logger.WithRayID(h.service.logger, c).Error("WebP encode failed", zap.Stringer("key", key), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	c.Set(fiber.HeaderContentType, "image/webp")
	return c.Send(buf.Bytes())
}

func (h *Handler) keyed(c *fiber.Ctx, op func(texture.Key) error) error {
	key, err := texture.ParseKey(c.Params("key"))
	if err != nil {
		return badKey(c)
	}
	if err := op(key); err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func badKey(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid texture key"})
}

func statusForState(info texture.TextureInfo) int {
	if info.State == texture.StateQueued.String() || info.State == texture.StateUploading.String() {
		return fiber.StatusAccepted
	}
	return fiber.StatusOK
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, texture.ErrUnknownColorSpace):
		return fiber.StatusBadRequest
	case errors.Is(err, texture.ErrTextureNotFound),
		errors.Is(err, asset.ErrNotFound),
		errors.Is(err, device.ErrNotResident),
		errors.Is(err, device.ErrLevelNotResident),
		errors.Is(err, ErrNotPinned):
		return fiber.StatusNotFound
	case errors.Is(err, texture.ErrTextureRetired):
		return fiber.StatusConflict
	case errors.Is(err, asset.ErrUnsupportedFormat),
		errors.Is(err, asset.ErrEmptyObject):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, device.ErrBudgetExceeded):
		return fiber.StatusInsufficientStorage
	case errors.Is(err, texture.ErrManagerStopped),
		errors.Is(err, device.ErrClosed):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
