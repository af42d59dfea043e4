package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/astraboltz/internal/models"
	"github.com/maheshrc27/astraboltz/internal/service"
	"github.com/maheshrc27/astraboltz/internal/transfer"
)

type PlatformHandler struct {
	media service.MediaStore
}

func NewPlatformHandler(media service.MediaStore) *PlatformHandler {
	return &PlatformHandler{media: media}
}

func (h *PlatformHandler) ListPlatforms(c *fiber.Ctx) error {
	platforms := models.Platforms()
	out := make([]transfer.PlatformInfo, 0, len(platforms))
	for _, p := range platforms {
		out = append(out, transfer.PlatformInfo{ID: string(p), DisplayName: p.DisplayName()})
	}
	return c.Status(fiber.StatusOK).JSON(out)
}

// ServeMedia streams media kept by the in-process store.
func (h *PlatformHandler) ServeMedia(c *fiber.Ctx) error {
	data, mimeType, ok := h.media.Open(c.UserContext(), c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Media not found"})
	}
	c.Set(fiber.HeaderContentType, mimeType)
	c.Set(fiber.HeaderCacheControl, "private, max-age=3600")
	return c.Send(data)
}

func (h *PlatformHandler) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
}
