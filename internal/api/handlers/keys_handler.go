package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/astraboltz/internal/models"
	"github.com/maheshrc27/astraboltz/internal/service"
)

type ApiKeyHandler struct {
	s service.ApiKeyService
}

func NewApiKeyHandler(service service.ApiKeyService) *ApiKeyHandler {
	return &ApiKeyHandler{s: service}
}

func (h *ApiKeyHandler) ListKeys(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.s.Load(c.UserContext()))
}

func (h *ApiKeyHandler) SaveKeys(c *fiber.Ctx) error {
	var body map[string]string
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	keys := make(models.ApiKeys, len(body))
	for name, secret := range body {
		p, ok := models.ParsePlatform(name)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("Unsupported platform %q.", name),
			})
		}
		if _, dup := keys[p]; dup {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("Duplicate key for platform %q.", p),
			})
		}
		keys[p] = secret
	}

	if err := h.s.Save(c.UserContext(), keys); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(keys.Clean())
}
