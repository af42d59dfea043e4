package handlers

import (
	"io"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/astraboltz/internal/service"
	"github.com/maheshrc27/astraboltz/internal/transfer"
)

type AssistHandler struct {
	s service.AssistService
}

func NewAssistHandler(service service.AssistService) *AssistHandler {
	return &AssistHandler{s: service}
}

func (h *AssistHandler) GenerateCaption(c *fiber.Ctx) error {
	format, ok := service.ParseCaptionFormat(c.FormValue("format"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Format must be Photo or Reel.",
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Please upload an image to generate a caption.",
		})
	}

	f, err := file.Open()
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unable to read file"})
	}
	defer f.Close()

	image, err := io.ReadAll(f)
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unable to read file"})
	}

	caption, err := h.s.GenerateCaption(c.UserContext(), image, format)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(transfer.CaptionResponse{Caption: caption})
}

func (h *AssistHandler) SuggestNiches(c *fiber.Ctx) error {
	niches, err := h.s.SuggestNiches(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(transfer.NichesResponse{Niches: niches})
}
