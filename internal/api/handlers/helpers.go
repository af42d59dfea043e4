package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/astraboltz/pkg/apperrors"
)

// errorStatus maps an error kind to the HTTP status it is reported with.
func errorStatus(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		return fiber.StatusBadRequest
	case apperrors.KindNotFound:
		return fiber.StatusNotFound
	case apperrors.KindExternalService:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	if status >= fiber.StatusInternalServerError {
		slog.Error("request failed", "path", c.Path(), "error", err)
	}

	msg := apperrors.Message(err)
	if apperrors.KindOf(err) == "" {
		msg = "Something went wrong"
	}
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}
