package middleware

import (
	"crypto/subtle"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/astraboltz/configs"
)

const AccessKeyHeader = "X-API-Key"

type AuthMiddleware struct {
	cfg config.Config
}

func NewAuthMiddleware(cfg config.Config) *AuthMiddleware {
	return &AuthMiddleware{cfg: cfg}
}

// AuthMiddleware checks the access key from the api_key query or the
// X-API-Key header. With no ACCESS_KEY configured every request passes.
func (m *AuthMiddleware) AuthMiddleware() fiber.Handler {
	expected := []byte(m.cfg.AccessKey)

	return func(c *fiber.Ctx) error {
		if len(expected) == 0 {
			return c.Next()
		}

		apiKey := c.Get(AccessKeyHeader)
		if apiKey == "" {
			apiKey = c.Query("api_key")
		}

		if apiKey == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing access key",
			})
		}

		if subtle.ConstantTimeCompare([]byte(apiKey), expected) != 1 {
			slog.Info("rejected request with invalid access key", "path", c.Path(), "ip", c.IP())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid access key",
			})
		}
		return c.Next()
	}
}
