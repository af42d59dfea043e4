package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/astraboltz/internal/metrics"
)

func Metrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := c.Path()
		if route := c.Route(); route != nil && route.Path != "" {
			path = route.Path
		}
		m.RecordHTTPRequest(c.UserContext(), c.Method(), path, c.Response().StatusCode(), time.Since(start))
		return err
	}
}
