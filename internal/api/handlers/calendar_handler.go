package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/astraboltz/internal/service"
)

type CalendarHandler struct {
	s service.CalendarService
}

func NewCalendarHandler(service service.CalendarService) *CalendarHandler {
	return &CalendarHandler{s: service}
}

// GetCalendar renders ?year=&month=, defaulting either missing value to the current month.
func (h *CalendarHandler) GetCalendar(c *fiber.Ctx) error {
	current := h.s.Current(c.UserContext())
	if c.Query("year") == "" && c.Query("month") == "" {
		return c.Status(fiber.StatusOK).JSON(current)
	}

	year, err := queryInt(c, "year", current.Year)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid year."})
	}
	month, err := queryInt(c, "month", current.Month)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid month."})
	}

	view, err := h.s.View(c.UserContext(), year, month)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(view)
}

func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
