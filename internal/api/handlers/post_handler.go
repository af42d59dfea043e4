package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/maheshrc27/astraboltz/internal/queue"
	"github.com/maheshrc27/astraboltz/internal/service"
	"github.com/maheshrc27/astraboltz/internal/transfer"
)

type PostHandler struct {
	s          service.PostService
	dispatcher queue.Dispatcher
}

// NewPostHandler takes an optional dispatcher; without one the simulator alone
// resolves posts.
func NewPostHandler(service service.PostService, dispatcher queue.Dispatcher) *PostHandler {
	return &PostHandler{s: service, dispatcher: dispatcher}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse form",
		})
	}

	post, err := h.s.CreatePost(c.UserContext(), &transfer.PostCreation{
		Caption:       utils.CopyString(c.FormValue("caption")),
		ScheduledTime: c.FormValue("scheduling_time"),
		Platforms:     c.FormValue("platforms"),
		Niche:         utils.CopyString(c.FormValue("niche"))},
		form.File["files"])
	if err != nil {
		return respondError(c, err)
	}

	if h.dispatcher != nil {
		if err := h.dispatcher.Dispatch(c.UserContext(), post); err != nil {
			slog.Warn("could not queue post, simulator will resolve it", "post_id", post.ID, "error", err)
		}
	}

	return c.Status(fiber.StatusOK).JSON(transfer.PostCreated{
		Message: "Post scheduled successfully",
		Post:    post,
	})
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	if postID := c.Query("id"); postID != "" {
		post, err := h.s.PostInfo(c.UserContext(), postID)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(post)
	}

	return c.Status(fiber.StatusOK).JSON(h.s.ListView(c.UserContext()))
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	if err := h.s.Remove(c.UserContext(), c.Query("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}
