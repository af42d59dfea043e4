package handlers

import "github.com/gofiber/fiber/v2"

type Routes struct {
	Post     *PostHandler
	Calendar *CalendarHandler
	Assist   *AssistHandler
	Keys     *ApiKeyHandler
	Platform *PlatformHandler
}

// Mount registers public routes on app and the rest under /api behind guard.
func (r Routes) Mount(app *fiber.App, guard fiber.Handler) {
	app.Get("/healthz", r.Platform.Health)
	app.Get("/media/:id", r.Platform.ServeMedia)

	api := app.Group("/api")
	if guard != nil {
		api.Use(guard)
	}

	api.Post("/posts/create", r.Post.CreatePost)
	api.Get("/posts", r.Post.ListPosts)
	api.Post("/posts/remove", r.Post.RemovePost)

	api.Get("/calendar", r.Calendar.GetCalendar)
	api.Get("/platforms", r.Platform.ListPlatforms)

	api.Post("/assist/caption", r.Assist.GenerateCaption)
	api.Get("/assist/niches", r.Assist.SuggestNiches)

	api.Get("/settings/keys", r.Keys.ListKeys)
	api.Post("/settings/keys", r.Keys.SaveKeys)
}
