package web

import (
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures the application routes. rateLimiter and metrics
// may be nil.
func SetupRoutes(app *fiber.App, handlers *Handlers, rateLimiter *RateLimiter, metrics *Metrics) {
	// Static assets
	app.Static("/static", "./static")

	if metrics != nil {
		app.Get("/metrics", metrics.Handler())
	}

	app.Get("/", handlers.Home)
	app.Get("/b", handlers.Open)
	app.Get("/b/:slug", SlugToContextMiddleware(), handlers.ViewBubble)

	api := app.Group("/api")
	if rateLimiter != nil {
		api.Use(rateLimiter.Middleware())
	}
	api.Post("/bubbles", handlers.APICreateBubble)
	api.Get("/bubbles/:slug", SlugToContextMiddleware(), handlers.APIGetBubble)
	api.Post("/bubbles/:slug/select", SlugToContextMiddleware(), handlers.APISelect)
	api.Get("/bubbles/:slug/selection", SlugToContextMiddleware(), handlers.APISelection)
}
