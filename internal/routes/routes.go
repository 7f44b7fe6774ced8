package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/inventory"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Setup registers the API. protect authenticates a request: JWTProtected or
// FirebaseProtected depending on AUTH_MODE.
func Setup(
	app *fiber.App,
	cfg *config.Config,
	protect fiber.Handler,
	workspaces *inventory.Workspaces,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	pantryHandler *handlers.PantryHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	if cfg.AuthMode == config.AuthJWT {
		// Auth-specific rate limit: 10 req/min per IP (stricter)
		auth := api.Group("/auth")
		auth.Use(limiter.New(limiter.Config{
			Max:               10,
			Expiration:        1 * time.Minute,
			LimiterMiddleware: limiter.SlidingWindow{},
			KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		}))
		auth.Post("/register", authHandler.Register)
		auth.Post("/login", authHandler.Login)
		auth.Post("/refresh", authHandler.Refresh)

		api.Delete("/auth/account", protect, authHandler.DeleteAccount)
	}
	api.Post("/auth/logout", protect, authHandler.Logout)

	pantry := api.Group("/pantry", protect)
	pantry.Get("/categories", pantryHandler.Categories)

	// Item routes bind the user's workspace; categories do not need one.
	ws := middleware.Workspace(workspaces)
	pantry.Get("/items", ws, pantryHandler.List)
	pantry.Get("/items/:id", ws, pantryHandler.Get)
	pantry.Post("/items", ws, pantryHandler.Create)
	pantry.Put("/items/:id", ws, pantryHandler.Update)
	pantry.Delete("/items/:id", ws, pantryHandler.Delete)
	pantry.Put("/filters", ws, pantryHandler.ApplyFilters)
	pantry.Delete("/filters", ws, pantryHandler.ResetFilters)
	pantry.Put("/search", ws, pantryHandler.Search)
}
