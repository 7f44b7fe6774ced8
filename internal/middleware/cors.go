package middleware

import (
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS lets the browser client call the API. Preflights are cached for an
// hour since the pantry client sends JSON on every write.
func CORS(cfg *config.Config) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Authorization, Accept",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		ExposeHeaders:    "X-Request-ID, X-Refresh-Failed",
		AllowCredentials: false,
		MaxAge:           3600,
	})
}
