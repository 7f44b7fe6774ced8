package middleware

import (
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/session"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JWTProtected verifies HS256 access tokens issued by AuthService and puts
// the sub claim under session.LocalsUID, the same key FirebaseProtected uses.
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{
			JWTAlg: jwt.SigningMethodHS256.Alg(),
			Key:    []byte(cfg.JWTSecret),
		},
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return unauthorized(c)
			}
			sub, err := token.Claims.GetSubject()
			if err != nil || sub == "" {
				return unauthorized(c)
			}
			c.Locals(session.LocalsUID, sub)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	})
}
