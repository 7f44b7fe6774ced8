package middleware

import (
	"context"
	"log/slog"
	"strings"

	"firebase.google.com/go/auth"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

// IDTokenVerifier is the part of the Firebase auth client the middleware uses.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseProtected accepts `Authorization: Bearer <Firebase ID token>` and
// stores the verified UID under session.LocalsUID.
func FirebaseProtected(verifier IDTokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		idToken, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(idToken) == "" {
			return unauthorized(c)
		}

		token, err := verifier.VerifyIDToken(c.UserContext(), strings.TrimSpace(idToken))
		if err != nil {
			slog.Debug("firebase id token rejected", "error", err)
			return unauthorized(c)
		}
		if token.UID == "" {
			return unauthorized(c)
		}

		c.Locals(session.LocalsUID, token.UID)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error:   true,
		Message: "Unauthorized: invalid or expired token",
	})
}
