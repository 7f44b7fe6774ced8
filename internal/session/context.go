package session

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// LocalsUID is the Fiber locals key holding a user id resolved by an
// authentication middleware that does not produce a *jwt.Token.
const LocalsUID = "uid"

// UserID extracts the authenticated user id from the request context: either
// a verified uid left by the Firebase middleware or the sub claim of the JWT.
func UserID(c *fiber.Ctx) (string, error) {
	if uid, ok := c.Locals(LocalsUID).(string); ok && uid != "" {
		return uid, nil
	}

	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return "", errors.New("invalid token in context")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("missing sub claim")
	}

	return sub, nil
}
