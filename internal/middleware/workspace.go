package middleware

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/inventory"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

const localsViewModel = "pantry_vm"

// Workspace binds the authenticated user's view-model to the request. It
// runs after JWTProtected or FirebaseProtected.
func Workspace(workspaces *inventory.Workspaces) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := session.UserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized",
			})
		}

		vm, err := workspaces.Acquire(c.UserContext(), userID)
		if err != nil {
			slog.Warn("workspace acquire failed", "user_id", userID, "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Workspace unavailable",
			})
		}

		c.Locals(localsViewModel, vm)
		return c.Next()
	}
}

// ViewModel returns the view-model bound by Workspace, or nil.
func ViewModel(c *fiber.Ctx) *inventory.ViewModel {
	vm, _ := c.Locals(localsViewModel).(*inventory.ViewModel)
	return vm
}
