package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/inventory"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/store"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	items      store.Store
	workspaces *inventory.Workspaces
}

func NewHealthHandler(items store.Store, workspaces *inventory.Workspaces) *HealthHandler {
	return &HealthHandler{items: items, workspaces: workspaces}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "ok"

	dbStatus := "ok"
	if err := database.Ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
		status = "degraded"
	}

	storeStatus := "ok"
	if p, ok := h.items.(store.Pinger); ok {
		if err := p.Ping(c.UserContext()); err != nil {
			storeStatus = "unhealthy: " + err.Error()
			status = "degraded"
		}
	}

	code := fiber.StatusOK
	if status != "ok" {
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Store:     storeStatus,
		Sessions:  h.workspaces.Len(),
	})
}
