package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/catalog"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/inventory"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/store"
	"github.com/gofiber/fiber/v2"
)

// headerRefreshFailed marks a write that was stored but whose follow-up
// refresh failed.
const headerRefreshFailed = "X-Refresh-Failed"

type PantryHandler struct {
	vocabulary *catalog.Vocabulary
}

func NewPantryHandler(vocabulary *catalog.Vocabulary) *PantryHandler {
	return &PantryHandler{vocabulary: vocabulary}
}

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{
		Error: true, Message: message,
	})
}

// writeError maps view-model errors to responses. Store failures are never
// shown to the client beyond not-found.
func writeError(c *fiber.Ctx, err error) error {
	var storeErr *inventory.StoreError
	switch {
	case errors.Is(err, inventory.ErrValidation):
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, inventory.ErrNoSession):
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, store.ErrNotFound):
		return errorJSON(c, fiber.StatusNotFound, "Pantry item not found")
	case errors.As(err, &storeErr):
		return errorJSON(c, fiber.StatusBadGateway, "Pantry store unavailable, please retry")
	default:
		slog.Error("pantry request failed", "path", c.Path(), "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "Internal server error")
	}
}

func (h *PantryHandler) Categories(c *fiber.Ctx) error {
	return c.JSON(dto.CategoriesResponse{Categories: h.vocabulary.All()})
}

// List refreshes the authoritative set and returns the current view.
func (h *PantryHandler) List(c *fiber.Ctx) error {
	vm := middleware.ViewModel(c)
	if vm == nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	if err := vm.Refresh(c.UserContext(), vm.Session().UserID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(vm.View())
}

func (h *PantryHandler) Get(c *fiber.Ctx) error {
	vm := middleware.ViewModel(c)
	if vm == nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	item, ok := vm.Item(c.Params("id"))
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, "Pantry item not found")
	}
	return c.JSON(item)
}

func (h *PantryHandler) Create(c *fiber.Ctx) error {
	vm := middleware.ViewModel(c)
	if vm == nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var draft inventory.Draft
	if err := c.BodyParser(&draft); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	id, err := vm.CreateItem(c.UserContext(), draft)
	if err != nil && id == "" {
		return writeError(c, err)
	}
	stale := err != nil
	if stale {
		slog.Warn("pantry refresh after create failed", "user_id", vm.Session().UserID, "item_id", id, "error", err)
		c.Set(headerRefreshFailed, "true")
	}

	return c.Status(fiber.StatusCreated).JSON(dto.CreateItemResponse{
		ID:    id,
		View:  vm.View(),
		Stale: stale,
	})
}

func (h *PantryHandler) Update(c *fiber.Ctx) error {
	vm := middleware.ViewModel(c)
	if vm == nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var patch inventory.Patch
	if err := c.BodyParser(&patch); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	id := c.Params("id")
	existing, ok := vm.Item(id)
	if !ok {
		if err := vm.Refresh(c.UserContext(), vm.Session().UserID); err != nil {
			return writeError(c, err)
		}
		if existing, ok = vm.Item(id); !ok {
			return errorJSON(c, fiber.StatusNotFound, "Pantry item not found")
		}
	}

	if err := vm.UpdateItem(c.UserContext(), existing, patch); err != nil {
		return writeError(c, err)
	}
	return c.JSON(vm.View())
}

func (h *PantryHandler) Delete(c *fiber.Ctx) error {
	vm := middleware.ViewModel(c)
	if vm == nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	if err := vm.DeleteItem(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(vm.View())
}

func (h *PantryHandler) ApplyFilters(c *fiber.Ctx) error {
	vm := middleware.ViewModel(c)
	if vm == nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.FilterRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if _, err := vm.ApplyFilters(req.Category, req.ExpiresBefore); err != nil {
		return writeError(c, err)
	}
	return c.JSON(vm.View())
}

func (h *PantryHandler) ResetFilters(c *fiber.Ctx) error {
	vm := middleware.ViewModel(c)
	if vm == nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	vm.ResetFilters()
	return c.JSON(vm.View())
}

func (h *PantryHandler) Search(c *fiber.Ctx) error {
	vm := middleware.ViewModel(c)
	if vm == nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	vm.SetSearchTerm(req.Term)
	return c.JSON(vm.View())
}
