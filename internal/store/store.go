// Package store holds the Document Store contract for pantry items and its
// backends: GORM (postgres, mysql, sqlite), Firestore, Redis and in-memory.
package store

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/models"
)

var (
	ErrNotFound     = errors.New("pantry item not found")
	ErrOwnerMissing = errors.New("owner id is required")
)

// Fields is the mutable payload of a pantry item. UserID is only read by
// Create; updates never change ownership.
type Fields struct {
	UserID         string
	Name           string
	Quantity       int
	ExpirationDate *string
	Category       string
}

// Store is keyed CRUD over pantry items, scoped by owner.
//
// Update and Delete only touch records of the given owner: an id that exists
// under another owner behaves like a missing one. Delete of a missing id is
// not an error.
type Store interface {
	Query(ctx context.Context, ownerID string) ([]models.PantryItem, error)
	Create(ctx context.Context, fields Fields) (string, error)
	Update(ctx context.Context, ownerID, id string, fields Fields) error
	Delete(ctx context.Context, ownerID, id string) error
}

// Pinger is implemented by stores that can report backend reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

func cloneDate(d *string) *string {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
