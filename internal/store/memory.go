package store

import (
	"context"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/models"
	"github.com/google/uuid"
)

// MemoryStore keeps items in process memory in insertion order. It backs
// STORE_BACKEND=memory and the tests.
type MemoryStore struct {
	mu    sync.RWMutex
	order []string
	items map[string]models.PantryItem
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]models.PantryItem),
		now:   time.Now,
	}
}

func (s *MemoryStore) Query(ctx context.Context, ownerID string) ([]models.PantryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ownerID == "" {
		return nil, ErrOwnerMissing
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.PantryItem, 0)
	for _, id := range s.order {
		item := s.items[id]
		if item.UserID != ownerID {
			continue
		}
		item.ExpirationDate = cloneDate(item.ExpirationDate)
		result = append(result, item)
	}
	return result, nil
}

func (s *MemoryStore) Create(ctx context.Context, fields Fields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if fields.UserID == "" {
		return "", ErrOwnerMissing
	}

	now := s.now().UTC()
	item := models.PantryItem{
		ID:             uuid.NewString(),
		UserID:         fields.UserID,
		Name:           fields.Name,
		Quantity:       fields.Quantity,
		ExpirationDate: cloneDate(fields.ExpirationDate),
		Category:       fields.Category,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
	s.order = append(s.order, item.ID)
	return item.ID, nil
}

func (s *MemoryStore) Update(ctx context.Context, ownerID, id string, fields Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok || item.UserID != ownerID {
		return ErrNotFound
	}
	item.Name = fields.Name
	item.Quantity = fields.Quantity
	item.ExpirationDate = cloneDate(fields.ExpirationDate)
	item.Category = fields.Category
	item.UpdatedAt = s.now().UTC()
	s.items[id] = item
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, ownerID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok || item.UserID != ownerID {
		return nil
	}
	delete(s.items, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}
