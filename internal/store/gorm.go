package store

import (
	"context"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ForOwner returns a GORM scope that filters by user_id.
func ForOwner(ownerID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", ownerID)
	}
}

// GormStore keeps pantry items in the pantry_items table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Query(ctx context.Context, ownerID string) ([]models.PantryItem, error) {
	if ownerID == "" {
		return nil, ErrOwnerMissing
	}

	var items []models.PantryItem
	err := s.db.WithContext(ctx).
		Scopes(ForOwner(ownerID)).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("query pantry items: %w", err)
	}
	return items, nil
}

func (s *GormStore) Create(ctx context.Context, fields Fields) (string, error) {
	if fields.UserID == "" {
		return "", ErrOwnerMissing
	}

	item := models.PantryItem{
		ID:             uuid.NewString(),
		UserID:         fields.UserID,
		Name:           fields.Name,
		Quantity:       fields.Quantity,
		ExpirationDate: cloneDate(fields.ExpirationDate),
		Category:       fields.Category,
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return "", fmt.Errorf("create pantry item: %w", err)
	}
	return item.ID, nil
}

func (s *GormStore) Update(ctx context.Context, ownerID, id string, fields Fields) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.PantryItem{}).
			Scopes(ForOwner(ownerID)).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return fmt.Errorf("update pantry item: %w", err)
		}
		if count == 0 {
			return ErrNotFound
		}

		// A map keeps zero values and a nil expiration date in the UPDATE.
		err := tx.Model(&models.PantryItem{}).
			Scopes(ForOwner(ownerID)).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"name":            fields.Name,
				"quantity":        fields.Quantity,
				"expiration_date": cloneDate(fields.ExpirationDate),
				"category":        fields.Category,
			}).Error
		if err != nil {
			return fmt.Errorf("update pantry item: %w", err)
		}
		return nil
	})
}

func (s *GormStore) Delete(ctx context.Context, ownerID, id string) error {
	err := s.db.WithContext(ctx).
		Scopes(ForOwner(ownerID)).
		Where("id = ?", id).
		Delete(&models.PantryItem{}).Error
	if err != nil {
		return fmt.Errorf("delete pantry item: %w", err)
	}
	return nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
