package models

import "time"

// DefaultCategory is assigned to items saved without a category.
const DefaultCategory = "Uncategorized"

// PantryItem is one inventory record owned by a single user.
type PantryItem struct {
	ID             string    `gorm:"size:64;primaryKey" json:"id"`
	UserID         string    `gorm:"size:128;not null;index" json:"user_id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Quantity       int       `gorm:"not null" json:"quantity"`
	ExpirationDate *string   `gorm:"size:40" json:"expiration_date"`
	Category       string    `gorm:"size:100;not null;default:'Uncategorized';index" json:"category"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
