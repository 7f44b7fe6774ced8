package inventory

import (
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/store"
)

const dateLayout = "2006-01-02"

// Draft is the content of the create form.
type Draft struct {
	Name           string  `json:"name"`
	Quantity       int     `json:"quantity"`
	ExpirationDate *string `json:"expiration_date"`
	Category       string  `json:"category"`
}

// Patch is the content of the edit form. Nil fields keep the existing value;
// an empty ExpirationDate clears the date.
type Patch struct {
	Name           *string `json:"name"`
	Quantity       *int    `json:"quantity"`
	ExpirationDate *string `json:"expiration_date"`
	Category       *string `json:"category"`
}

func draftOf(item models.PantryItem) Draft {
	return Draft{
		Name:           item.Name,
		Quantity:       item.Quantity,
		ExpirationDate: item.ExpirationDate,
		Category:       item.Category,
	}
}

func (d Draft) merge(p Patch) Draft {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Quantity != nil {
		d.Quantity = *p.Quantity
	}
	if p.ExpirationDate != nil {
		d.ExpirationDate = p.ExpirationDate
	}
	if p.Category != nil {
		d.Category = *p.Category
	}
	return d
}

// fields validates the draft and returns the normalized store payload.
func (d Draft) fields() (store.Fields, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return store.Fields{}, ErrInvalidName
	}
	if d.Quantity <= 0 {
		return store.Fields{}, ErrInvalidQuantity
	}

	var expiration *string
	if d.ExpirationDate != nil {
		if v := strings.TrimSpace(*d.ExpirationDate); v != "" {
			if _, err := ParseDate(v); err != nil {
				return store.Fields{}, err
			}
			expiration = &v
		}
	}

	category := strings.TrimSpace(d.Category)
	if category == "" {
		category = models.DefaultCategory
	}

	return store.Fields{
		Name:           name,
		Quantity:       d.Quantity,
		ExpirationDate: expiration,
		Category:       category,
	}, nil
}

// ParseDate reads an ISO 8601 date ("2024-01-10") or timestamp and returns
// its calendar date at midnight UTC. A timestamp keeps the date as written,
// whatever its offset.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
