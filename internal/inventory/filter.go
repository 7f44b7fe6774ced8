package inventory

import (
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/models"
)

// Filter is the state of the category + date filter control. Empty fields
// pass everything.
type Filter struct {
	Category      string `json:"category"`
	ExpiresBefore string `json:"expires_before"`
}

func (f Filter) IsZero() bool {
	return f.Category == "" && f.ExpiresBefore == ""
}

// Select returns the items passing the filter and the search term, in their
// original order. Category matches exactly. A date threshold keeps items
// expiring on or before it and drops items without a usable date. The search
// term matches names case-insensitively, and an empty term matches all.
func Select(items []models.PantryItem, f Filter, searchTerm string) ([]models.PantryItem, error) {
	var (
		threshold    time.Time
		hasThreshold bool
	)
	if f.ExpiresBefore != "" {
		t, err := ParseDate(f.ExpiresBefore)
		if err != nil {
			return nil, err
		}
		threshold, hasThreshold = t, true
	}
	term := strings.ToLower(searchTerm)

	out := make([]models.PantryItem, 0, len(items))
	for _, item := range items {
		if f.Category != "" && item.Category != f.Category {
			continue
		}
		if hasThreshold && !expiresOnOrBefore(item, threshold) {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(item.Name), term) {
			continue
		}
		out = append(out, cloneItem(item))
	}
	return out, nil
}

func expiresOnOrBefore(item models.PantryItem, threshold time.Time) bool {
	if item.ExpirationDate == nil {
		return false
	}
	d, err := ParseDate(*item.ExpirationDate)
	if err != nil {
		return false
	}
	return !d.After(threshold)
}

func cloneItem(item models.PantryItem) models.PantryItem {
	if item.ExpirationDate != nil {
		d := *item.ExpirationDate
		item.ExpirationDate = &d
	}
	return item
}

func cloneItems(items []models.PantryItem) []models.PantryItem {
	out := make([]models.PantryItem, len(items))
	for i, item := range items {
		out[i] = cloneItem(item)
	}
	return out
}
