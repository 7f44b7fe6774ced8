package dto

import "github.com/ahmetcoskunkizilkaya/pantry-backend/internal/inventory"

type FilterRequest struct {
	Category      string `json:"category"`
	ExpiresBefore string `json:"expires_before"`
}

type SearchRequest struct {
	Term string `json:"term"`
}

// CreateItemResponse is returned once the item is stored. Stale is set when
// the list could not be re-read afterwards, so View predates the create.
type CreateItemResponse struct {
	ID    string         `json:"id"`
	View  inventory.View `json:"view"`
	Stale bool           `json:"stale,omitempty"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}
