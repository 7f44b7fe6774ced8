// Package catalog provides the category vocabulary offered by the filter
// control and the create/edit form.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/models"
	"github.com/tailscale/hujson"
)

var defaultCategories = []string{
	"Produce",
	"Dairy",
	"Meat & Seafood",
	"Bakery",
	"Grains & Pasta",
	"Canned Goods",
	"Frozen",
	"Snacks",
	"Beverages",
	"Condiments & Sauces",
	"Spices & Baking",
	models.DefaultCategory,
}

type categoriesFile struct {
	Categories []string `json:"categories"`
}

// Vocabulary is an immutable ordered list of category labels.
type Vocabulary struct {
	labels []string
}

// New builds a vocabulary, trimming labels and dropping blanks and
// duplicates while keeping first-seen order.
func New(labels []string) *Vocabulary {
	v := &Vocabulary{labels: make([]string, 0, len(labels))}
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		v.labels = append(v.labels, l)
	}
	return v
}

func Default() *Vocabulary {
	return New(defaultCategories)
}

// LoadFromFile reads {"categories": [...]} from a JSONC file. An empty path
// yields the default vocabulary.
func LoadFromFile(path string) (*Vocabulary, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read categories file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Vocabulary, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONC: %w", err)
	}

	var file categoriesFile
	if err := json.Unmarshal(standardized, &file); err != nil {
		return nil, fmt.Errorf("failed to parse categories file: %w", err)
	}

	v := New(file.Categories)
	if len(v.labels) == 0 {
		return nil, fmt.Errorf("categories file lists no categories")
	}
	return v, nil
}

// All returns a copy of the labels in order.
func (v *Vocabulary) All() []string {
	out := make([]string, len(v.labels))
	copy(out, v.labels)
	return out
}

func (v *Vocabulary) Len() int {
	return len(v.labels)
}
