package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIncludesUncategorized(t *testing.T) {
	v := Default()
	assert.Contains(t, v.All(), models.DefaultCategory)
	assert.Equal(t, len(defaultCategories), v.Len())
}

func TestNewDropsBlanksAndDuplicates(t *testing.T) {
	v := New([]string{"Dairy", " Produce ", "", "Dairy", "dairy"})

	want := []string{"Dairy", "Produce", "dairy"}
	if diff := cmp.Diff(want, v.All()); diff != "" {
		t.Errorf("All() mismatch (-want +got):\n%s", diff)
	}
	assert.NotContains(t, v.All(), "Frozen")
}

func TestAllReturnsCopy(t *testing.T) {
	v := New([]string{"Dairy"})
	labels := v.All()
	labels[0] = "changed"
	assert.Equal(t, []string{"Dairy"}, v.All())
}

func TestParseAcceptsJSONC(t *testing.T) {
	data := []byte(`{
		// shown in this order in the filter control
		"categories": [
			"Dairy",
			"Produce", // trailing comma below is fine
		],
	}`)

	v, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dairy", "Produce"}, v.All())
}

func TestParseRejectsEmptyList(t *testing.T) {
	_, err := Parse([]byte(`{"categories": []}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"categories": [`))
	assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	v, err := LoadFromFile("")
	require.NoError(t, err)
	assert.Equal(t, Default().All(), v.All())

	path := filepath.Join(t.TempDir(), "categories.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(`{"categories": ["Spices"]}`), 0o600))

	v, err = LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Spices"}, v.All())

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
