package inventory

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func names(items []models.PantryItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Name)
	}
	return out
}

func TestSelect(t *testing.T) {
	items := []models.PantryItem{
		{ID: "a", Name: "Yogurt", Category: "Dairy", ExpirationDate: strPtr("2024-01-10")},
		{ID: "b", Name: "Milk (2%)", Category: "Dairy", ExpirationDate: strPtr("2024-01-15")},
		{ID: "c", Name: "Silk Tofu", Category: "Produce"},
		{ID: "d", Name: "cheese", Category: "dairy", ExpirationDate: strPtr("2024-01-01T18:30:00Z")},
	}

	tests := []struct {
		name   string
		filter Filter
		search string
		want   []string
	}{
		{name: "no filter passes all", want: []string{"Yogurt", "Milk (2%)", "Silk Tofu", "cheese"}},
		{name: "category is case sensitive", filter: Filter{Category: "Dairy"}, want: []string{"Yogurt", "Milk (2%)"}},
		{name: "threshold is inclusive", filter: Filter{ExpiresBefore: "2024-01-10"}, want: []string{"Yogurt", "cheese"}},
		{name: "later threshold", filter: Filter{ExpiresBefore: "2024-01-15"}, want: []string{"Yogurt", "Milk (2%)", "cheese"}},
		{name: "timestamp threshold uses its date", filter: Filter{ExpiresBefore: "2024-01-10T08:00:00Z"}, want: []string{"Yogurt", "cheese"}},
		{name: "search ignores case", search: "milk", want: []string{"Milk (2%)"}},
		{name: "search and category combine", filter: Filter{Category: "Dairy"}, search: "YO", want: []string{"Yogurt"}},
		{name: "nothing matches", filter: Filter{Category: "Frozen"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(items, tt.filter, tt.search)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, names(got)); diff != "" {
				t.Errorf("Select() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSelectRejectsBadThreshold(t *testing.T) {
	_, err := Select(nil, Filter{ExpiresBefore: "next week"}, "")
	assert.ErrorIs(t, err, ErrInvalidDate)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSelectDropsUnparseableItemDates(t *testing.T) {
	items := []models.PantryItem{{Name: "Beans", ExpirationDate: strPtr("soon")}}

	got, err := Select(items, Filter{ExpiresBefore: "2030-01-01"}, "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSelectReturnsCopies(t *testing.T) {
	items := []models.PantryItem{{Name: "Rice", ExpirationDate: strPtr("2024-02-01")}}

	got, err := Select(items, Filter{}, "")
	require.NoError(t, err)
	*got[0].ExpirationDate = "1999-01-01"

	assert.Equal(t, "2024-02-01", *items[0].ExpirationDate)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-10")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", d.Format(dateLayout))

	d, err = ParseDate("2024-01-10T23:59:59-05:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", d.Format(dateLayout))

	_, err = ParseDate("10/01/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDraftFields(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		f, err := Draft{Name: "  Rice ", Quantity: 2}.fields()
		require.NoError(t, err)
		assert.Equal(t, "Rice", f.Name)
		assert.Equal(t, models.DefaultCategory, f.Category)
		assert.Nil(t, f.ExpirationDate)
	})

	t.Run("blank date is absent", func(t *testing.T) {
		f, err := Draft{Name: "Rice", Quantity: 1, ExpirationDate: strPtr(" ")}.fields()
		require.NoError(t, err)
		assert.Nil(t, f.ExpirationDate)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := Draft{Name: "   ", Quantity: 1}.fields()
		assert.ErrorIs(t, err, ErrInvalidName)

		_, err = Draft{Name: "Rice", Quantity: 0}.fields()
		assert.ErrorIs(t, err, ErrInvalidQuantity)

		_, err = Draft{Name: "Rice", Quantity: -3}.fields()
		assert.ErrorIs(t, err, ErrInvalidQuantity)

		_, err = Draft{Name: "Rice", Quantity: 1, ExpirationDate: strPtr("tomorrow")}.fields()
		assert.ErrorIs(t, err, ErrInvalidDate)
	})
}

func TestDraftMerge(t *testing.T) {
	base := Draft{Name: "Rice", Quantity: 2, ExpirationDate: strPtr("2024-05-01"), Category: "Grains"}

	got := base.merge(Patch{Quantity: intPtr(5)})
	assert.Equal(t, Draft{Name: "Rice", Quantity: 5, ExpirationDate: strPtr("2024-05-01"), Category: "Grains"}, got)

	cleared, err := base.merge(Patch{ExpirationDate: strPtr("")}).fields()
	require.NoError(t, err)
	assert.Nil(t, cleared.ExpirationDate)
}

func intPtr(n int) *int { return &n }
