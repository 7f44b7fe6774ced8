package store

import (
	"context"
	"testing"

	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// runStoreSuite checks the behavior every backend must share. ordered is false
// for backends whose query order is not creation order.
func runStoreSuite(t *testing.T, ordered bool, newStore func(t *testing.T) Store) {
	t.Run("CreateThenQuery", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		id, err := s.Create(ctx, Fields{UserID: "alice", Name: "Rice", Quantity: 2, Category: models.DefaultCategory})
		require.NoError(t, err)
		require.NotEmpty(t, id)

		items, err := s.Query(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, id, items[0].ID)
		assert.Equal(t, "alice", items[0].UserID)
		assert.Equal(t, "Rice", items[0].Name)
		assert.Equal(t, 2, items[0].Quantity)
		assert.Nil(t, items[0].ExpirationDate)
		assert.Equal(t, models.DefaultCategory, items[0].Category)
	})

	t.Run("QueryIsScopedToOwner", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.Create(ctx, Fields{UserID: "alice", Name: "Milk", Quantity: 1, Category: "Dairy"})
		require.NoError(t, err)
		_, err = s.Create(ctx, Fields{UserID: "bob", Name: "Eggs", Quantity: 12, Category: "Dairy"})
		require.NoError(t, err)

		items, err := s.Query(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Milk", items[0].Name)

		none, err := s.Query(ctx, "carol")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("QueryKeepsCreationOrder", func(t *testing.T) {
		if !ordered {
			t.Skip("backend does not order by creation")
		}
		s := newStore(t)
		ctx := context.Background()

		for _, name := range []string{"Apples", "Bread", "Cheese"} {
			_, err := s.Create(ctx, Fields{UserID: "alice", Name: name, Quantity: 1, Category: "Produce"})
			require.NoError(t, err)
		}

		items, err := s.Query(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, "Apples", items[0].Name)
		assert.Equal(t, "Bread", items[1].Name)
		assert.Equal(t, "Cheese", items[2].Name)
	})

	t.Run("UpdateReplacesFieldsAndKeepsOwner", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		id, err := s.Create(ctx, Fields{UserID: "alice", Name: "Rice", Quantity: 2, ExpirationDate: strPtr("2024-01-10"), Category: "Grains"})
		require.NoError(t, err)

		err = s.Update(ctx, "alice", id, Fields{UserID: "mallory", Name: "Brown Rice", Quantity: 5, Category: "Grains"})
		require.NoError(t, err)

		items, err := s.Query(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, id, items[0].ID)
		assert.Equal(t, "alice", items[0].UserID)
		assert.Equal(t, "Brown Rice", items[0].Name)
		assert.Equal(t, 5, items[0].Quantity)
		assert.Nil(t, items[0].ExpirationDate)
	})

	t.Run("UpdateMissingIsNotFound", func(t *testing.T) {
		s := newStore(t)
		err := s.Update(context.Background(), "alice", "does-not-exist", Fields{Name: "x", Quantity: 1})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("UpdateOtherOwnersItemIsNotFound", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		id, err := s.Create(ctx, Fields{UserID: "bob", Name: "Eggs", Quantity: 12, Category: "Dairy"})
		require.NoError(t, err)

		err = s.Update(ctx, "alice", id, Fields{Name: "Stolen", Quantity: 1, Category: "Dairy"})
		assert.ErrorIs(t, err, ErrNotFound)

		items, err := s.Query(ctx, "bob")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Eggs", items[0].Name)
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		id, err := s.Create(ctx, Fields{UserID: "alice", Name: "Rice", Quantity: 2, Category: "Grains"})
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, "alice", id))
		require.NoError(t, s.Delete(ctx, "alice", id))

		items, err := s.Query(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("DeleteIgnoresOtherOwnersItem", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		id, err := s.Create(ctx, Fields{UserID: "bob", Name: "Eggs", Quantity: 12, Category: "Dairy"})
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, "alice", id))

		items, err := s.Query(ctx, "bob")
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("OwnerRequired", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.Query(ctx, "")
		assert.ErrorIs(t, err, ErrOwnerMissing)
		_, err = s.Create(ctx, Fields{Name: "Rice", Quantity: 1})
		assert.ErrorIs(t, err, ErrOwnerMissing)
	})
}
