package inventory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/session"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore records calls and can be told to fail or block queries.
type countingStore struct {
	store.Store

	queries, creates, updates, deletes atomic.Int32

	mu       sync.Mutex
	failWith error
	gate     chan struct{}
	extra    []models.PantryItem
}

func newCountingStore() *countingStore {
	return &countingStore{Store: store.NewMemoryStore()}
}

func (s *countingStore) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *countingStore) state() (chan struct{}, []models.PantryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gate, s.extra, s.failWith
}

func (s *countingStore) Query(ctx context.Context, ownerID string) ([]models.PantryItem, error) {
	s.queries.Add(1)
	gate, extra, failWith := s.state()
	if gate != nil {
		<-gate
	}
	if failWith != nil {
		return nil, failWith
	}
	items, err := s.Store.Query(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return append(items, extra...), nil
}

func (s *countingStore) Create(ctx context.Context, f store.Fields) (string, error) {
	s.creates.Add(1)
	if _, _, err := s.state(); err != nil {
		return "", err
	}
	return s.Store.Create(ctx, f)
}

func (s *countingStore) Update(ctx context.Context, ownerID, id string, f store.Fields) error {
	s.updates.Add(1)
	if _, _, err := s.state(); err != nil {
		return err
	}
	return s.Store.Update(ctx, ownerID, id, f)
}

func (s *countingStore) Delete(ctx context.Context, ownerID, id string) error {
	s.deletes.Add(1)
	if _, _, err := s.state(); err != nil {
		return err
	}
	return s.Store.Delete(ctx, ownerID, id)
}

func signedIn(t *testing.T, st store.Store, userID string) (*ViewModel, *session.Tracker) {
	t.Helper()
	tracker := session.NewTracker()
	vm := New(st)
	vm.Init(context.Background(), tracker)
	tracker.SignIn(userID)
	t.Cleanup(vm.Teardown)
	return vm, tracker
}

func TestViewModelEndToEnd(t *testing.T) {
	vm, _ := signedIn(t, newCountingStore(), "u1")
	ctx := context.Background()
	require.Empty(t, vm.Items())

	id, err := vm.CreateItem(ctx, Draft{Name: "Rice", Quantity: 2})
	require.NoError(t, err)

	items := vm.Items()
	require.Len(t, items, 1)
	assert.Equal(t, id, items[0].ID)
	assert.Equal(t, "Rice", items[0].Name)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, models.DefaultCategory, items[0].Category)
	assert.Nil(t, items[0].ExpirationDate)
	assert.Equal(t, "u1", items[0].UserID)

	require.NoError(t, vm.UpdateItem(ctx, items[0], Patch{Quantity: intPtr(5)}))

	items = vm.Items()
	require.Len(t, items, 1)
	assert.Equal(t, id, items[0].ID)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, "Rice", items[0].Name)
	assert.Equal(t, models.DefaultCategory, items[0].Category)
	assert.Nil(t, items[0].ExpirationDate)

	require.NoError(t, vm.DeleteItem(ctx, id))
	assert.Empty(t, vm.Items())
}

func TestViewModelRefreshDropsForeignItems(t *testing.T) {
	st := newCountingStore()
	st.extra = []models.PantryItem{{ID: "x", UserID: "u2", Name: "Caviar", Quantity: 1}}
	vm, _ := signedIn(t, st, "u1")

	_, err := vm.CreateItem(context.Background(), Draft{Name: "Rice", Quantity: 1})
	require.NoError(t, err)

	for _, item := range vm.Items() {
		assert.Equal(t, "u1", item.UserID)
	}
	assert.Len(t, vm.Items(), 1)
}

func TestViewModelRefreshEmptyOwnerIsNoop(t *testing.T) {
	st := newCountingStore()
	vm, _ := signedIn(t, st, "u1")
	_, err := vm.CreateItem(context.Background(), Draft{Name: "Rice", Quantity: 1})
	require.NoError(t, err)
	before := st.queries.Load()

	require.NoError(t, vm.Refresh(context.Background(), ""))

	assert.Equal(t, before, st.queries.Load())
	assert.Len(t, vm.Items(), 1)
}

func TestViewModelRefreshOtherUserRejected(t *testing.T) {
	st := newCountingStore()
	vm, _ := signedIn(t, st, "u1")
	before := st.queries.Load()

	err := vm.Refresh(context.Background(), "u2")
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Equal(t, before, st.queries.Load())
}

func TestViewModelValidationGate(t *testing.T) {
	st := newCountingStore()
	vm, _ := signedIn(t, st, "u1")
	ctx := context.Background()

	_, err := vm.CreateItem(ctx, Draft{Name: "", Quantity: 1})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = vm.CreateItem(ctx, Draft{Name: "Rice", Quantity: 0})
	assert.ErrorIs(t, err, ErrValidation)

	existing := models.PantryItem{ID: "abc", UserID: "u1", Name: "Rice", Quantity: 1, Category: "Grains"}
	assert.ErrorIs(t, vm.UpdateItem(ctx, existing, Patch{Name: strPtr("")}), ErrInvalidName)
	assert.ErrorIs(t, vm.UpdateItem(ctx, existing, Patch{Quantity: intPtr(-1)}), ErrInvalidQuantity)
	assert.ErrorIs(t, vm.UpdateItem(ctx, models.PantryItem{Name: "Rice", Quantity: 1}, Patch{}), ErrInvalidID)
	assert.ErrorIs(t, vm.DeleteItem(ctx, ""), ErrInvalidID)

	assert.Zero(t, st.creates.Load())
	assert.Zero(t, st.updates.Load())
	assert.Zero(t, st.deletes.Load())
}

func TestViewModelWithoutSession(t *testing.T) {
	st := newCountingStore()
	vm := New(st)
	vm.Init(context.Background(), session.NewTracker())
	defer vm.Teardown()
	ctx := context.Background()

	_, err := vm.CreateItem(ctx, Draft{Name: "Rice", Quantity: 1})
	assert.ErrorIs(t, err, ErrNoSession)
	assert.ErrorIs(t, vm.DeleteItem(ctx, "abc"), ErrNoSession)
	assert.ErrorIs(t, vm.Refresh(ctx, "u1"), ErrNoSession)

	assert.Zero(t, st.queries.Load())
	assert.Zero(t, st.creates.Load())
	assert.Zero(t, st.deletes.Load())
}

func TestViewModelDeleteIsIdempotent(t *testing.T) {
	vm, _ := signedIn(t, newCountingStore(), "u1")
	ctx := context.Background()

	id, err := vm.CreateItem(ctx, Draft{Name: "Rice", Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, vm.DeleteItem(ctx, id))

	err = vm.DeleteItem(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, vm.Items())
}

func TestViewModelStoreFailureKeepsState(t *testing.T) {
	st := newCountingStore()
	vm, _ := signedIn(t, st, "u1")
	ctx := context.Background()

	id, err := vm.CreateItem(ctx, Draft{Name: "Rice", Quantity: 1})
	require.NoError(t, err)
	before := vm.Items()

	boom := errors.New("permission denied")
	st.fail(boom)

	_, err = vm.CreateItem(ctx, Draft{Name: "Beans", Quantity: 1})
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "create", storeErr.Op)
	assert.ErrorIs(t, err, boom)

	err = vm.UpdateItem(ctx, before[0], Patch{Quantity: intPtr(9)})
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, vm.DeleteItem(ctx, id), boom)
	assert.ErrorIs(t, vm.Refresh(ctx, "u1"), boom)

	assert.Equal(t, before, vm.Items())
}

func TestViewModelUpdateMissingItem(t *testing.T) {
	vm, _ := signedIn(t, newCountingStore(), "u1")

	err := vm.UpdateItem(context.Background(), models.PantryItem{ID: "gone", Name: "Rice", Quantity: 1}, Patch{})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestViewModelFilters(t *testing.T) {
	vm, _ := signedIn(t, newCountingStore(), "u1")
	ctx := context.Background()

	for _, d := range []Draft{
		{Name: "Yogurt", Quantity: 1, Category: "Dairy", ExpirationDate: strPtr("2024-01-10")},
		{Name: "Milk (2%)", Quantity: 1, Category: "Dairy", ExpirationDate: strPtr("2024-01-15")},
		{Name: "Silk Tofu", Quantity: 1, Category: "dairy"},
	} {
		_, err := vm.CreateItem(ctx, d)
		require.NoError(t, err)
	}

	got, err := vm.ApplyFilters("Dairy", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Yogurt", "Milk (2%)"}, names(got))

	got, err = vm.ApplyFilters("", "2024-01-10")
	require.NoError(t, err)
	assert.Equal(t, []string{"Yogurt"}, names(got))

	got, err = vm.ApplyFilters("", "2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, []string{"Yogurt", "Milk (2%)"}, names(got))

	_, err = vm.ApplyFilters("Produce", "someday")
	assert.ErrorIs(t, err, ErrInvalidDate)
	assert.Equal(t, Filter{ExpiresBefore: "2024-01-15"}, vm.Filter())

	got = vm.SetSearchTerm("milk")
	assert.Equal(t, []string{"Milk (2%)"}, names(got))

	got = vm.ResetFilters()
	assert.Equal(t, []string{"Milk (2%)"}, names(got))
	assert.Equal(t, "milk", vm.SearchTerm())
	assert.True(t, vm.Filter().IsZero())

	view := vm.View()
	assert.Equal(t, 3, view.Total)
	assert.Equal(t, "milk", view.SearchTerm)
	assert.Len(t, view.Items, 1)
}

func TestViewModelSignOutDiscardsItems(t *testing.T) {
	st := newCountingStore()
	vm, tracker := signedIn(t, st, "u1")
	ctx := context.Background()

	_, err := vm.CreateItem(ctx, Draft{Name: "Rice", Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, tracker.SignOut(ctx))
	assert.Empty(t, vm.Items())
	assert.False(t, vm.Session().IsAuthenticated())

	tracker.SignIn("u1")
	assert.Len(t, vm.Items(), 1)
}

func TestViewModelDiscardsRefreshAfterTeardown(t *testing.T) {
	st := newCountingStore()
	vm, _ := signedIn(t, st, "u1")
	ctx := context.Background()

	_, err := vm.CreateItem(ctx, Draft{Name: "Rice", Quantity: 1})
	require.NoError(t, err)

	gate := make(chan struct{})
	st.mu.Lock()
	st.gate = gate
	st.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- vm.Refresh(ctx, "u1") }()

	require.Eventually(t, func() bool { return st.queries.Load() >= 3 }, time.Second, 5*time.Millisecond)
	vm.Teardown()
	close(gate)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("refresh did not return")
	}
	assert.Empty(t, vm.Items())

	_, err = vm.CreateItem(ctx, Draft{Name: "Beans", Quantity: 1})
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestViewModelItemLookup(t *testing.T) {
	vm, _ := signedIn(t, newCountingStore(), "u1")

	id, err := vm.CreateItem(context.Background(), Draft{Name: "Rice", Quantity: 1})
	require.NoError(t, err)

	item, ok := vm.Item(id)
	require.True(t, ok)
	assert.Equal(t, "Rice", item.Name)

	_, ok = vm.Item("missing")
	assert.False(t, ok)
}
