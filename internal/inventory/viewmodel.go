// Package inventory is the pantry view-model: the authoritative item list of
// the signed-in user, the search and filter state applied over it, and the
// create/update/delete operations that re-fetch the list after every change.
package inventory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/session"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/store"
)

// View is the displayed list together with the state that produced it.
type View struct {
	Items         []models.PantryItem `json:"items"`
	Total         int                 `json:"total"`
	SearchTerm    string              `json:"search_term"`
	Category      string              `json:"category"`
	ExpiresBefore string              `json:"expires_before"`
}

type Option func(*ViewModel)

func WithLogger(logger *slog.Logger) Option {
	return func(vm *ViewModel) {
		vm.logger = logger
	}
}

// ViewModel holds one user's inventory view.
//
// The lock is never held across a store call. Every session change bumps
// epoch; a refresh started under an older epoch is dropped when it returns.
type ViewModel struct {
	store  store.Store
	logger *slog.Logger

	mu          sync.RWMutex
	session     session.Session
	epoch       uint64
	items       []models.PantryItem
	filter      Filter
	searchTerm  string
	unsubscribe func()
	closed      bool
}

func New(st store.Store, opts ...Option) *ViewModel {
	vm := &ViewModel{
		store:  st,
		logger: slog.Default(),
		items:  []models.PantryItem{},
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// Init subscribes to the provider. The subscription fires right away, so an
// already signed-in user gets the first refresh before Init returns.
func (vm *ViewModel) Init(ctx context.Context, provider session.Provider) {
	vm.mu.Lock()
	if vm.unsubscribe != nil || vm.closed {
		vm.mu.Unlock()
		return
	}
	vm.mu.Unlock()

	// Later session changes arrive outside any request.
	bg := context.WithoutCancel(ctx)
	unsubscribe := provider.Subscribe(func(s session.Session) {
		vm.onSession(bg, s)
	})

	vm.mu.Lock()
	vm.unsubscribe = unsubscribe
	vm.mu.Unlock()
}

// Teardown unsubscribes, discards all items and invalidates refreshes still
// in flight. The view-model rejects every later operation with ErrNoSession.
func (vm *ViewModel) Teardown() {
	vm.mu.Lock()
	unsubscribe := vm.unsubscribe
	vm.unsubscribe = nil
	vm.closed = true
	vm.session = session.None
	vm.epoch++
	vm.items = []models.PantryItem{}
	vm.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (vm *ViewModel) onSession(ctx context.Context, s session.Session) {
	vm.mu.Lock()
	if vm.closed || vm.session == s {
		vm.mu.Unlock()
		return
	}
	vm.session = s
	vm.epoch++
	epoch := vm.epoch
	vm.items = []models.PantryItem{}
	vm.mu.Unlock()

	if !s.IsAuthenticated() {
		vm.logger.Debug("pantry session ended, items discarded")
		return
	}
	if err := vm.refresh(ctx, s.UserID, epoch); err != nil {
		vm.logger.Warn("initial pantry refresh failed", "user_id", s.UserID, "error", err)
	}
}

// Session returns the session the view-model currently acts for.
func (vm *ViewModel) Session() session.Session {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.session
}

func (vm *ViewModel) owner() (string, uint64, error) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	if !vm.session.IsAuthenticated() {
		return "", 0, ErrNoSession
	}
	return vm.session.UserID, vm.epoch, nil
}

// Refresh replaces the authoritative items with the store's records for
// userID. An empty userID is a no-op; any other user than the signed-in one
// is rejected.
func (vm *ViewModel) Refresh(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	owner, epoch, err := vm.owner()
	if err != nil {
		return err
	}
	if owner != userID {
		return ErrNoSession
	}
	return vm.refresh(ctx, userID, epoch)
}

func (vm *ViewModel) refresh(ctx context.Context, userID string, epoch uint64) error {
	fetched, err := vm.store.Query(ctx, userID)
	if err != nil {
		vm.logger.Error("pantry refresh failed", "user_id", userID, "op", "query", "error", err)
		return &StoreError{Op: "query", Err: err}
	}

	owned := make([]models.PantryItem, 0, len(fetched))
	for _, item := range fetched {
		if item.UserID != userID {
			vm.logger.Warn("dropping pantry item of another owner", "user_id", userID, "item_id", item.ID)
			continue
		}
		owned = append(owned, item)
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.epoch != epoch {
		vm.logger.Debug("stale pantry refresh discarded", "user_id", userID)
		return nil
	}
	vm.items = owned
	vm.logger.Debug("pantry refreshed", "user_id", userID, "count", len(owned))
	return nil
}

// CreateItem validates and stores a new item for the signed-in user, then
// refreshes. On a failed refresh the new id is still returned.
func (vm *ViewModel) CreateItem(ctx context.Context, d Draft) (string, error) {
	fields, err := d.fields()
	if err != nil {
		return "", err
	}
	owner, epoch, err := vm.owner()
	if err != nil {
		return "", err
	}

	fields.UserID = owner
	id, err := vm.store.Create(ctx, fields)
	if err != nil {
		vm.logger.Error("pantry create failed", "user_id", owner, "op", "create", "error", err)
		return "", &StoreError{Op: "create", Err: err}
	}
	return id, vm.refresh(ctx, owner, epoch)
}

// UpdateItem applies patch over existing, validates the result and writes
// name, quantity, expiration date and category. Ownership never changes.
func (vm *ViewModel) UpdateItem(ctx context.Context, existing models.PantryItem, patch Patch) error {
	if existing.ID == "" {
		return ErrInvalidID
	}
	fields, err := draftOf(existing).merge(patch).fields()
	if err != nil {
		return err
	}
	owner, epoch, err := vm.owner()
	if err != nil {
		return err
	}

	if err := vm.store.Update(ctx, owner, existing.ID, fields); err != nil {
		vm.logger.Error("pantry update failed", "user_id", owner, "item_id", existing.ID, "op", "update", "error", err)
		return &StoreError{Op: "update", Err: err}
	}
	return vm.refresh(ctx, owner, epoch)
}

// DeleteItem removes the item immediately. Deleting an id that is already
// gone succeeds.
func (vm *ViewModel) DeleteItem(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidID
	}
	owner, epoch, err := vm.owner()
	if err != nil {
		return err
	}

	if err := vm.store.Delete(ctx, owner, id); err != nil {
		vm.logger.Error("pantry delete failed", "user_id", owner, "item_id", id, "op", "delete", "error", err)
		return &StoreError{Op: "delete", Err: err}
	}
	return vm.refresh(ctx, owner, epoch)
}

// ApplyFilters sets the category and date threshold and returns the
// displayed items. An unparseable threshold leaves the filter unchanged.
func (vm *ViewModel) ApplyFilters(category, threshold string) ([]models.PantryItem, error) {
	f := Filter{Category: category, ExpiresBefore: threshold}
	if threshold != "" {
		if _, err := ParseDate(threshold); err != nil {
			return nil, err
		}
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.filter = f
	return vm.displayedLocked(), nil
}

// ResetFilters clears category and threshold. The search term is kept.
func (vm *ViewModel) ResetFilters() []models.PantryItem {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.filter = Filter{}
	return vm.displayedLocked()
}

func (vm *ViewModel) SetSearchTerm(term string) []models.PantryItem {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.searchTerm = term
	return vm.displayedLocked()
}

func (vm *ViewModel) displayedLocked() []models.PantryItem {
	// The stored filter was validated by ApplyFilters.
	out, err := Select(vm.items, vm.filter, vm.searchTerm)
	if err != nil {
		return []models.PantryItem{}
	}
	return out
}

// Items returns a copy of the authoritative set.
func (vm *ViewModel) Items() []models.PantryItem {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return cloneItems(vm.items)
}

// Item looks id up in the authoritative set.
func (vm *ViewModel) Item(id string) (models.PantryItem, bool) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	for _, item := range vm.items {
		if item.ID == id {
			return cloneItem(item), true
		}
	}
	return models.PantryItem{}, false
}

func (vm *ViewModel) Filter() Filter {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.filter
}

func (vm *ViewModel) SearchTerm() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.searchTerm
}

func (vm *ViewModel) View() View {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return View{
		Items:         vm.displayedLocked(),
		Total:         len(vm.items),
		SearchTerm:    vm.searchTerm,
		Category:      vm.filter.Category,
		ExpiresBefore: vm.filter.ExpiresBefore,
	}
}
