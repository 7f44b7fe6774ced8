package inventory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/session"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/store"
)

type workspace struct {
	tracker  *session.Tracker
	vm       *ViewModel
	lastUsed time.Time
	ready    chan struct{}
}

// Workspaces keeps one signed-in ViewModel per user between requests.
type Workspaces struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*workspace
}

func NewWorkspaces(st store.Store, logger *slog.Logger) *Workspaces {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workspaces{
		store:   st,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]*workspace),
	}
}

// Acquire returns the view-model of userID, signing a new one in on first
// use. Concurrent callers for the same user share one view-model.
func (w *Workspaces) Acquire(ctx context.Context, userID string) (*ViewModel, error) {
	if userID == "" {
		return nil, ErrNoSession
	}

	w.mu.Lock()
	ws, ok := w.entries[userID]
	if ok {
		ws.lastUsed = w.now()
		w.mu.Unlock()
		select {
		case <-ws.ready:
			return ws.vm, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	ws = &workspace{
		tracker:  session.NewTracker(),
		vm:       New(w.store, WithLogger(w.logger.With("user_id", userID))),
		lastUsed: w.now(),
		ready:    make(chan struct{}),
	}
	w.entries[userID] = ws
	w.mu.Unlock()

	ws.vm.Init(ctx, ws.tracker)
	ws.tracker.SignIn(userID)
	close(ws.ready)

	w.logger.Debug("pantry workspace opened", "user_id", userID)
	return ws.vm, nil
}

// SignOut ends the session of userID and drops its workspace. Signing out a
// user without a workspace is a no-op.
func (w *Workspaces) SignOut(ctx context.Context, userID string) error {
	w.mu.Lock()
	ws, ok := w.entries[userID]
	if ok {
		delete(w.entries, userID)
	}
	w.mu.Unlock()
	if !ok {
		return nil
	}

	<-ws.ready
	err := ws.tracker.SignOut(ctx)
	ws.vm.Teardown()
	w.logger.Debug("pantry workspace closed", "user_id", userID)
	return err
}

// Sweep drops workspaces unused for longer than maxIdle and returns how many
// were dropped.
func (w *Workspaces) Sweep(maxIdle time.Duration) int {
	cutoff := w.now().Add(-maxIdle)

	w.mu.Lock()
	var stale []*workspace
	for userID, ws := range w.entries {
		if ws.lastUsed.Before(cutoff) {
			stale = append(stale, ws)
			delete(w.entries, userID)
		}
	}
	w.mu.Unlock()

	for _, ws := range stale {
		<-ws.ready
		ws.vm.Teardown()
	}
	if len(stale) > 0 {
		w.logger.Info("idle pantry workspaces swept", "count", len(stale))
	}
	return len(stale)
}

// StartSweeper runs Sweep every interval until done is closed.
func (w *Workspaces) StartSweeper(interval, maxIdle time.Duration, done <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				w.Sweep(maxIdle)
			case <-done:
				return
			}
		}
	}()
}

// Close tears every workspace down.
func (w *Workspaces) Close() {
	w.mu.Lock()
	entries := w.entries
	w.entries = make(map[string]*workspace)
	w.mu.Unlock()

	for _, ws := range entries {
		<-ws.ready
		ws.vm.Teardown()
	}
}

func (w *Workspaces) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}
