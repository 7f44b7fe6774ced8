// Package session models who is signed in. A Provider reports session
// changes to subscribers; Tracker is the in-process implementation used for
// every server-held workspace.
package session

import (
	"context"
	"sync"
)

// Session is either None (zero value) or Authenticated(UserID).
type Session struct {
	UserID string
}

// None is the signed-out session.
var None = Session{}

func Authenticated(userID string) Session {
	return Session{UserID: userID}
}

func (s Session) IsAuthenticated() bool {
	return s.UserID != ""
}

// Provider is the Auth Provider seen by the inventory view-model.
type Provider interface {
	// Current returns the session at the time of the call.
	Current() Session
	// Subscribe calls fn with the current session right away and again on
	// every change until the returned func is called.
	Subscribe(fn func(Session)) (unsubscribe func())
	// SignOut ends the session.
	SignOut(ctx context.Context) error
}

// Tracker holds one session and fans changes out to subscribers.
// Callbacks run on the goroutine that caused the change, one change at a
// time, so every subscriber sees changes in the order current took them.
// A callback must not call SignIn or SignOut on the same Tracker.
type Tracker struct {
	// notify serializes deliveries; it is taken before mu.
	notify  sync.Mutex
	mu      sync.Mutex
	current Session
	subs    map[int]func(Session)
	nextID  int
}

func NewTracker() *Tracker {
	return &Tracker{subs: make(map[int]func(Session))}
}

func (t *Tracker) Current() Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

func (t *Tracker) Subscribe(fn func(Session)) func() {
	t.notify.Lock()
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.subs[id] = fn
	current := t.current
	t.mu.Unlock()

	fn(current)
	t.notify.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subs, id)
			t.mu.Unlock()
		})
	}
}

// SignIn switches the session to userID. Signing in as the current user
// notifies nobody.
func (t *Tracker) SignIn(userID string) {
	t.set(Authenticated(userID))
}

func (t *Tracker) SignOut(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.set(None)
	return nil
}

func (t *Tracker) set(s Session) {
	t.notify.Lock()
	defer t.notify.Unlock()

	t.mu.Lock()
	if t.current == s {
		t.mu.Unlock()
		return
	}
	t.current = s
	subs := make([]func(Session), 0, len(t.subs))
	for _, fn := range t.subs {
		subs = append(subs, fn)
	}
	t.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}
