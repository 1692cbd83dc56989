// Package session tracks the authentication state of the single local user.
package session

import (
	"sync"

	"github.com/Resinat/launchview/internal/model"
	"github.com/Resinat/launchview/internal/pubsub"
)

// AuthEvent is one authentication-state notification. Principal is nil
// when signed out.
type AuthEvent struct {
	Principal *model.Principal
}

// Tracker holds the current principal. Every Login and Logout emits an
// event, even when nothing changed, so consumers must be idempotent.
type Tracker struct {
	mu      sync.Mutex
	current *model.Principal
	hub     *pubsub.Hub[AuthEvent]
}

func NewTracker() *Tracker {
	return &Tracker{hub: pubsub.NewHub[AuthEvent]()}
}

// Login records p as the signed-in principal.
func (t *Tracker) Login(p model.Principal) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = &p
	t.hub.Publish(AuthEvent{Principal: clonePrincipal(t.current)})
}

// Logout clears the principal.
func (t *Tracker) Logout() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = nil
	t.hub.Publish(AuthEvent{})
}

// Current returns the signed-in principal, or nil.
func (t *Tracker) Current() *model.Principal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return clonePrincipal(t.current)
}

// Subscribe delivers the latest auth event.
func (t *Tracker) Subscribe() (<-chan AuthEvent, func()) {
	return t.hub.Subscribe()
}

func clonePrincipal(p *model.Principal) *model.Principal {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
