package nav

import (
	"log"
	"sync"

	"github.com/Resinat/launchview/internal/pubsub"
)

// DeviceKeyLocation is the device storage key of the last location.
const DeviceKeyLocation = "app_location"

// DeviceStore is device-local string storage.
type DeviceStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Navigator owns the current location.
type Navigator struct {
	mu      sync.Mutex
	current Location
	store   DeviceStore
	hub     *pubsub.Hub[Location]
}

// NewNavigator restores the last persisted location. A persisted offline
// view resolves to the location it was entered from.
func NewNavigator(store DeviceStore) *Navigator {
	n := &Navigator{current: Home(), store: store, hub: pubsub.NewHub[Location]()}
	if store == nil {
		return n
	}
	raw, ok, err := store.Get(DeviceKeyLocation)
	if err != nil {
		log.Printf("[nav] restore location: %v", err)
		return n
	}
	if !ok {
		return n
	}
	loc, err := ParseLocation(raw)
	if err != nil {
		log.Printf("[nav] ignore stored location %q: %v", raw, err)
		return n
	}
	if loc.IsOffline() {
		loc = loc.From()
	}
	n.current = loc
	return n
}

// Current returns the current location.
func (n *Navigator) Current() Location {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Navigate moves to loc, persists it and notifies subscribers.
func (n *Navigator) Navigate(loc Location) {
	if loc.Path == "" {
		loc.Path = HomePath
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current.String() == loc.String() {
		return
	}
	n.current = loc
	if n.store != nil {
		if err := n.store.Set(DeviceKeyLocation, loc.String()); err != nil {
			log.Printf("[nav] persist location: %v", err)
		}
	}
	n.hub.Publish(loc)
}

// Return leaves the offline view for the location it was entered from.
// It is a no-op elsewhere.
func (n *Navigator) Return() Location {
	cur := n.Current()
	if !cur.IsOffline() {
		return cur
	}
	dest := cur.From()
	n.Navigate(dest)
	return dest
}

// Subscribe delivers the latest location after every change.
func (n *Navigator) Subscribe() (<-chan Location, func()) {
	return n.hub.Subscribe()
}
