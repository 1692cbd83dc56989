// Package connectivity owns the process-wide online/offline signal, the probe
// loop that feeds it and the guard that moves the user to the offline view.
package connectivity

import (
	"log"
	"sync"

	"github.com/Resinat/launchview/internal/pubsub"
)

// Monitor is the online/offline state. Set is called only by signal
// sources (the prober and explicit platform signals); everything else reads.
type Monitor struct {
	mu     sync.Mutex
	online bool
	hub    *pubsub.Hub[bool]
}

// NewMonitor creates a Monitor with the platform status at startup.
func NewMonitor(initial bool) *Monitor {
	return &Monitor{online: initial, hub: pubsub.NewHub[bool]()}
}

// Online reports the latest known state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Set records a platform signal and reports whether it changed the state.
// Subscribers are notified only on transitions.
func (m *Monitor) Set(online bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.online == online {
		return false
	}
	m.online = online
	if online {
		log.Println("[connectivity] online")
	} else {
		log.Println("[connectivity] offline")
	}
	m.hub.Publish(online)
	return true
}

// Subscribe delivers the new state after each transition.
func (m *Monitor) Subscribe() (<-chan bool, func()) {
	return m.hub.Subscribe()
}
