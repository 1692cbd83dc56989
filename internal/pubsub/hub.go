// Package pubsub provides latest-value fan-out used by the single-writer
// state owners (connectivity, session, favorites, list/detail state).
package pubsub

import (
	"sync"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"
)

// Hub delivers published values to every subscriber. Each subscriber holds
// at most one pending value: a slow reader sees the newest value and skips
// the ones in between, and Publish never blocks.
//
// Publish must be called by one writer at a time for subscribers to observe
// values in publish order.
type Hub[T any] struct {
	subs *xsync.Map[uuid.UUID, *subscriber[T]]
}

type subscriber[T any] struct {
	mu     sync.Mutex
	ch     chan T
	closed bool
}

func NewHub[T any]() *Hub[T] {
	return &Hub[T]{subs: xsync.NewMap[uuid.UUID, *subscriber[T]]()}
}

// Subscribe registers a subscriber. The returned cancel func unregisters it
// and closes the channel; calling it more than once is safe.
func (h *Hub[T]) Subscribe() (<-chan T, func()) {
	id := uuid.New()
	sub := &subscriber[T]{ch: make(chan T, 1)}
	h.subs.Store(id, sub)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.subs.Delete(id)
			sub.mu.Lock()
			sub.closed = true
			close(sub.ch)
			sub.mu.Unlock()
		})
	}
	return sub.ch, cancel
}

// Publish offers v to every current subscriber.
func (h *Hub[T]) Publish(v T) {
	h.subs.Range(func(_ uuid.UUID, sub *subscriber[T]) bool {
		sub.offer(v)
		return true
	})
}

// Len returns the number of live subscribers.
func (h *Hub[T]) Len() int {
	return h.subs.Size()
}

func (s *subscriber[T]) offer(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case <-s.ch:
	default:
	}
	s.ch <- v
}
