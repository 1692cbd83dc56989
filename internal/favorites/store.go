// Package favorites owns the favorite launch set. Signed out, the set lives
// in device storage; signed in, it follows the account profile and the
// device copy is merged into the account once per principal.
package favorites

import (
	"context"
	"encoding/json"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/Resinat/launchview/internal/model"
	"github.com/Resinat/launchview/internal/pubsub"
	"github.com/Resinat/launchview/internal/session"
)

// DeviceKey is the device storage key holding the JSON array of ids.
const DeviceKey = "spacex_favorites"

// MergeNotice is raised once when the device set is merged into an account.
const MergeNotice = "Your local favorites have been synced with your account."

const writeTimeout = 15 * time.Second

// DeviceStore is device-local string storage.
type DeviceStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// RemoteStore is the account side of the set.
type RemoteStore interface {
	Get(ctx context.Context, uid string) (*model.Profile, error)
	MergeFavorites(ctx context.Context, uid string, ids []string) error
}

// Snapshot is the state delivered to subscribers.
type Snapshot struct {
	IDs    []string `json:"ids"`
	Notice string   `json:"notice,omitempty"`
}

// remoteWrite is one queued account write. A write with a non-nil done is a
// flush marker: the writer closes done once everything ahead of it ran.
type remoteWrite struct {
	uid  string
	ids  []string
	done chan struct{}
}

// Store is the single writer of the favorite set.
type Store struct {
	device DeviceStore
	remote RemoteStore

	mu        sync.Mutex
	ids       []string
	uid       string
	syncedFor string // principal whose account set has been read
	mergedFor string
	notice    string

	hub *pubsub.Hub[Snapshot]

	queueMu  sync.Mutex
	queue    []remoteWrite
	wake     chan struct{}
	writerCh chan struct{} // closed when the writer exits
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewStore loads the device set. Call Start before signing in.
func NewStore(device DeviceStore, remote RemoteStore) *Store {
	s := &Store{
		device:   device,
		remote:   remote,
		hub:      pubsub.NewHub[Snapshot](),
		wake:     make(chan struct{}, 1),
		writerCh: make(chan struct{}),
		stopCh:   make(chan struct{}),
	}
	s.ids = s.loadDevice()
	return s
}

// Start runs the remote writer.
func (s *Store) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(s.writerCh)
		s.writeLoop()
	}()
}

// Stop applies queued remote writes and stops the writer.
func (s *Store) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

// Flush blocks until every remote write queued before it has been attempted.
func (s *Store) Flush() {
	done := make(chan struct{})
	s.push(remoteWrite{done: done})
	select {
	case <-done:
	case <-s.writerCh:
	}
}

// Follow applies auth events from tracker until Stop. The subscription is
// registered before Follow returns, and a principal already signed in is
// applied first.
func (s *Store) Follow(tracker *session.Tracker) {
	ch, cancel := tracker.Subscribe()
	current := tracker.Current()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		ctx, cancelCtx := context.WithCancel(context.Background())
		defer cancelCtx()

		if current != nil {
			s.HandleAuth(ctx, session.AuthEvent{Principal: current})
		}
		for {
			select {
			case <-s.stopCh:
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				s.HandleAuth(ctx, ev)
			}
		}
	}()
}

// HandleAuth reacts to one authentication-state notification.
func (s *Store) HandleAuth(ctx context.Context, ev session.AuthEvent) {
	if ev.Principal == nil {
		s.mu.Lock()
		s.uid = ""
		s.syncedFor = ""
		s.mergedFor = ""
		s.ids = s.loadDevice()
		s.publishLocked()
		s.mu.Unlock()
		return
	}

	uid := ev.Principal.UID
	s.mu.Lock()
	s.uid = uid
	s.mu.Unlock()

	// Queued account writes land before the account is read back.
	s.Flush()
	remote, err := s.remote.Get(ctx, uid)
	if err != nil {
		log.Printf("[favorites] sync from account %s failed: %v", uid, err)
		return
	}
	var remoteIDs []string
	if remote != nil {
		remoteIDs = dedupe(remote.Favorites)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uid != uid {
		// Signed out or switched while the account was loading.
		return
	}
	final := remoteIDs
	if s.syncedFor != uid && s.mergedFor != uid {
		if local := s.loadDevice(); len(local) > 0 {
			final = dedupe(append(slices.Clone(remoteIDs), local...))
			s.enqueueLocked(uid, final)
			s.mergedFor = uid
			s.notice = MergeNotice
			log.Printf("[favorites] merged %d device favorites into account %s", len(local), uid)
		}
	}
	if final == nil {
		final = []string{}
	}
	s.syncedFor = uid
	s.ids = final
	s.saveDevice(final)
	s.publishLocked()
}

// IsFavorite reports whether id is in the active set.
func (s *Store) IsFavorite(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.ids, id)
}

// List returns the active set in insertion order.
func (s *Store) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.ids)
}

// Toggle adds or removes id and reports whether it is now a favorite. The
// device copy is written before returning; the account write is queued once
// the account set has been read, so an unsynced account is never overwritten.
func (s *Store) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := true
	if i := slices.Index(s.ids, id); i >= 0 {
		s.ids = slices.Delete(slices.Clone(s.ids), i, i+1)
		added = false
	} else {
		s.ids = append(slices.Clone(s.ids), id)
	}
	s.saveDevice(s.ids)
	if s.uid != "" && s.syncedFor == s.uid {
		s.enqueueLocked(s.uid, s.ids)
	}
	s.publishLocked()
	return added
}

// Notice returns the pending merge notice.
func (s *Store) Notice() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice, s.notice != ""
}

// ClearNotice dismisses the merge notice.
func (s *Store) ClearNotice() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notice == "" {
		return
	}
	s.notice = ""
	s.publishLocked()
}

// Snapshot returns the current set and notice.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{IDs: slices.Clone(s.ids), Notice: s.notice}
}

// Subscribe delivers the latest snapshot after every change.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	return s.hub.Subscribe()
}

func (s *Store) publishLocked() {
	s.hub.Publish(Snapshot{IDs: slices.Clone(s.ids), Notice: s.notice})
}

func (s *Store) enqueueLocked(uid string, ids []string) {
	s.push(remoteWrite{uid: uid, ids: slices.Clone(ids)})
}

// push appends w to the write queue without blocking.
func (s *Store) push(w remoteWrite) {
	s.queueMu.Lock()
	select {
	case <-s.stopCh:
		s.queueMu.Unlock()
		if w.done != nil {
			close(w.done)
		} else {
			log.Printf("[favorites] store stopped, dropping account write for %s", w.uid)
		}
		return
	default:
	}
	s.queue = append(s.queue, w)
	s.queueMu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Store) writeLoop() {
	for {
		select {
		case <-s.wake:
			s.drainQueue()
		case <-s.stopCh:
			s.drainQueue()
			return
		}
	}
}

func (s *Store) drainQueue() {
	for {
		s.queueMu.Lock()
		if len(s.queue) == 0 {
			s.queueMu.Unlock()
			return
		}
		w := s.queue[0]
		s.queue = s.queue[1:]
		s.queueMu.Unlock()

		if w.done != nil {
			close(w.done)
			continue
		}
		s.applyWrite(w)
	}
}

func (s *Store) applyWrite(w remoteWrite) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := s.remote.MergeFavorites(ctx, w.uid, w.ids); err != nil {
		log.Printf("[favorites] account write for %s failed: %v", w.uid, err)
	}
}

func (s *Store) loadDevice() []string {
	raw, ok, err := s.device.Get(DeviceKey)
	if err != nil {
		log.Printf("[favorites] read device favorites: %v", err)
		return []string{}
	}
	if !ok || raw == "" {
		return []string{}
	}
	var values []any
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return []string{}
	}
	ids := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}
	return dedupe(ids)
}

func (s *Store) saveDevice(ids []string) {
	data, err := json.Marshal(ids)
	if err != nil {
		log.Printf("[favorites] encode device favorites: %v", err)
		return
	}
	if err := s.device.Set(DeviceKey, string(data)); err != nil {
		log.Printf("[favorites] write device favorites: %v", err)
	}
}

// dedupe keeps the first occurrence of every id.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
