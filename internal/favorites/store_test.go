package favorites

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/Resinat/launchview/internal/model"
	"github.com/Resinat/launchview/internal/session"
)

type memDevice struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemDevice() *memDevice { return &memDevice{values: map[string]string{}} }

func (m *memDevice) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memDevice) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

type fakeRemote struct {
	mu       sync.Mutex
	docs     map[string][]string
	writes   int
	failNext bool
	failGet  bool
}

func newFakeRemote() *fakeRemote { return &fakeRemote{docs: map[string][]string{}} }

func (f *fakeRemote) Get(ctx context.Context, uid string) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet {
		f.failGet = false
		return nil, errors.New("unavailable")
	}
	ids, ok := f.docs[uid]
	if !ok {
		return nil, nil
	}
	return &model.Profile{UID: uid, Favorites: slices.Clone(ids)}, nil
}

func (f *fakeRemote) MergeFavorites(ctx context.Context, uid string, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return errors.New("permission denied")
	}
	f.writes++
	f.docs[uid] = slices.Clone(ids)
	return nil
}

func (f *fakeRemote) doc(uid string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.docs[uid])
}

func (f *fakeRemote) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func newTestStore(t *testing.T, device *memDevice, remote *fakeRemote) *Store {
	t.Helper()
	s := NewStore(device, remote)
	s.Start()
	t.Cleanup(s.Stop)
	return s
}

func login(uid string) session.AuthEvent {
	return session.AuthEvent{Principal: &model.Principal{UID: uid}}
}

func assertIDs(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(want) == 0 {
		want = []string{}
	}
	if !slices.Equal(got, want) {
		t.Fatalf("ids: got %v, want %v", got, want)
	}
}

func TestNewStore_IgnoresUnparseableDevice(t *testing.T) {
	for _, raw := range []string{`not json`, `{"a":1}`, `[1, "x", null, "y", "x"]`} {
		device := newMemDevice()
		device.values[DeviceKey] = raw
		s := NewStore(device, newFakeRemote())
		if raw == `[1, "x", null, "y", "x"]` {
			assertIDs(t, s.List(), "x", "y")
		} else {
			assertIDs(t, s.List())
		}
	}
}

func TestToggle_AnonymousWritesDevice(t *testing.T) {
	device := newMemDevice()
	remote := newFakeRemote()
	s := newTestStore(t, device, remote)

	if !s.Toggle("a") || !s.Toggle("b") {
		t.Fatal("Toggle on absent id must add")
	}
	if !s.IsFavorite("a") {
		t.Fatal("a should be a favorite")
	}
	if s.Toggle("a") {
		t.Fatal("Toggle on present id must remove")
	}
	assertIDs(t, s.List(), "b")
	if device.values[DeviceKey] != `["b"]` {
		t.Fatalf("device: got %q", device.values[DeviceKey])
	}
	s.Flush()
	if remote.writeCount() != 0 {
		t.Fatal("anonymous toggles must not write the account")
	}
}

func TestLogin_MergesDeviceIntoAccountOnce(t *testing.T) {
	ctx := context.Background()
	device := newMemDevice()
	remote := newFakeRemote()
	remote.docs["u1"] = []string{"r1", "shared"}
	s := newTestStore(t, device, remote)

	s.Toggle("shared")
	s.Toggle("l1")

	s.HandleAuth(ctx, login("u1"))
	s.Flush()

	assertIDs(t, s.List(), "r1", "shared", "l1")
	assertIDs(t, remote.doc("u1"), "r1", "shared", "l1")
	if msg, ok := s.Notice(); !ok || msg != MergeNotice {
		t.Fatalf("notice: got %q, %v", msg, ok)
	}
	s.ClearNotice()

	// A repeated notification for the same principal neither merges nor
	// notifies again.
	writes := remote.writeCount()
	s.HandleAuth(ctx, login("u1"))
	s.Flush()
	if remote.writeCount() != writes {
		t.Fatalf("repeated login wrote the account: %d -> %d", writes, remote.writeCount())
	}
	if _, ok := s.Notice(); ok {
		t.Fatal("repeated login must not raise the notice")
	}
	assertIDs(t, s.List(), "r1", "shared", "l1")
}

func TestLogin_EmptyDeviceAdoptsAccount(t *testing.T) {
	remote := newFakeRemote()
	remote.docs["u1"] = []string{"r1"}
	device := newMemDevice()
	s := newTestStore(t, device, remote)

	s.HandleAuth(context.Background(), login("u1"))
	s.Flush()

	assertIDs(t, s.List(), "r1")
	if remote.writeCount() != 0 {
		t.Fatal("adopting the account set must not write it")
	}
	if _, ok := s.Notice(); ok {
		t.Fatal("no notice without a merge")
	}
	if device.values[DeviceKey] != `["r1"]` {
		t.Fatalf("device mirror: got %q", device.values[DeviceKey])
	}
}

func TestAuthenticatedToggle_WritesAccountInOrder(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	s := newTestStore(t, newMemDevice(), remote)
	s.HandleAuth(ctx, login("u1"))

	s.Toggle("a")
	s.Toggle("b")
	s.Toggle("a")
	s.Flush()

	assertIDs(t, remote.doc("u1"), "b")
	if remote.writeCount() != 3 {
		t.Fatalf("writes: got %d, want 3", remote.writeCount())
	}
}

func TestAuthenticatedToggle_FailedWriteKeepsLocalChange(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	s := newTestStore(t, newMemDevice(), remote)
	s.HandleAuth(ctx, login("u1"))

	remote.mu.Lock()
	remote.failNext = true
	remote.mu.Unlock()

	s.Toggle("a")
	s.Flush()
	if !s.IsFavorite("a") {
		t.Fatal("a failed account write must not roll back the toggle")
	}
}

func TestLogout_ReloadsDeviceAndResetsMergeGuard(t *testing.T) {
	ctx := context.Background()
	device := newMemDevice()
	remote := newFakeRemote()
	s := newTestStore(t, device, remote)

	s.Toggle("l1")
	s.HandleAuth(ctx, login("u1"))
	s.Flush()
	s.ClearNotice()

	s.HandleAuth(ctx, session.AuthEvent{})
	// The device mirrors the last account view.
	assertIDs(t, s.List(), "l1")

	s.Toggle("l2")
	s.HandleAuth(ctx, login("u1"))
	s.Flush()
	assertIDs(t, s.List(), "l1", "l2")
	if _, ok := s.Notice(); !ok {
		t.Fatal("a new session for the principal merges again")
	}
}

func TestSubscribe_DeliversLatestSnapshot(t *testing.T) {
	s := newTestStore(t, newMemDevice(), newFakeRemote())
	ch, cancel := s.Subscribe()
	defer cancel()

	s.Toggle("a")
	s.Toggle("b")
	snap := <-ch
	assertIDs(t, snap.IDs, "a", "b")
}

func TestFollow_CatchesUpWithSignedInPrincipal(t *testing.T) {
	device := newMemDevice()
	device.values[DeviceKey] = `["a"]`
	remote := newFakeRemote()
	remote.docs["u1"] = []string{"b"}
	s := newTestStore(t, device, remote)

	tracker := session.NewTracker()
	tracker.Login(model.Principal{UID: "u1"})
	s.Follow(tracker)

	waitFor(t, func() bool { return len(s.List()) == 2 })
	assertIDs(t, s.List(), "b", "a")

	if _, ok := s.Notice(); !ok {
		t.Fatal("catch-up merge should raise the notice")
	}
	s.Flush()
	assertIDs(t, remote.doc("u1"), "b", "a")
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestLogin_FailedAccountReadMergesOnNextNotification(t *testing.T) {
	ctx := context.Background()
	device := newMemDevice()
	device.values[DeviceKey] = `["a"]`
	remote := newFakeRemote()
	remote.docs["u1"] = []string{"b", "c"}
	remote.failGet = true
	s := newTestStore(t, device, remote)

	s.HandleAuth(ctx, login("u1"))
	assertIDs(t, s.List(), "a")

	// Until the account has been read, toggles stay on the device.
	s.Toggle("d")
	s.Flush()
	if remote.writeCount() != 0 {
		t.Fatalf("unsynced account was written %d times", remote.writeCount())
	}
	assertIDs(t, remote.doc("u1"), "b", "c")

	s.HandleAuth(ctx, login("u1"))
	s.Flush()
	assertIDs(t, s.List(), "b", "c", "a", "d")
	assertIDs(t, remote.doc("u1"), "b", "c", "a", "d")
	if msg, ok := s.Notice(); !ok || msg != MergeNotice {
		t.Fatalf("notice: got %q, %v", msg, ok)
	}
}

func TestFlush_ConcurrentWithToggles(t *testing.T) {
	remote := newFakeRemote()
	s := newTestStore(t, newMemDevice(), remote)
	s.HandleAuth(context.Background(), login("u1"))

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := range 20 {
				s.Toggle(fmt.Sprintf("l%d-%d", i, j))
			}
		}()
		go func() {
			defer wg.Done()
			for range 20 {
				s.Flush()
			}
		}()
	}
	wg.Wait()
	s.Flush()

	if got := s.List(); len(got) != 160 || !slices.Equal(remote.doc("u1"), got) {
		t.Fatalf("account %d ids, active %d ids; want both 160 and equal", len(remote.doc("u1")), len(got))
	}
}

func TestFlush_ReturnsAfterStop(t *testing.T) {
	s := NewStore(newMemDevice(), newFakeRemote())
	s.Start()
	s.Stop()

	done := make(chan struct{})
	go func() {
		s.Flush()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Flush blocked on a stopped store")
	}
}
