package profile

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Resinat/launchview/internal/model"
	"github.com/Resinat/launchview/internal/state"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	repos, closer, err := state.PersistenceBootstrap(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("PersistenceBootstrap: %v", err)
	}
	t.Cleanup(func() { _ = closer.Close() })
	return NewLocalStore(repos.Profiles)
}

func TestLocalStore_GetMissingIsNil(t *testing.T) {
	s := newTestStore(t)
	p, err := s.Get(context.Background(), "nobody")
	if err != nil || p != nil {
		t.Fatalf("got %+v, %v; want nil, nil", p, err)
	}
}

func TestLocalStore_WatchSeesWrites(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	initial, ch, cancel, err := s.Watch(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	defer cancel()
	if initial != nil {
		t.Fatalf("initial: got %+v, want nil", initial)
	}

	if err := s.MergeFavorites(ctx, "u1", []string{"a", "b"}); err != nil {
		t.Fatal(err)
	}
	select {
	case p := <-ch:
		if strings.Join(p.Favorites, ",") != "a,b" {
			t.Fatalf("favorites: got %v", p.Favorites)
		}
	case <-time.After(time.Second):
		t.Fatal("no update delivered")
	}

	// Other documents do not reach this watcher.
	if err := s.MergeFavorites(ctx, "u2", []string{"x"}); err != nil {
		t.Fatal(err)
	}
	select {
	case p := <-ch:
		t.Fatalf("unexpected update for %s", p.UID)
	default:
	}
}

func TestLocalStore_WatchCancelDropsIdleHub(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, ch1, cancel1, err := s.Watch(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	_, _, cancel2, err := s.Watch(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if n := s.watchedDocs(); n != 1 {
		t.Fatalf("watched docs: got %d, want 1", n)
	}

	cancel1()
	cancel1()
	if _, open := <-ch1; open {
		t.Fatal("cancelled watch channel should be closed")
	}
	if n := s.watchedDocs(); n != 1 {
		t.Fatalf("hub dropped while a watcher remains: got %d", n)
	}
	cancel2()
	if n := s.watchedDocs(); n != 0 {
		t.Fatalf("watched docs after last cancel: got %d, want 0", n)
	}

	// A later watcher gets a fresh hub that still sees writes.
	_, ch3, cancel3, err := s.Watch(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	defer cancel3()
	if err := s.MergePhoto(ctx, "u1", nil); err != nil {
		t.Fatal(err)
	}
	select {
	case p := <-ch3:
		if p.UID != "u1" {
			t.Fatalf("got %+v", p)
		}
	case <-time.After(time.Second):
		t.Fatal("no update delivered")
	}
}

func TestService_LoadCreatesProfile(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newTestStore(t))

	p, err := svc.Load(ctx, model.Principal{UID: "u1", Email: "pilot@example.com", DisplayName: "Pilot"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Email != "pilot@example.com" || p.DisplayName != "Pilot" || len(p.Favorites) != 0 {
		t.Fatalf("created profile: got %+v", p)
	}
}

func TestService_UpdatePhoto(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewService(store)

	good := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("\x89PNG fake"))
	if err := svc.UpdatePhoto(ctx, "u1", good); err != nil {
		t.Fatalf("UpdatePhoto: %v", err)
	}
	p, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if p.PhotoData == nil || *p.PhotoData != good {
		t.Fatalf("photo not stored: %+v", p.PhotoData)
	}

	if err := svc.ClearPhoto(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	if p, _ := store.Get(ctx, "u1"); p.PhotoData != nil {
		t.Fatal("photo should be cleared")
	}
}

func TestValidatePhoto(t *testing.T) {
	big := make([]byte, MaxPhotoBytes+1)
	cases := []struct {
		name string
		in   string
		ok   bool
	}{
		{"jpeg", "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("jpg")), true},
		{"webp", "data:image/webp;base64," + base64.StdEncoding.EncodeToString([]byte("webp")), true},
		{"gif", "data:image/gif;base64,R0lG", false},
		{"empty payload", "data:image/png;base64,", false},
		{"bad base64", "data:image/png;base64,@@@", false},
		{"plain url", "https://example.com/a.png", false},
		{"too large", "data:image/png;base64," + base64.StdEncoding.EncodeToString(big), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePhoto(tc.in)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalidPhoto) {
				t.Fatalf("got %v, want ErrInvalidPhoto", err)
			}
		})
	}
}
