// Package profile is the per-user profile document store: favorites and
// avatar photo live here, keyed by the principal's uid.
package profile

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/Resinat/launchview/internal/model"
	"github.com/Resinat/launchview/internal/pubsub"
	"github.com/Resinat/launchview/internal/state"
)

// Store is the remote profile document contract. Writes are merge-style:
// they create the document when missing and touch only the named field.
type Store interface {
	// Get returns the profile, or nil with no error when it does not exist.
	Get(ctx context.Context, uid string) (*model.Profile, error)
	Ensure(ctx context.Context, principal model.Principal) (*model.Profile, error)
	MergeFavorites(ctx context.Context, uid string, ids []string) error
	MergePhoto(ctx context.Context, uid string, photo *string) error
	// Watch returns the current document (nil when absent) and a channel
	// delivering it again after every write.
	Watch(ctx context.Context, uid string) (*model.Profile, <-chan *model.Profile, func(), error)
}

// Repo is the persistence used by LocalStore.
type Repo interface {
	Get(ctx context.Context, uid string) (*model.Profile, error)
	Ensure(ctx context.Context, principal model.Principal) (*model.Profile, error)
	MergeFavorites(ctx context.Context, uid string, ids []string) (*model.Profile, error)
	MergePhoto(ctx context.Context, uid string, photo *string) (*model.Profile, error)
}

// LocalStore keeps profile documents in the state database and fans every
// write out to the document's watchers.
type LocalStore struct {
	repo Repo
	hubs *xsync.Map[string, *pubsub.Hub[*model.Profile]]
}

func NewLocalStore(repo Repo) *LocalStore {
	return &LocalStore{
		repo: repo,
		hubs: xsync.NewMap[string, *pubsub.Hub[*model.Profile]](),
	}
}

func (s *LocalStore) Get(ctx context.Context, uid string) (*model.Profile, error) {
	p, err := s.repo.Get(ctx, uid)
	if errors.Is(err, state.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

func (s *LocalStore) Ensure(ctx context.Context, principal model.Principal) (*model.Profile, error) {
	p, err := s.repo.Ensure(ctx, principal)
	if err != nil {
		return nil, err
	}
	s.publish(p)
	return p, nil
}

func (s *LocalStore) MergeFavorites(ctx context.Context, uid string, ids []string) error {
	p, err := s.repo.MergeFavorites(ctx, uid, ids)
	if err != nil {
		return err
	}
	s.publish(p)
	return nil
}

func (s *LocalStore) MergePhoto(ctx context.Context, uid string, photo *string) error {
	p, err := s.repo.MergePhoto(ctx, uid, photo)
	if err != nil {
		return err
	}
	s.publish(p)
	return nil
}

// Watch subscribes to uid's document. The per-uid hub is dropped when its
// last watcher cancels.
func (s *LocalStore) Watch(ctx context.Context, uid string) (*model.Profile, <-chan *model.Profile, func(), error) {
	if uid == "" {
		return nil, nil, nil, fmt.Errorf("watch profile: empty uid")
	}
	var ch <-chan *model.Profile
	var unsubscribe func()
	s.hubs.Compute(uid, func(hub *pubsub.Hub[*model.Profile], loaded bool) (*pubsub.Hub[*model.Profile], xsync.ComputeOp) {
		if !loaded {
			hub = pubsub.NewHub[*model.Profile]()
		}
		ch, unsubscribe = hub.Subscribe()
		return hub, xsync.UpdateOp
	})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.hubs.Compute(uid, func(hub *pubsub.Hub[*model.Profile], loaded bool) (*pubsub.Hub[*model.Profile], xsync.ComputeOp) {
				unsubscribe()
				if loaded && hub.Len() == 0 {
					return nil, xsync.DeleteOp
				}
				return hub, xsync.CancelOp
			})
		})
	}

	current, err := s.Get(ctx, uid)
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}
	return current, ch, cancel, nil
}

func (s *LocalStore) watchedDocs() int {
	return s.hubs.Size()
}

func (s *LocalStore) publish(p *model.Profile) {
	if p == nil {
		return
	}
	if hub, ok := s.hubs.Load(p.UID); ok {
		hub.Publish(p)
	}
}
