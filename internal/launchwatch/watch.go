// Package launchwatch polls the newest launches on a cron schedule. Each
// poll goes through the data client, so it also keeps the response cache
// warm for offline use, and launches not seen before are announced.
package launchwatch

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/Resinat/launchview/internal/model"
	"github.com/Resinat/launchview/internal/pubsub"
	"github.com/Resinat/launchview/internal/spacex"
)

// DefaultSchedule polls every 30 minutes.
const DefaultSchedule = "*/30 * * * *"

const (
	maxRecent   = 20
	pollTimeout = 30 * time.Second
)

// Lister fetches one page of launches.
type Lister interface {
	QueryLaunches(ctx context.Context, q model.PageQuery) (model.PageResult, spacex.Source, error)
}

// Notice announces a launch that appeared since the previous poll.
type Notice struct {
	ID       uuid.UUID `json:"id"`
	LaunchID string    `json:"launch_id"`
	Name     string    `json:"name"`
	DateUTC  time.Time `json:"date_utc"`
	SeenAt   time.Time `json:"seen_at"`
}

// ServiceConfig configures a Service.
type ServiceConfig struct {
	Client   Lister
	Schedule string
	PageSize int
	Now      func() time.Time
}

// Service runs the scheduled poll.
type Service struct {
	client   Lister
	pageSize int
	now      func() time.Time

	cron        *cron.Cron
	cronEntryID cron.EntryID
	pollMu      sync.Mutex // serializes PollNow calls
	lifeCtx     context.Context
	lifeCancel  context.CancelFunc
	wg          sync.WaitGroup

	mu     sync.Mutex
	seen   map[string]struct{}
	seeded bool
	recent []Notice

	hub *pubsub.Hub[[]Notice]
}

// NewService creates a Service. An invalid schedule is an error.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = model.DefaultPageLimit
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	c := cron.New()
	lifeCtx, lifeCancel := context.WithCancel(context.Background())
	s := &Service{
		client:     cfg.Client,
		pageSize:   cfg.PageSize,
		now:        cfg.Now,
		cron:       c,
		lifeCtx:    lifeCtx,
		lifeCancel: lifeCancel,
		seen:       make(map[string]struct{}),
		hub:        pubsub.NewHub[[]Notice](),
	}
	entryID, err := c.AddFunc(cfg.Schedule, func() {
		if _, err := s.PollNow(s.lifeCtx); err != nil {
			log.Printf("[launchwatch] scheduled poll failed: %v", err)
		}
	})
	if err != nil {
		lifeCancel()
		return nil, fmt.Errorf("launchwatch: invalid schedule %q: %w", cfg.Schedule, err)
	}
	s.cronEntryID = entryID
	return s, nil
}

// Start seeds the seen set in the background and starts the scheduler.
func (s *Service) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if _, err := s.PollNow(s.lifeCtx); err != nil {
			log.Printf("[launchwatch] initial poll failed: %v", err)
		}
	}()
	s.cron.Start()
}

// Stop cancels a running poll and waits for the initial and scheduled
// polls to finish.
func (s *Service) Stop() {
	s.lifeCancel()
	<-s.cron.Stop().Done()
	s.wg.Wait()
}

// NextRun returns the next scheduled poll time.
func (s *Service) NextRun() time.Time {
	return s.cron.Entry(s.cronEntryID).Next
}

// PollNow fetches the newest page and returns notices for launches not
// seen before. The first successful poll only seeds the seen set.
func (s *Service) PollNow(ctx context.Context) ([]Notice, error) {
	s.pollMu.Lock()
	defer s.pollMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, pollTimeout)
	defer cancel()

	res, src, err := s.client.QueryLaunches(ctx, model.PageQuery{Page: 1, Limit: s.pageSize})
	if err != nil {
		return nil, err
	}
	if src == spacex.SourceCache {
		// A cached page says nothing new.
		return nil, nil
	}

	s.mu.Lock()
	var notices []Notice
	now := s.now().UTC()
	for _, l := range res.Items {
		if _, ok := s.seen[l.ID]; ok {
			continue
		}
		s.seen[l.ID] = struct{}{}
		if !s.seeded {
			continue
		}
		notices = append(notices, Notice{
			ID:       uuid.New(),
			LaunchID: l.ID,
			Name:     l.Name,
			DateUTC:  l.DateUTC,
			SeenAt:   now,
		})
	}
	wasSeeded := s.seeded
	s.seeded = true
	s.recent = append(s.recent, notices...)
	if over := len(s.recent) - maxRecent; over > 0 {
		s.recent = slices.Delete(s.recent, 0, over)
	}
	s.mu.Unlock()

	if !wasSeeded {
		log.Printf("[launchwatch] seeded with %d launches", len(res.Items))
	}
	for _, n := range notices {
		log.Printf("[launchwatch] new launch %s (%s)", n.Name, n.LaunchID)
	}
	if len(notices) > 0 {
		s.hub.Publish(slices.Clone(notices))
	}
	return notices, nil
}

// Recent returns the latest notices, oldest first.
func (s *Service) Recent() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.recent)
}

// Subscribe delivers the notices of each poll that found new launches as
// one batch.
func (s *Service) Subscribe() (<-chan []Notice, func()) {
	return s.hub.Subscribe()
}
