package items

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Resinat/launchview/internal/model"
	"github.com/Resinat/launchview/internal/nav"
	"github.com/Resinat/launchview/internal/netutil"
	"github.com/Resinat/launchview/internal/pubsub"
	"github.com/Resinat/launchview/internal/spacex"
)

const (
	DefaultDebounce      = 300 * time.Millisecond
	DefaultDetailTimeout = 10 * time.Second
)

// Client fetches launch pages and single launches.
type Client interface {
	QueryLaunches(ctx context.Context, q model.PageQuery) (model.PageResult, spacex.Source, error)
	GetLaunch(ctx context.Context, id string) (model.Launch, spacex.Source, error)
}

// Navigator receives the location matching the visible query.
type Navigator interface {
	Current() nav.Location
	Navigate(loc nav.Location)
}

// Config wires a Container.
type Config struct {
	Client        Client
	Navigator     Navigator
	Debounce      time.Duration
	DetailTimeout time.Duration
	DefaultLimit  int
}

type commandKind int

const (
	cmdSetQuery commandKind = iota
	cmdLoad
	cmdReload
	cmdSelect
)

type command struct {
	kind  commandKind
	query model.PageQuery
	id    string
}

// Container owns State. All transitions happen on its loop goroutine;
// readers get snapshots through State and Subscribe.
type Container struct {
	client        Client
	nav           Navigator
	debounce      time.Duration
	detailTimeout time.Duration
	defaultLimit  int

	commands chan command
	results  chan Intent
	current  atomic.Pointer[State]
	hub      *pubsub.Hub[State]

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewContainer(cfg Config) *Container {
	if cfg.Client == nil {
		panic("items: NewContainer requires a Client")
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	detailTimeout := cfg.DetailTimeout
	if detailTimeout <= 0 {
		detailTimeout = DefaultDetailTimeout
	}
	defaultLimit := cfg.DefaultLimit
	if defaultLimit <= 0 {
		defaultLimit = model.DefaultPageLimit
	}
	c := &Container{
		client:        cfg.Client,
		nav:           cfg.Navigator,
		debounce:      debounce,
		detailTimeout: detailTimeout,
		defaultLimit:  defaultLimit,
		commands:      make(chan command, 16),
		results:       make(chan Intent, 16),
		hub:           pubsub.NewHub[State](),
		stopCh:        make(chan struct{}),
	}
	initial := InitialState(defaultLimit)
	c.current.Store(&initial)
	return c
}

// Start runs the state loop.
func (c *Container) Start() {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.run()
	}()
}

// Stop abandons in-flight fetches and stops the loop.
func (c *Container) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
	c.wg.Wait()
}

// SetQuery requests q after the debounce delay. A newer call within the
// delay replaces it; a query equal to the current one is not re-fetched.
func (c *Container) SetQuery(q model.PageQuery) error {
	q = c.normalize(q)
	if err := q.Validate(); err != nil {
		return err
	}
	c.send(command{kind: cmdSetQuery, query: q})
	return nil
}

// Load fetches q immediately, superseding any pending or in-flight load.
func (c *Container) Load(q model.PageQuery) error {
	q = c.normalize(q)
	if err := q.Validate(); err != nil {
		return err
	}
	c.send(command{kind: cmdLoad, query: q})
	return nil
}

// Reload re-issues the current query.
func (c *Container) Reload() {
	c.send(command{kind: cmdReload})
}

// Select loads one launch. A blank id fails without a request.
func (c *Container) Select(id string) {
	c.send(command{kind: cmdSelect, id: strings.TrimSpace(id)})
}

// State returns the latest snapshot.
func (c *Container) State() State {
	return *c.current.Load()
}

// Subscribe delivers the latest snapshot after every transition.
func (c *Container) Subscribe() (<-chan State, func()) {
	return c.hub.Subscribe()
}

func (c *Container) normalize(q model.PageQuery) model.PageQuery {
	if q.Limit == 0 {
		q.Limit = c.defaultLimit
	}
	if q.Page == 0 {
		q.Page = 1
	}
	q.Term = strings.TrimSpace(q.Term)
	return q
}

func (c *Container) send(cmd command) {
	select {
	case c.commands <- cmd:
	case <-c.stopCh:
	}
}

func (c *Container) run() {
	var (
		state      = c.State()
		gen        uint64
		listCancel context.CancelFunc = func() {}
		itemCancel context.CancelFunc = func() {}
		pending    *model.PageQuery
	)
	debounce := time.NewTimer(c.debounce)
	debounce.Stop()
	defer func() {
		debounce.Stop()
		listCancel()
		itemCancel()
	}()

	apply := func(in Intent) {
		state = Reduce(state, in)
		snap := state
		c.current.Store(&snap)
		c.hub.Publish(snap)
	}

	loadList := func(q model.PageQuery) {
		listCancel()
		gen++
		ctx, cancel := context.WithCancel(context.Background())
		listCancel = cancel
		g := gen
		apply(LoadItems{Query: q, Gen: g})
		c.follow(nav.ItemsLocation(q, c.defaultLimit))
		c.spawn(func() { c.fetchList(ctx, g, q) })
	}

	selectItem := func(id string) {
		itemCancel()
		gen++
		g := gen
		apply(LoadItem{ID: id, Gen: g})
		if id == "" {
			itemCancel = func() {}
			apply(LoadItemFailure{Gen: g, Error: ErrMsgLaunchNotFound})
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), c.detailTimeout)
		itemCancel = cancel
		c.follow(nav.DetailLocation(id))
		c.spawn(func() { c.fetchItem(ctx, g, id) })
	}

	for {
		select {
		case <-c.stopCh:
			return
		case cmd := <-c.commands:
			switch cmd.kind {
			case cmdSetQuery:
				q := cmd.query
				pending = &q
				debounce.Reset(c.debounce)
			case cmdLoad:
				pending = nil
				debounce.Stop()
				loadList(cmd.query)
			case cmdReload:
				pending = nil
				debounce.Stop()
				loadList(state.Query)
			case cmdSelect:
				selectItem(cmd.id)
			}
		case <-debounce.C:
			if pending == nil {
				continue
			}
			q := *pending
			pending = nil
			if q == state.Query && state.listGen != 0 {
				continue
			}
			loadList(q)
		case in := <-c.results:
			apply(in)
		}
	}
}

// spawn runs fn on a tracked goroutine.
func (c *Container) spawn(fn func()) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn()
	}()
}

func (c *Container) deliver(ctx context.Context, in Intent) {
	if errors.Is(ctx.Err(), context.Canceled) {
		return
	}
	select {
	case c.results <- in:
	case <-c.stopCh:
	}
}

func (c *Container) fetchList(ctx context.Context, gen uint64, q model.PageQuery) {
	res, src, err := c.client.QueryLaunches(ctx, q)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("[items] load %q page %d failed: %v", q.Term, q.Page, err)
		}
		c.deliver(ctx, LoadItemsFailure{Gen: gen, Error: ErrMsgLoadItems})
		return
	}
	c.deliver(ctx, LoadItemsSuccess{Gen: gen, Result: res, FromCache: src == spacex.SourceCache})
}

func (c *Container) fetchItem(ctx context.Context, gen uint64, id string) {
	item, src, err := c.client.GetLaunch(ctx, id)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("[items] load launch %s failed: %v", id, err)
		}
		c.deliver(ctx, LoadItemFailure{Gen: gen, Error: detailErrorMessage(err)})
		return
	}
	c.deliver(ctx, LoadItemSuccess{Gen: gen, Item: item, FromCache: src == spacex.SourceCache})
}

func (c *Container) follow(loc nav.Location) {
	if c.nav == nil || c.nav.Current().IsOffline() {
		return
	}
	c.nav.Navigate(loc)
}

func detailErrorMessage(err error) string {
	if errors.Is(err, spacex.ErrNotFound) || netutil.StatusCode(err) == 404 {
		return ErrMsgLaunchNotFound
	}
	return ErrMsgLoadLaunch
}
