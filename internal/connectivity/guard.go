package connectivity

import (
	"log"
	"strings"
	"sync"

	"github.com/Resinat/launchview/internal/nav"
	"github.com/Resinat/launchview/internal/netutil"
)

// Navigator is the part of nav.Navigator the guard drives.
type Navigator interface {
	Current() nav.Location
	Navigate(loc nav.Location)
}

// Paths whose failures are shown in place (from cache or as an inline
// error) instead of redirecting to the offline view.
var inPlacePaths = []string{"/launches", "/favorites"}

// Guard watches failed API requests and moves the user to the offline view
// when the tracked API is unreachable.
type Guard struct {
	monitor *Monitor
	nav     Navigator
	apiURL  string

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewGuard tracks failures of requests to apiBaseURL's registrable domain.
func NewGuard(monitor *Monitor, navigator Navigator, apiBaseURL string) *Guard {
	return &Guard{
		monitor: monitor,
		nav:     navigator,
		apiURL:  apiBaseURL,
		stopCh:  make(chan struct{}),
	}
}

// ObserveFailure is called for every failed API request.
func (g *Guard) ObserveFailure(rawURL string, err error) {
	if g.monitor.Online() && netutil.StatusCode(err) != 0 {
		return
	}
	if !netutil.SameRegistrableDomain(rawURL, g.apiURL) {
		return
	}
	for _, p := range inPlacePaths {
		if strings.Contains(rawURL, p) {
			return
		}
	}
	cur := g.nav.Current()
	if cur.IsOffline() {
		return
	}
	log.Printf("[connectivity] %s unreachable, showing offline view (from %s)", rawURL, cur.String())
	g.nav.Navigate(nav.OfflineLocation(cur))
}

// Start follows monitor transitions: going online while the offline view
// is shown navigates home.
func (g *Guard) Start() {
	ch, cancel := g.monitor.Subscribe()
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer cancel()
		for {
			select {
			case <-g.stopCh:
				return
			case online, ok := <-ch:
				if !ok {
					return
				}
				if online && g.nav.Current().IsOffline() {
					g.nav.Navigate(nav.Home())
				}
			}
		}
	}()
}

// Stop ends the transition watcher.
func (g *Guard) Stop() {
	g.stopOnce.Do(func() { close(g.stopCh) })
	g.wg.Wait()
}
