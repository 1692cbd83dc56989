package connectivity

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Resinat/launchview/internal/nav"
	"github.com/Resinat/launchview/internal/netutil"
)

type fakeNavigator struct {
	mu  sync.Mutex
	cur nav.Location
	log []string
}

func (f *fakeNavigator) Current() nav.Location {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cur
}

func (f *fakeNavigator) Navigate(loc nav.Location) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cur = loc
	f.log = append(f.log, loc.String())
}

func (f *fakeNavigator) navigations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.log...)
}

type fakeChecker struct {
	err   atomic.Pointer[error]
	calls atomic.Int64
}

func (f *fakeChecker) setErr(err error) { f.err.Store(&err) }

func (f *fakeChecker) Reachable(ctx context.Context, url string) error {
	f.calls.Add(1)
	if p := f.err.Load(); p != nil {
		return *p
	}
	return nil
}

const apiBase = "https://api.spacexdata.com/v5"

var errDial = errors.New("dial tcp: connection refused")

func TestMonitor_NotifiesOnTransitionsOnly(t *testing.T) {
	m := NewMonitor(true)
	ch, cancel := m.Subscribe()
	defer cancel()

	if m.Set(true) {
		t.Fatal("Set(true) while online should not change state")
	}
	if !m.Set(false) {
		t.Fatal("Set(false) should change state")
	}
	if m.Online() {
		t.Fatal("expected offline")
	}
	select {
	case v := <-ch:
		if v {
			t.Fatal("expected offline notification")
		}
	default:
		t.Fatal("expected a notification")
	}
	select {
	case v := <-ch:
		t.Fatalf("unexpected extra notification %v", v)
	default:
	}
}

func TestGuard_OfflineFailureRedirectsWithFrom(t *testing.T) {
	m := NewMonitor(false)
	n := &fakeNavigator{cur: nav.DetailLocation("abc")}
	g := NewGuard(m, n, apiBase)

	g.ObserveFailure(apiBase+"/rockets/r1", errDial)

	got := n.Current()
	if !got.IsOffline() {
		t.Fatalf("expected offline view, got %q", got.String())
	}
	if got.From().String() != "/items/abc" {
		t.Fatalf("from: got %q", got.From().String())
	}

	// Already on the offline view: no second navigation.
	g.ObserveFailure(apiBase+"/launchpads/p1", errDial)
	if len(n.navigations()) != 1 {
		t.Fatalf("navigations: got %v", n.navigations())
	}
}

func TestGuard_ZeroStatusWhileOnlineRedirects(t *testing.T) {
	m := NewMonitor(true)
	n := &fakeNavigator{cur: nav.Home()}
	g := NewGuard(m, n, apiBase)

	g.ObserveFailure(apiBase+"/rockets/r1", errDial)
	if !n.Current().IsOffline() {
		t.Fatalf("expected offline view, got %q", n.Current().String())
	}
}

func TestGuard_Ignores(t *testing.T) {
	cases := []struct {
		name   string
		online bool
		url    string
		err    error
	}{
		{"remote rejection while online", true, apiBase + "/rockets/r1", &netutil.HTTPStatusError{StatusCode: 500}},
		{"untracked host", false, "https://example.com/rockets/r1", errDial},
		{"launch list", false, apiBase + "/launches/query", errDial},
		{"launch detail", false, apiBase + "/launches/abc", errDial},
		{"favorites", false, apiBase + "/favorites", errDial},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := &fakeNavigator{cur: nav.Home()}
			g := NewGuard(NewMonitor(tc.online), n, apiBase)
			g.ObserveFailure(tc.url, tc.err)
			if len(n.navigations()) != 0 {
				t.Fatalf("unexpected navigation %v", n.navigations())
			}
		})
	}
}

func TestGuard_OnlineTransitionLeavesOfflineView(t *testing.T) {
	m := NewMonitor(false)
	n := &fakeNavigator{cur: nav.OfflineLocation(nav.Home())}
	g := NewGuard(m, n, apiBase)
	g.Start()
	defer g.Stop()

	m.Set(true)

	deadline := time.Now().Add(2 * time.Second)
	for n.Current().IsOffline() {
		if time.Now().After(deadline) {
			t.Fatal("guard did not leave the offline view")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if n.Current().String() != "/" {
		t.Fatalf("got %q, want /", n.Current().String())
	}
}

func TestProber_FeedsMonitor(t *testing.T) {
	m := NewMonitor(true)
	checker := &fakeChecker{}
	checker.setErr(errDial)
	p := NewProber(ProberConfig{Monitor: m, Checker: checker, URL: "https://probe.test/", Interval: 10 * time.Millisecond})

	if p.ProbeOnce() {
		t.Fatal("probe should fail")
	}
	if m.Online() {
		t.Fatal("monitor should be offline")
	}

	checker.setErr(nil)
	p.Start()
	deadline := time.Now().Add(2 * time.Second)
	for !m.Online() {
		if time.Now().After(deadline) {
			t.Fatal("prober never reported online")
		}
		time.Sleep(5 * time.Millisecond)
	}
	p.Stop()
	p.Stop()

	calls := checker.calls.Load()
	time.Sleep(30 * time.Millisecond)
	if checker.calls.Load() != calls {
		t.Fatal("prober kept running after Stop")
	}
}

func TestProber_DelayStaysWithinJitter(t *testing.T) {
	p := NewProber(ProberConfig{Interval: 10 * time.Millisecond, Jitter: 5 * time.Millisecond})
	for range 200 {
		if d := p.nextDelay(); d < 10*time.Millisecond || d >= 15*time.Millisecond {
			t.Fatalf("delay %v outside [10ms, 15ms)", d)
		}
	}

	p = NewProber(ProberConfig{Jitter: -time.Second})
	if d := p.nextDelay(); d != DefaultProbeInterval {
		t.Fatalf("default delay: got %v, want %v", d, DefaultProbeInterval)
	}
}
