package connectivity

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Probe cadence used when ProberConfig leaves it unset.
const (
	DefaultProbeInterval = 13 * time.Second
	DefaultProbeJitter   = 4 * time.Second
)

// ReachabilityChecker tests whether a URL answers at all.
type ReachabilityChecker interface {
	Reachable(ctx context.Context, url string) error
}

// ProberConfig configures a Prober.
type ProberConfig struct {
	Monitor  *Monitor
	Checker  ReachabilityChecker
	URL      string
	Interval time.Duration
	Jitter   time.Duration
	Timeout  time.Duration
}

// Prober is the platform signal source: it probes a well-known URL on a
// jittered cadence and feeds the result into the Monitor.
type Prober struct {
	monitor  *Monitor
	checker  ReachabilityChecker
	url      string
	interval time.Duration
	jitter   time.Duration
	timeout  time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewProber(cfg ProberConfig) *Prober {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultProbeInterval
	}
	if cfg.Jitter < 0 {
		cfg.Jitter = 0
	}
	return &Prober{
		monitor:  cfg.Monitor,
		checker:  cfg.Checker,
		url:      cfg.URL,
		interval: cfg.Interval,
		jitter:   cfg.Jitter,
		timeout:  cfg.Timeout,
		stopCh:   make(chan struct{}),
	}
}

// Start probes once, then keeps probing in the background until Stop.
func (p *Prober) Start() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		timer := time.NewTimer(0)
		defer timer.Stop()
		for {
			select {
			case <-p.stopCh:
				return
			case <-timer.C:
			}
			p.ProbeOnce()
			timer.Reset(p.nextDelay())
		}
	}()
}

// nextDelay is the interval plus a random share of the jitter.
func (p *Prober) nextDelay() time.Duration {
	if p.jitter <= 0 {
		return p.interval
	}
	return p.interval + rand.N(p.jitter)
}

// Stop signals the loop to exit and waits for it.
func (p *Prober) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
	p.wg.Wait()
}

// ProbeOnce runs a single probe and reports the observed state.
func (p *Prober) ProbeOnce() bool {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	go func() {
		select {
		case <-p.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	online := p.checker.Reachable(ctx, p.url) == nil
	select {
	case <-p.stopCh:
		// A probe cut short by Stop says nothing about the network.
		return p.monitor.Online()
	default:
	}
	p.monitor.Set(online)
	return online
}
