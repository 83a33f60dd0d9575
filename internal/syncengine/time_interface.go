package syncengine

import (
	"sync"
	"time"
)

// TimeProvider supplies the clock for cycle timing and polling.
type TimeProvider interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker is the part of time.Ticker the polling loop uses.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// RealTimeProvider implements TimeProvider with the time package.
type RealTimeProvider struct{}

// NewTicker creates a new ticker.
func (RealTimeProvider) NewTicker(d time.Duration) Ticker {
	return &RealTicker{ticker: time.NewTicker(d)}
}

// Now returns the current time.
func (RealTimeProvider) Now() time.Time {
	return time.Now()
}

// RealTicker wraps time.Ticker.
type RealTicker struct {
	ticker *time.Ticker
}

// C returns the ticker's channel.
func (r *RealTicker) C() <-chan time.Time {
	return r.ticker.C
}

// Stop stops the ticker.
func (r *RealTicker) Stop() {
	r.ticker.Stop()
}

// ManualClock is a TimeProvider whose tickers only fire on Tick.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*ManualTicker
}

// NewManualClock returns a clock stopped at now.
func NewManualClock(now time.Time) *ManualClock {
	return &ManualClock{now: now}
}

// Now returns the clock's current time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

// NewTicker returns a ticker driven by Tick.
func (c *ManualClock) NewTicker(time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()

	ticker := &ManualTicker{ch: make(chan time.Time, 1)}
	c.tickers = append(c.tickers, ticker)

	return ticker
}

// Tick advances the clock by d and fires every live ticker.
func (c *ManualClock) Tick(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	tickers := append([]*ManualTicker(nil), c.tickers...)
	c.mu.Unlock()

	for _, ticker := range tickers {
		ticker.fire(now)
	}
}

// ManualTicker is a Ticker owned by a ManualClock.
type ManualTicker struct {
	mu      sync.Mutex
	ch      chan time.Time
	stopped bool
}

// C returns the ticker's channel.
func (t *ManualTicker) C() <-chan time.Time {
	return t.ch
}

// Stop stops delivering ticks.
func (t *ManualTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopped = true
}

// fire delivers a tick, dropping it if one is pending, as time.Ticker does.
func (t *ManualTicker) fire(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}

	select {
	case t.ch <- now:
	default:
	}
}
