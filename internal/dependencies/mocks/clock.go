package mocks

import (
	"sync"
	"time"

	"github.com/mcoot/arenagame-go/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing.
// Tickers created from it only fire when the clock is advanced past
// their next deadline, or when fired explicitly.
type MockClock struct {
	mu          sync.Mutex
	CurrentTime time.Time
	tickers     []*MockTicker
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{CurrentTime: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.CurrentTime
}

// Advance moves the clock forward by the given duration, firing any
// ticker whose deadline has passed
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.CurrentTime = c.CurrentTime.Add(d)
	now := c.CurrentTime
	tickers := append([]*MockTicker(nil), c.tickers...)
	c.mu.Unlock()

	for _, t := range tickers {
		t.fireIfDue(now)
	}
}

// Set sets the clock to the given time
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CurrentTime = t
}

// NewTicker registers a manually driven ticker
func (c *MockClock) NewTicker(d time.Duration) clock.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &MockTicker{
		ch:     make(chan time.Time, 1),
		period: d,
		next:   c.CurrentTime.Add(d),
	}
	c.tickers = append(c.tickers, t)
	return t
}

// TickerCount returns how many tickers have been created
func (c *MockClock) TickerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

// Ticker returns the i-th ticker created from this clock
func (c *MockClock) Ticker(i int) *MockTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tickers[i]
}

// MockTicker is a ticker driven by MockClock
type MockTicker struct {
	mu      sync.Mutex
	ch      chan time.Time
	period  time.Duration
	next    time.Time
	stopped bool
}

// C returns the tick channel
func (t *MockTicker) C() <-chan time.Time {
	return t.ch
}

// Stop prevents further ticks
func (t *MockTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

// Fire delivers a tick immediately. A tick that is still pending is
// not duplicated, matching time.Ticker's dropping behaviour.
func (t *MockTicker) Fire(at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	select {
	case t.ch <- at:
	default:
	}
}

func (t *MockTicker) fireIfDue(now time.Time) {
	t.mu.Lock()
	due := !t.stopped && !now.Before(t.next)
	if due {
		for !now.Before(t.next) {
			t.next = t.next.Add(t.period)
		}
	}
	t.mu.Unlock()
	if due {
		t.Fire(now)
	}
}
