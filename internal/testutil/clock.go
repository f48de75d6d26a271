package testutil

import (
	"sync"
	"time"
)

// DeterministicClock is a settable wall clock for tests.
//
// Each call to Now returns the current time and then advances it by step,
// so consecutive writes get distinct, increasing timestamps. A zero step
// freezes the clock until Advance or Set is called.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu    sync.Mutex
	start time.Time
	now   time.Time
	step  time.Duration
}

// NewDeterministicClock creates a clock that starts at start (in UTC).
func NewDeterministicClock(start time.Time, step time.Duration) *DeterministicClock {
	start = start.UTC()
	return &DeterministicClock{start: start, now: start, step: step}
}

// Now returns the current time and advances the clock by its step.
// Its signature matches time.Now so it can be injected directly.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Peek returns the current time without advancing.
func (c *DeterministicClock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *DeterministicClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to t.
func (c *DeterministicClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t.UTC()
}

// Reset returns the clock to its start time.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.start
}
