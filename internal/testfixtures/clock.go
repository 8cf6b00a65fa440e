package testfixtures

import (
	"sync"
	"time"
)

// Clock is a pinned time source for tests. Services receive it through
// their now func, so timer elapsed math and token expiry can be stepped
// explicitly instead of sleeping.
type Clock struct {
	mu sync.Mutex
	at time.Time
}

// NewClock pins the clock to start. A zero start pins it to ReferenceTime.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{at: start}
}

// Now reports the pinned instant. It never moves on its own; only Set and
// Advance change it.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at
}

// NowFunc adapts the clock to the now func the service constructors take.
// A nil clock degrades to time.Now.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set repins the clock to an absolute instant.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.at = t
	c.mu.Unlock()
}

// Advance moves the clock by d, which may be negative, and returns the
// resulting instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at = c.at.Add(d)
	return c.at
}
