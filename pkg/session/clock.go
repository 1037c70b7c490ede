package session

import (
	"context"
	"sync"
	"time"
)

// DefaultFrameInterval matches a ~33 fps display loop
const DefaultFrameInterval = 30 * time.Millisecond

// Clock ticks at a fixed wall-clock interval and notifies registered
// listeners with the tick time. Ticks missed while listeners run are dropped.
type Clock struct {
	mu       sync.RWMutex
	Interval time.Duration

	// ticks counts delivered ticks
	ticks uint64
	last  time.Time

	listeners []func(time.Time)
}

// NewClock constructs a clock. A non-positive interval uses DefaultFrameInterval.
func NewClock(interval time.Duration) *Clock {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Clock{Interval: interval}
}

// AddListener registers a callback invoked on every tick.
func (c *Clock) AddListener(fn func(time.Time)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Ticks returns the number of ticks delivered so far
func (c *Clock) Ticks() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ticks
}

// Last returns the time of the most recent tick
func (c *Clock) Last() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

// Start runs the clock in a separate goroutine until ctx is cancelled.
// It returns a channel that is closed when the clock stops.
func (c *Clock) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		ticker := time.NewTicker(c.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				c.mu.Lock()
				c.ticks++
				c.last = now
				listeners := c.listeners
				c.mu.Unlock()

				for _, fn := range listeners {
					fn(now)
				}
			}
		}
	}()
	return done
}
