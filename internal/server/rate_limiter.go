// Package server throttles inbound envelope events per connection with a
// token bucket so a single client cannot flood the relay.
package server

import (
	"math"
	"sync"
	"time"
)

type eventLimiter struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	refill   float64 // tokens per second
	last     time.Time
}

// newEventLimiter sizes the bucket at burst events, refilled evenly over
// interval. Non-positive inputs fall back to one event per second.
func newEventLimiter(burst int, interval time.Duration) *eventLimiter {
	if burst <= 0 {
		burst = 1
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &eventLimiter{
		tokens:   float64(burst),
		capacity: float64(burst),
		refill:   float64(burst) / interval.Seconds(),
		last:     time.Now(),
	}
}

// allow consumes one token, reporting false when the bucket is empty. The
// caller discards the event; the connection stays open.
func (l *eventLimiter) allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if elapsed := now.Sub(l.last).Seconds(); elapsed > 0 {
		l.tokens = math.Min(l.capacity, l.tokens+elapsed*l.refill)
	}
	l.last = now

	if l.tokens < 1 {
		return false
	}
	l.tokens--
	return true
}
