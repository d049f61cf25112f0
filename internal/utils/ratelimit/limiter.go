// Package ratelimit throttles requests per client using token buckets.
package ratelimit

import (
	"sync"
	"time"
)

// Rate controls how many requests per second are allowed
type Rate struct {
	// RequestsPerSecond defines how many tokens are added per second
	RequestsPerSecond float64

	// Burst defines the maximum size of the token bucket
	Burst int
}

// Limiter is a token bucket for a single client.
type Limiter struct {
	tokens   float64
	lastTime time.Time
	rate     float64
	capacity float64
	mu       sync.Mutex
}

// NewLimiter creates a full bucket for rate, starting at now.
func NewLimiter(rate Rate, now time.Time) *Limiter {
	return &Limiter{
		tokens:   float64(rate.Burst),
		lastTime: now,
		rate:     rate.RequestsPerSecond,
		capacity: float64(rate.Burst),
	}
}

// AllowAt refills the bucket up to now and consumes one token if available.
func (l *Limiter) AllowAt(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if elapsed := now.Sub(l.lastTime).Seconds(); elapsed > 0 {
		l.tokens += elapsed * l.rate
		if l.tokens > l.capacity {
			l.tokens = l.capacity
		}
		l.lastTime = now
	}

	if l.tokens < 1 {
		return false
	}

	l.tokens--
	return true
}

// idleSince reports whether the bucket was last used before t.
func (l *Limiter) idleSince(t time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastTime.Before(t)
}
