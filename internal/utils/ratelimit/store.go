package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultCategory is used for categories without their own rate.
const DefaultCategory = "default"

// Store keeps one Limiter per client and category.
type Store struct {
	limiters map[string]*Limiter
	rates    map[string]Rate
	idleTTL  time.Duration
	now      func() time.Time
	mu       sync.Mutex
}

// NewStore creates a store using defaultRate for unknown categories.
// Limiters unused for idleTTL are dropped by Cleanup.
func NewStore(defaultRate Rate, idleTTL time.Duration) *Store {
	return &Store{
		limiters: make(map[string]*Limiter),
		rates:    map[string]Rate{DefaultCategory: defaultRate},
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

// SetRate sets the rate for a category.
func (s *Store) SetRate(category string, rate Rate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[category] = rate
}

// Allow reports whether clientID may make another request in category.
func (s *Store) Allow(category, clientID string) bool {
	now := s.now()
	key := category + "|" + clientID

	s.mu.Lock()
	limiter, ok := s.limiters[key]
	if !ok {
		rate, found := s.rates[category]
		if !found {
			rate = s.rates[DefaultCategory]
		}
		limiter = NewLimiter(rate, now)
		s.limiters[key] = limiter
	}
	s.mu.Unlock()

	return limiter.AllowAt(now)
}

// Cleanup drops limiters idle for longer than the store's TTL and returns
// how many were removed.
func (s *Store) Cleanup() int {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, limiter := range s.limiters {
		if limiter.idleSince(cutoff) {
			delete(s.limiters, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked limiters.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

// Run calls Cleanup every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Cleanup(); removed > 0 {
				log.Debug().Int("removed", removed).Msg("Idle rate limiters removed")
			}
		}
	}
}
