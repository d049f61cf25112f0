package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(rate Rate) (*Store, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewStore(rate, time.Minute)
	s.now = clock.Now
	return s, clock
}

func TestStore_Allow(t *testing.T) {
	s, _ := newTestStore(Rate{RequestsPerSecond: 0, Burst: 2})

	assert.True(t, s.Allow("login", "10.0.0.1"))
	assert.True(t, s.Allow("login", "10.0.0.1"))
	assert.False(t, s.Allow("login", "10.0.0.1"))

	// separate buckets per client and per category
	assert.True(t, s.Allow("login", "10.0.0.2"))
	assert.True(t, s.Allow("signup", "10.0.0.1"))
	assert.Equal(t, 3, s.Len())
}

func TestStore_SetRate(t *testing.T) {
	s, _ := newTestStore(Rate{RequestsPerSecond: 0, Burst: 5})
	s.SetRate("signup", Rate{RequestsPerSecond: 0, Burst: 1})

	assert.True(t, s.Allow("signup", "10.0.0.1"))
	assert.False(t, s.Allow("signup", "10.0.0.1"))

	for i := 0; i < 5; i++ {
		assert.True(t, s.Allow("other", "10.0.0.1"))
	}
	assert.False(t, s.Allow("other", "10.0.0.1"))
}

func TestStore_Cleanup(t *testing.T) {
	s, clock := newTestStore(Rate{RequestsPerSecond: 1, Burst: 1})

	s.Allow("login", "10.0.0.1")
	clock.Advance(30 * time.Second)
	s.Allow("login", "10.0.0.2")
	clock.Advance(45 * time.Second)

	assert.Equal(t, 1, s.Cleanup())
	assert.Equal(t, 1, s.Len())
}

func TestStore_RunStopsWithContext(t *testing.T) {
	s, _ := newTestStore(Rate{RequestsPerSecond: 1, Burst: 1})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
