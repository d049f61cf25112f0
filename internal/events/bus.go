// Package events provides the in-process dispatcher that connects user
// lifecycle operations to the handlers reacting to them.
//
// Publishers name an event and hand over a payload; every handler subscribed
// to that name runs synchronously on the publisher's goroutine, in the order
// it was subscribed. The first handler error stops the dispatch and is
// returned to the publisher unchanged.
package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Handler reacts to a published event. The payload type depends on the event name.
type Handler func(ctx context.Context, payload any) error

// Observer is notified after every publish. It is used for metrics.
type Observer interface {
	EventPublished(name string, handlers int, err error, duration time.Duration)
}

// Bus is a synchronous publish/subscribe dispatcher safe for concurrent use.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	observer Observer
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
	}
}

// SetObserver installs an observer notified after each publish.
func (b *Bus) SetObserver(o Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observer = o
}

// Subscribe registers handler for the named event.
func (b *Bus) Subscribe(name string, handler Handler) {
	if handler == nil {
		panic(fmt.Sprintf("events: nil handler for %q", name))
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], handler)

	log.Debug().Str("event", name).Int("handlers", len(b.handlers[name])).Msg("Event handler subscribed")
}

// HandlerCount returns the number of handlers subscribed to name.
func (b *Bus) HandlerCount(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[name])
}

// Publish runs every handler subscribed to name with payload.
// Publishing an event without subscribers is a no-op.
func (b *Bus) Publish(ctx context.Context, name string, payload any) error {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[name]))
	copy(handlers, b.handlers[name])
	observer := b.observer
	b.mu.RUnlock()

	start := time.Now()
	var err error
	for _, handler := range handlers {
		if err = ctx.Err(); err != nil {
			break
		}
		if err = handler(ctx, payload); err != nil {
			break
		}
	}

	if err != nil {
		log.Error().Err(err).Str("event", name).Msg("Event handler failed")
	} else {
		log.Debug().Str("event", name).Int("handlers", len(handlers)).Dur("duration", time.Since(start)).Msg("Event published")
	}

	if observer != nil {
		observer.EventPublished(name, len(handlers), err, time.Since(start))
	}

	return err
}
