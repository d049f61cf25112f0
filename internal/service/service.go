// Package service implements the business operations of the forum backend on
// top of the repositories and the event bus.
package service

import (
	"context"
	"time"
)

// EventPublisher publishes named events to their subscribers.
// *events.Bus satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, name string, payload any) error
}

// Clock returns the current time. Services default to time.Now.
type Clock func() time.Time

// Transactor runs fn in a database transaction. Repository calls made with
// the context passed to fn join it. *database.Pool satisfies it.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
