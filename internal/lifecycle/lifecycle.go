// Package lifecycle holds the event handlers that keep user data consistent
// over an account's life: exporting a user's data, syncing renames into the
// name history, and purging IP addresses past the retention window.
package lifecycle

import (
	"fmt"

	"github.com/yasinhessnawi1/Forum_Backend/internal/config"
	"github.com/yasinhessnawi1/Forum_Backend/internal/events"
	"github.com/yasinhessnawi1/Forum_Backend/internal/metrics"
	"github.com/yasinhessnawi1/Forum_Backend/internal/repository"
)

// Deps are the collaborators of the lifecycle handlers.
type Deps struct {
	Users       repository.UserRepository
	AuditTrails repository.AuditTrailRepository
	NameChanges repository.NameChangeRepository
	Avatars     repository.AvatarRepository

	ProfileFields       []config.ProfileFieldGroup
	IPStoreTimeDays     int
	AuditTrailChunkSize int

	Metrics *metrics.Collector
}

// Handlers implements the lifecycle event handlers.
type Handlers struct {
	deps Deps
}

// New creates the lifecycle handlers.
func New(deps Deps) *Handlers {
	if deps.AuditTrailChunkSize <= 0 {
		deps.AuditTrailChunkSize = 1
	}
	return &Handlers{deps: deps}
}

// Register subscribes every lifecycle handler to bus. Archive handlers run
// in the order details, profile fields, avatar, audit trail, name history.
func Register(bus *events.Bus, deps Deps) *Handlers {
	h := New(deps)

	bus.Subscribe(events.ArchiveUserData, h.ArchiveDetails)
	bus.Subscribe(events.ArchiveUserData, h.ArchiveProfileFields)
	bus.Subscribe(events.ArchiveUserData, h.ArchiveAvatar)
	bus.Subscribe(events.ArchiveUserData, h.ArchiveAuditTrail)
	bus.Subscribe(events.ArchiveUserData, h.ArchiveNameHistory)

	bus.Subscribe(events.UsernameChanged, h.SyncChangedByUsername)

	bus.Subscribe(events.RemoveOldIPs, h.RemoveOldRegistrationIPs)
	bus.Subscribe(events.RemoveOldIPs, h.RemoveOldAuditTrails)

	return h
}

func unexpectedPayload(event string, payload any) error {
	return fmt.Errorf("unexpected payload %T for event %s", payload, event)
}
