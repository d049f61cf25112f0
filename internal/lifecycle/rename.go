package lifecycle

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/Forum_Backend/internal/events"
)

// SyncChangedByUsername rewrites the denormalized actor name on every name
// change the renamed user performed.
func (h *Handlers) SyncChangedByUsername(ctx context.Context, payload any) error {
	var p events.UsernameChangedPayload
	switch v := payload.(type) {
	case events.UsernameChangedPayload:
		p = v
	case *events.UsernameChangedPayload:
		if v != nil {
			p = *v
		}
	}
	if p.User == nil {
		return unexpectedPayload(events.UsernameChanged, payload)
	}

	updated, err := h.deps.NameChanges.UpdateChangedByUsername(ctx, p.User.ID, p.User.Username)
	if err != nil {
		return err
	}

	log.Debug().
		Int64("user_id", p.User.ID).
		Int64("rows", updated).
		Msg("Synced changed_by_username")

	return nil
}
