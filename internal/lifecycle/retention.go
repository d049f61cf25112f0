package lifecycle

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/Forum_Backend/internal/events"
)

// Cutoff returns the instant before which IP data is removed: now minus
// days whole days.
func Cutoff(now time.Time, days int) time.Time {
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}

func (h *Handlers) sweepCutoff(payload any) (time.Time, error) {
	switch p := payload.(type) {
	case events.RemoveOldIPsPayload:
		return Cutoff(p.Now, h.deps.IPStoreTimeDays), nil
	case *events.RemoveOldIPsPayload:
		if p != nil {
			return Cutoff(p.Now, h.deps.IPStoreTimeDays), nil
		}
	}
	return time.Time{}, unexpectedPayload(events.RemoveOldIPs, payload)
}

// RemoveOldRegistrationIPs clears the registration IP of users who joined
// at or before the cutoff.
func (h *Handlers) RemoveOldRegistrationIPs(ctx context.Context, payload any) error {
	cutoff, err := h.sweepCutoff(payload)
	if err != nil {
		return err
	}

	cleared, err := h.deps.Users.ClearJoinIPsBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	h.deps.Metrics.SweepRows("registration_ips", cleared)
	log.Info().Time("cutoff", cutoff).Int64("rows", cleared).Msg("Removed old registration IPs")

	return nil
}

// RemoveOldAuditTrails deletes audit trail rows created at or before the cutoff.
func (h *Handlers) RemoveOldAuditTrails(ctx context.Context, payload any) error {
	cutoff, err := h.sweepCutoff(payload)
	if err != nil {
		return err
	}

	deleted, err := h.deps.AuditTrails.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}

	h.deps.Metrics.SweepRows("audit_trails", deleted)
	log.Info().Time("cutoff", cutoff).Int64("rows", deleted).Msg("Removed old audit trails")

	return nil
}
