package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/Forum_Backend/internal/constants"
	"github.com/yasinhessnawi1/Forum_Backend/internal/events"
)

// RetentionService triggers the purge of IP addresses past the retention window
type RetentionService struct {
	events EventPublisher
	now    Clock
}

// NewRetentionService creates a new RetentionService
func NewRetentionService(publisher EventPublisher) *RetentionService {
	return &RetentionService{
		events: publisher,
		now:    time.Now,
	}
}

// RemoveOldIPs publishes RemoveOldIPs with the current time as the sweep instant.
func (s *RetentionService) RemoveOldIPs(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, constants.RemoveOldIPsTimeout)
	defer cancel()

	now := s.now()
	if err := s.events.Publish(ctx, events.RemoveOldIPs, events.RemoveOldIPsPayload{Now: now}); err != nil {
		return err
	}

	log.Info().Time("now", now).Msg("Old IP addresses removed")
	return nil
}
