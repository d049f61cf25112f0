package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/Forum_Backend/internal/archive"
	"github.com/yasinhessnawi1/Forum_Backend/internal/constants"
	"github.com/yasinhessnawi1/Forum_Backend/internal/events"
	"github.com/yasinhessnawi1/Forum_Backend/internal/metrics"
	"github.com/yasinhessnawi1/Forum_Backend/internal/repository"
)

// ArchiveService builds the data export of a user
type ArchiveService struct {
	userRepo repository.UserRepository
	events   EventPublisher
	cfg      archive.Config
	metrics  *metrics.Collector
	now      Clock
}

// NewArchiveService creates a new ArchiveService
func NewArchiveService(
	userRepo repository.UserRepository,
	publisher EventPublisher,
	cfg archive.Config,
	collector *metrics.Collector,
) *ArchiveService {
	return &ArchiveService{
		userRepo: userRepo,
		events:   publisher,
		cfg:      cfg,
		metrics:  collector,
		now:      time.Now,
	}
}

// ArchiveUser publishes ArchiveUserData for the user with a fresh archive
// and returns the path of the finished zip file. When a handler fails the
// partial archive is discarded and the handler's error is returned.
func (s *ArchiveService) ArchiveUser(ctx context.Context, userID int64) (path string, err error) {
	defer func() { s.metrics.Archive(err) }()

	ctx, cancel := context.WithTimeout(ctx, constants.ArchiveTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	dataArchive, err := archive.New(s.cfg, user.Username)
	if err != nil {
		return "", err
	}

	if err := s.events.Publish(ctx, events.ArchiveUserData, events.ArchiveUserDataPayload{
		User:     user,
		Archiver: dataArchive,
	}); err != nil {
		if discardErr := dataArchive.Discard(); discardErr != nil {
			log.Warn().Err(discardErr).Int64("user_id", userID).Msg("Failed to discard data archive")
		}
		return "", err
	}

	path, err = dataArchive.Finalize()
	if err != nil {
		return "", err
	}

	log.Info().Int64("user_id", userID).Str("file", path).Msg("User data archived")
	return path, nil
}

// RemoveArchive deletes a zip file returned by ArchiveUser once it has been
// delivered.
func (s *ArchiveService) RemoveArchive(path string) error {
	return archive.Remove(path)
}

// PruneArchives removes finished archives older than the configured max age.
// It catches zip files whose download never completed.
func (s *ArchiveService) PruneArchives(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.cfg.MaxAge <= 0 {
		return nil
	}

	removed, err := archive.Prune(s.cfg.OutputDir, s.now().Add(-s.cfg.MaxAge))
	if err != nil {
		return err
	}

	if removed > 0 {
		log.Info().Int("count", removed).Msg("Pruned expired data archives")
	}
	return nil
}
