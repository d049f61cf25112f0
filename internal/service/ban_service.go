package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/Forum_Backend/internal/metrics"
	"github.com/yasinhessnawi1/Forum_Backend/internal/models"
	"github.com/yasinhessnawi1/Forum_Backend/internal/repository"
	"github.com/yasinhessnawi1/Forum_Backend/internal/utils"
)

// BanService handles ban lookups and ban management
type BanService struct {
	banRepo repository.BanRepository
	metrics *metrics.Collector
	now     Clock
}

// NewBanService creates a new BanService
func NewBanService(banRepo repository.BanRepository, collector *metrics.Collector) *BanService {
	return &BanService{
		banRepo: banRepo,
		metrics: collector,
		now:     time.Now,
	}
}

// FindBan returns the first active ban matching the query.
//
// Username bans are tried first, then email bans, then IP bans; within a
// check type the newest ban wins. Empty query fields are not tested and
// expired bans are skipped. When nothing matches the returned error
// satisfies errors.Is(err, models.ErrBanNotFound).
func (s *BanService) FindBan(ctx context.Context, query models.BanQuery) (*models.Ban, error) {
	types := query.CheckTypes()
	if len(types) == 0 {
		s.metrics.BanLookup("miss")
		return nil, models.ErrBanNotFound
	}

	bans, err := s.banRepo.GetCheckedByTypes(ctx, types)
	if err != nil {
		s.metrics.BanLookup("error")
		return nil, fmt.Errorf("failed to load bans: %w", err)
	}

	now := s.now()
	for _, checkType := range types {
		value := query.Value(checkType)
		for _, ban := range bans {
			if ban.CheckType != checkType || ban.IsExpired(now) {
				continue
			}
			if ban.TestValue(value) {
				s.metrics.BanLookup("hit")
				utils.LogBanHit(ban.ID, checkType.String(), value)
				return ban, nil
			}
		}
	}

	s.metrics.BanLookup("miss")
	return nil, models.ErrBanNotFound
}

// CheckBan returns a banned error carrying the ban's user message when the
// query matches an active ban, and nil otherwise.
func (s *BanService) CheckBan(ctx context.Context, query models.BanQuery) error {
	ban, err := s.FindBan(ctx, query)
	if errors.Is(err, models.ErrBanNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return BannedError(ban)
}

// BannedError converts a ban into the API error shown to the banned user.
func BannedError(ban *models.Ban) *utils.AppError {
	details := map[string]any{
		"check_type": ban.CheckType.String(),
	}
	if ban.ExpiresOn != nil {
		details["expires_on"] = ban.ExpiresOn.UTC().Format(time.RFC3339)
	}
	return utils.NewBannedError(ban.UserMessage, details)
}

// CreateBan validates and stores a new ban
func (s *BanService) CreateBan(ctx context.Context, req *models.BanCreate) (*models.Ban, error) {
	if !req.CheckType.Valid() {
		return nil, utils.NewValidationError("check_type", "Check type must be 0 (username), 1 (email) or 2 (ip)")
	}
	if req.ExpiresOn != nil && !req.ExpiresOn.After(s.now()) {
		return nil, utils.NewValidationError("expires_on", "Expiration date must be in the future")
	}

	ban := models.NewBan(req.CheckType, req.BannedValue, req.UserMessage, req.StaffMessage, req.ExpiresOn)
	if ban.BannedValue == "" {
		return nil, utils.NewValidationError("banned_value", "Banned value is required")
	}

	created, err := s.banRepo.Create(ctx, ban)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("ban_id", created.ID).
		Str("check_type", created.CheckType.String()).
		Msg("Ban created")

	return created, nil
}

// GetBan retrieves a ban by ID
func (s *BanService) GetBan(ctx context.Context, id int64) (*models.Ban, error) {
	return s.banRepo.GetByID(ctx, id)
}

// ListBans returns one page of bans and the total number of bans
func (s *BanService) ListBans(ctx context.Context, params utils.PaginationParams) ([]*models.Ban, int, error) {
	return s.banRepo.List(ctx, params.Offset(), params.PageSize)
}

// DeleteBan removes a ban
func (s *BanService) DeleteBan(ctx context.Context, id int64) error {
	if err := s.banRepo.Delete(ctx, id); err != nil {
		return err
	}

	log.Info().Int64("ban_id", id).Msg("Ban deleted")
	return nil
}

// DeleteExpiredBans removes bans whose expiration date has passed
func (s *BanService) DeleteExpiredBans(ctx context.Context) (int64, error) {
	deleted, err := s.banRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		log.Info().Int64("count", deleted).Msg("Expired bans deleted")
	}
	return deleted, nil
}
