package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/Forum_Backend/internal/events"
	"github.com/yasinhessnawi1/Forum_Backend/internal/models"
	"github.com/yasinhessnawi1/Forum_Backend/internal/repository"
	"github.com/yasinhessnawi1/Forum_Backend/internal/utils"
)

// BanChecker rejects banned usernames, emails and IP addresses.
type BanChecker interface {
	CheckBan(ctx context.Context, query models.BanQuery) error
}

// UserService handles user-related operations
type UserService struct {
	userRepo       repository.UserRepository
	nameChangeRepo repository.NameChangeRepository
	bans           BanChecker
	events         EventPublisher
	tx             Transactor
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo repository.UserRepository,
	nameChangeRepo repository.NameChangeRepository,
	bans BanChecker,
	publisher EventPublisher,
	tx Transactor,
) *UserService {
	return &UserService{
		userRepo:       userRepo,
		nameChangeRepo: nameChangeRepo,
		bans:           bans,
		events:         publisher,
		tx:             tx,
	}
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Sanitize(), nil
}

// ChangeUsername renames the user and records the change in the name history.
// actor is the user performing the rename; it is nil for system renames.
// The update, the history entry and the UsernameChanged publish run in one
// transaction, so a failing subscriber leaves the user under the old name.
func (s *UserService) ChangeUsername(ctx context.Context, userID int64, newUsername string, actor *models.User) (*models.User, error) {
	newUsername = strings.TrimSpace(newUsername)
	if err := utils.ValidateUsername(newUsername); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	oldUsername := user.Username
	if newUsername == oldUsername {
		return nil, utils.NewValidationError("username", "New username is the same as the current one")
	}

	if err := s.bans.CheckBan(ctx, models.BanQuery{Username: newUsername}); err != nil {
		return nil, err
	}

	// a change of letter case keeps the same (case-insensitive) name
	if !strings.EqualFold(newUsername, oldUsername) {
		exists, err := s.userRepo.ExistsByUsername(ctx, newUsername)
		if err != nil {
			return nil, fmt.Errorf("failed to check username existence: %w", err)
		}
		if exists {
			return nil, utils.NewDuplicateError("User", "username", newUsername)
		}
	}

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.userRepo.UpdateUsername(ctx, user.ID, newUsername); err != nil {
			return err
		}
		user.Username = newUsername

		if actor != nil && actor.ID == user.ID {
			actor = user
		}

		change := models.NewNameChange(user.ID, oldUsername, newUsername, actor)
		if err := s.nameChangeRepo.Create(ctx, change); err != nil {
			return err
		}

		return s.events.Publish(ctx, events.UsernameChanged, events.UsernameChangedPayload{
			User:        user,
			OldUsername: oldUsername,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("user_id", user.ID).
		Str("old_username", oldUsername).
		Str("new_username", newUsername).
		Msg("Username changed")

	return user.Sanitize(), nil
}

// GetNameHistory returns the renames of a user in the order they happened
func (s *UserService) GetNameHistory(ctx context.Context, userID int64) ([]*models.NameChange, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	changes, err := s.nameChangeRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if changes == nil {
		changes = []*models.NameChange{}
	}
	return changes, nil
}
