package repository

import (
	"context"
	"fmt"

	"github.com/yasinhessnawi1/Forum_Backend/internal/database"
	"github.com/yasinhessnawi1/Forum_Backend/internal/models"
)

// AvatarRepository defines methods for the generated avatar images of users.
type AvatarRepository interface {
	Create(ctx context.Context, avatar *models.Avatar) error
	ListForUser(ctx context.Context, userID int64) ([]*models.Avatar, error)
}

// SQLAvatarRepository is the database/sql implementation of AvatarRepository.
type SQLAvatarRepository struct {
	db *database.Pool
}

// NewAvatarRepository creates a new AvatarRepository.
func NewAvatarRepository(db *database.Pool) AvatarRepository {
	return &SQLAvatarRepository{
		db: db,
	}
}

// Create stores an avatar image reference.
func (r *SQLAvatarRepository) Create(ctx context.Context, avatar *models.Avatar) error {
	query := `INSERT INTO avatars (user_id, size, image) VALUES ($1, $2, $3)`

	id, err := r.db.InsertReturningID(ctx, r.db.ExecutorFor(ctx), query, "avatar_id", avatar.UserID, avatar.Size, avatar.Image)
	if err != nil {
		return fmt.Errorf("failed to create avatar: %w", err)
	}

	avatar.ID = id
	return nil
}

// ListForUser returns the avatar images of a user in ID order.
func (r *SQLAvatarRepository) ListForUser(ctx context.Context, userID int64) ([]*models.Avatar, error) {
	query := `SELECT avatar_id, user_id, size, image FROM avatars WHERE user_id = $1 ORDER BY avatar_id`

	rows, err := r.db.ExecutorFor(ctx).QueryContext(ctx, r.db.Rebind(query), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query avatars: %w", err)
	}
	defer rows.Close()

	var avatars []*models.Avatar
	for rows.Next() {
		avatar := &models.Avatar{}
		if err := rows.Scan(&avatar.ID, &avatar.UserID, &avatar.Size, &avatar.Image); err != nil {
			return nil, fmt.Errorf("failed to scan avatar row: %w", err)
		}
		avatars = append(avatars, avatar)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating avatar rows: %w", err)
	}

	return avatars, nil
}
