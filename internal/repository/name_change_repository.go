package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yasinhessnawi1/Forum_Backend/internal/database"
	"github.com/yasinhessnawi1/Forum_Backend/internal/models"
	"github.com/yasinhessnawi1/Forum_Backend/internal/utils"
)

// NameChangeRepository defines methods for username history records.
type NameChangeRepository interface {
	Create(ctx context.Context, change *models.NameChange) error

	// ListForUser returns the renames of a user in the order they happened.
	ListForUser(ctx context.Context, userID int64) ([]*models.NameChange, error)

	// UpdateChangedByUsername rewrites the denormalized actor name on every
	// change made by changedByID and returns the number of rows updated.
	UpdateChangedByUsername(ctx context.Context, changedByID int64, username string) (int64, error)
}

// SQLNameChangeRepository is the database/sql implementation of NameChangeRepository.
type SQLNameChangeRepository struct {
	db *database.Pool
}

// NewNameChangeRepository creates a new NameChangeRepository.
func NewNameChangeRepository(db *database.Pool) NameChangeRepository {
	return &SQLNameChangeRepository{
		db: db,
	}
}

// Create stores a username change.
func (r *SQLNameChangeRepository) Create(ctx context.Context, change *models.NameChange) error {
	query := `
		INSERT INTO name_changes (user_id, changed_by_id, changed_by_username, changed_on, new_username, old_username)
		VALUES ($1, $2, $3, $4, $5, $6)`

	id, err := r.db.InsertReturningID(ctx, r.db.ExecutorFor(ctx), query, "name_change_id",
		change.UserID,
		change.ChangedByID,
		change.ChangedByUsername,
		change.ChangedOn,
		change.NewUsername,
		change.OldUsername,
	)
	if err != nil {
		return fmt.Errorf("failed to create name change: %w", err)
	}

	change.ID = id
	return nil
}

// ListForUser returns a user's rename history in ID order.
func (r *SQLNameChangeRepository) ListForUser(ctx context.Context, userID int64) ([]*models.NameChange, error) {
	query := `
		SELECT name_change_id, user_id, changed_by_id, changed_by_username, changed_on, new_username, old_username
		FROM name_changes
		WHERE user_id = $1
		ORDER BY name_change_id`

	rows, err := r.db.ExecutorFor(ctx).QueryContext(ctx, r.db.Rebind(query), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query name changes: %w", err)
	}
	defer rows.Close()

	var changes []*models.NameChange
	for rows.Next() {
		change := &models.NameChange{}
		if err := rows.Scan(
			&change.ID,
			&change.UserID,
			&change.ChangedByID,
			&change.ChangedByUsername,
			&change.ChangedOn,
			&change.NewUsername,
			&change.OldUsername,
		); err != nil {
			return nil, fmt.Errorf("failed to scan name change row: %w", err)
		}
		changes = append(changes, change)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating name change rows: %w", err)
	}

	return changes, nil
}

// UpdateChangedByUsername syncs the actor name on changes made by changedByID.
func (r *SQLNameChangeRepository) UpdateChangedByUsername(ctx context.Context, changedByID int64, username string) (int64, error) {
	startTime := time.Now()

	query := `UPDATE name_changes SET changed_by_username = $1 WHERE changed_by_id = $2`
	args := []interface{}{username, changedByID}

	result, err := r.db.ExecutorFor(ctx).ExecContext(ctx, r.db.Rebind(query), args...)

	utils.LogDBQuery(query, args, time.Since(startTime), err)

	if err != nil {
		return 0, fmt.Errorf("failed to update changed_by_username: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
