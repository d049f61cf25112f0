package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/yasinhessnawi1/Forum_Backend/internal/database"
	"github.com/yasinhessnawi1/Forum_Backend/internal/models"
	"github.com/yasinhessnawi1/Forum_Backend/internal/utils"
)

// BanRepository defines methods for managing ban records.
type BanRepository interface {
	// Create adds a new ban record and returns it with its ID populated.
	Create(ctx context.Context, ban *models.Ban) (*models.Ban, error)

	// GetByID retrieves a ban by its ID.
	GetByID(ctx context.Context, id int64) (*models.Ban, error)

	// List returns one page of bans, newest first, and the total number of bans.
	List(ctx context.Context, offset, limit int) ([]*models.Ban, int, error)

	// GetCheckedByTypes returns the checked bans of the given check types,
	// newest first. Expired bans are included; callers decide what to skip.
	GetCheckedByTypes(ctx context.Context, types []models.BanCheckType) ([]*models.Ban, error)

	// Delete removes a ban by ID.
	Delete(ctx context.Context, id int64) error

	// DeleteExpired removes bans that expired at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SQLBanRepository is the database/sql implementation of BanRepository.
type SQLBanRepository struct {
	db *database.Pool
}

// NewBanRepository creates a new BanRepository.
func NewBanRepository(db *database.Pool) BanRepository {
	return &SQLBanRepository{
		db: db,
	}
}

const banColumns = `ban_id, check_type, banned_value, user_message, staff_message, expires_on, is_checked, created_at`

// Create adds a new ban record.
func (r *SQLBanRepository) Create(ctx context.Context, ban *models.Ban) (*models.Ban, error) {
	startTime := time.Now()

	query := `
		INSERT INTO bans (check_type, banned_value, user_message, staff_message, expires_on, is_checked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	args := []interface{}{
		int(ban.CheckType),
		ban.BannedValue,
		ban.UserMessage,
		ban.StaffMessage,
		ban.ExpiresOn,
		ban.IsChecked,
		ban.CreatedAt,
	}

	id, err := r.db.InsertReturningID(ctx, r.db.ExecutorFor(ctx), query, "ban_id", args...)

	utils.LogDBQuery(query, args, time.Since(startTime), err)

	if err != nil {
		return nil, fmt.Errorf("failed to create ban: %w", err)
	}

	ban.ID = id
	return ban, nil
}

// GetByID retrieves a ban by its ID.
func (r *SQLBanRepository) GetByID(ctx context.Context, id int64) (*models.Ban, error) {
	query := `SELECT ` + banColumns + ` FROM bans WHERE ban_id = $1`

	ban, err := scanBan(r.db.ExecutorFor(ctx).QueryRowContext(ctx, r.db.Rebind(query), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("Ban", id)
		}
		return nil, fmt.Errorf("failed to get ban: %w", err)
	}

	return ban, nil
}

// List returns one page of bans and the total count.
func (r *SQLBanRepository) List(ctx context.Context, offset, limit int) ([]*models.Ban, int, error) {
	var total int
	if err := r.db.ExecutorFor(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM bans`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count bans: %w", err)
	}

	query := `SELECT ` + banColumns + ` FROM bans ORDER BY ban_id DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.ExecutorFor(ctx).QueryContext(ctx, r.db.Rebind(query), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query bans: %w", err)
	}
	defer rows.Close()

	bans, err := scanBans(rows)
	if err != nil {
		return nil, 0, err
	}

	return bans, total, nil
}

// GetCheckedByTypes returns checked bans of the given types, newest first.
func (r *SQLBanRepository) GetCheckedByTypes(ctx context.Context, types []models.BanCheckType) ([]*models.Ban, error) {
	if len(types) == 0 {
		return nil, nil
	}

	args := make([]interface{}, len(types))
	for i, t := range types {
		args[i] = int(t)
	}

	query := `SELECT ` + banColumns + ` FROM bans
		WHERE is_checked = TRUE AND check_type IN (` + database.Placeholders(1, len(types)) + `)
		ORDER BY ban_id DESC`

	startTime := time.Now()
	rows, err := r.db.ExecutorFor(ctx).QueryContext(ctx, r.db.Rebind(query), args...)

	utils.LogDBQuery(query, args, time.Since(startTime), err)

	if err != nil {
		return nil, fmt.Errorf("failed to query checked bans: %w", err)
	}
	defer rows.Close()

	return scanBans(rows)
}

// Delete removes a ban by ID.
func (r *SQLBanRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM bans WHERE ban_id = $1`

	result, err := r.db.ExecutorFor(ctx).ExecContext(ctx, r.db.Rebind(query), id)
	if err != nil {
		return fmt.Errorf("failed to delete ban: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return utils.NewNotFoundError("Ban", id)
	}

	return nil
}

// DeleteExpired removes all bans that expired at or before now.
func (r *SQLBanRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM bans WHERE expires_on IS NOT NULL AND expires_on <= $1`

	result, err := r.db.ExecutorFor(ctx).ExecContext(ctx, r.db.Rebind(query), now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired bans: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBan(row rowScanner) (*models.Ban, error) {
	ban := &models.Ban{}
	var checkType int
	if err := row.Scan(
		&ban.ID,
		&checkType,
		&ban.BannedValue,
		&ban.UserMessage,
		&ban.StaffMessage,
		&ban.ExpiresOn,
		&ban.IsChecked,
		&ban.CreatedAt,
	); err != nil {
		return nil, err
	}
	ban.CheckType = models.BanCheckType(checkType)
	return ban, nil
}

func scanBans(rows *sql.Rows) ([]*models.Ban, error) {
	var bans []*models.Ban
	for rows.Next() {
		ban, err := scanBan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ban row: %w", err)
		}
		bans = append(bans, ban)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ban rows: %w", err)
	}

	return bans, nil
}
