package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yasinhessnawi1/Forum_Backend/internal/database"
	"github.com/yasinhessnawi1/Forum_Backend/internal/models"
	"github.com/yasinhessnawi1/Forum_Backend/internal/utils"
)

// AuditTrailRepository defines methods for the per-user IP audit trail.
type AuditTrailRepository interface {
	Create(ctx context.Context, trail *models.AuditTrail) error

	// ListForUser returns up to limit rows of the user with IDs greater than
	// afterID, in ID order. Passing the last ID back pages through all rows.
	ListForUser(ctx context.Context, userID, afterID int64, limit int) ([]*models.AuditTrail, error)

	// DeleteOlderThan deletes rows created at or before cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// SQLAuditTrailRepository is the database/sql implementation of AuditTrailRepository.
type SQLAuditTrailRepository struct {
	db *database.Pool
}

// NewAuditTrailRepository creates a new AuditTrailRepository.
func NewAuditTrailRepository(db *database.Pool) AuditTrailRepository {
	return &SQLAuditTrailRepository{
		db: db,
	}
}

// Create stores an audit trail row.
func (r *SQLAuditTrailRepository) Create(ctx context.Context, trail *models.AuditTrail) error {
	query := `INSERT INTO audit_trails (user_id, created_at, ip_address) VALUES ($1, $2, $3)`

	id, err := r.db.InsertReturningID(ctx, r.db.ExecutorFor(ctx), query, "audit_trail_id", trail.UserID, trail.CreatedAt, trail.IPAddress)
	if err != nil {
		return fmt.Errorf("failed to create audit trail: %w", err)
	}

	trail.ID = id
	return nil
}

// ListForUser returns one chunk of a user's audit trail.
func (r *SQLAuditTrailRepository) ListForUser(ctx context.Context, userID, afterID int64, limit int) ([]*models.AuditTrail, error) {
	query := `
		SELECT audit_trail_id, user_id, created_at, ip_address
		FROM audit_trails
		WHERE user_id = $1 AND audit_trail_id > $2
		ORDER BY audit_trail_id
		LIMIT $3`

	rows, err := r.db.ExecutorFor(ctx).QueryContext(ctx, r.db.Rebind(query), userID, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit trails: %w", err)
	}
	defer rows.Close()

	var trails []*models.AuditTrail
	for rows.Next() {
		trail := &models.AuditTrail{}
		if err := rows.Scan(&trail.ID, &trail.UserID, &trail.CreatedAt, &trail.IPAddress); err != nil {
			return nil, fmt.Errorf("failed to scan audit trail row: %w", err)
		}
		trails = append(trails, trail)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit trail rows: %w", err)
	}

	return trails, nil
}

// DeleteOlderThan deletes audit rows created at or before cutoff.
func (r *SQLAuditTrailRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	startTime := time.Now()

	query := `DELETE FROM audit_trails WHERE created_at <= $1`

	result, err := r.db.ExecutorFor(ctx).ExecContext(ctx, r.db.Rebind(query), cutoff)

	utils.LogDBQuery(query, []interface{}{cutoff}, time.Since(startTime), err)

	if err != nil {
		return 0, fmt.Errorf("failed to delete old audit trails: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
