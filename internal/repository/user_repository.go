// Package repository provides data access interfaces and their SQL implementations.
// Queries are written with $n placeholders and rebound for MySQL by database.Pool.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/Forum_Backend/internal/database"
	"github.com/yasinhessnawi1/Forum_Backend/internal/models"
	"github.com/yasinhessnawi1/Forum_Backend/internal/utils"
)

// UserRepository defines methods for interacting with user data
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUsername(ctx context.Context, id int64, username string) error
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ClearJoinIPsBefore nulls joined_from_ip of users joined at or before cutoff.
	// It returns the number of users updated.
	ClearJoinIPsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// SQLUserRepository is the database/sql implementation of UserRepository
type SQLUserRepository struct {
	db *database.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *database.Pool) UserRepository {
	return &SQLUserRepository{
		db: db,
	}
}

const userColumns = `user_id, username, email, password_hash, salt, is_staff, joined_on, joined_from_ip,
		profile_fields, avatar_tmp, avatar_src, updated_at`

// Create adds a new user to the database
func (r *SQLUserRepository) Create(ctx context.Context, user *models.User) error {
	startTime := time.Now()

	if user.JoinedOn.IsZero() {
		user.JoinedOn = startTime
	}
	user.UpdatedAt = startTime

	profileFields, err := user.ProfileFields.MarshalText()
	if err != nil {
		return fmt.Errorf("failed to encode profile fields: %w", err)
	}

	query := `
		INSERT INTO users (username, email, password_hash, salt, is_staff, joined_on, joined_from_ip,
			profile_fields, avatar_tmp, avatar_src, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	args := []interface{}{
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Salt,
		user.IsStaff,
		user.JoinedOn,
		user.JoinedFromIP,
		string(profileFields),
		user.AvatarTmp,
		user.AvatarSrc,
		user.UpdatedAt,
	}

	user.ID, err = r.db.InsertReturningID(ctx, r.db.ExecutorFor(ctx), query, "user_id", args...)

	utils.LogDBQuery(query, args, time.Since(startTime), err)

	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			if violates(constraint, "username") {
				return utils.NewDuplicateError("User", "username", user.Username)
			}
			if violates(constraint, "email") {
				return utils.NewDuplicateError("User", "email", user.Email)
			}
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Str("email", utils.MaskEmail(user.Email)).
		Msg("User created")

	return nil
}

// GetByID retrieves a user by ID
func (r *SQLUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`

	user, err := r.getOne(ctx, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("User", id)
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

// GetByUsername retrieves a user by username, ignoring case
func (r *SQLUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(username) = LOWER($1)`

	user, err := r.getOne(ctx, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("User", fmt.Sprintf("username=%s", username))
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email, ignoring case
func (r *SQLUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`

	user, err := r.getOne(ctx, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("User", fmt.Sprintf("email=%s", utils.MaskEmail(email)))
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (r *SQLUserRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	startTime := time.Now()

	user := &models.User{}
	var profileFields sql.NullString
	err := r.db.ExecutorFor(ctx).QueryRowContext(ctx, r.db.Rebind(query), arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Salt,
		&user.IsStaff,
		&user.JoinedOn,
		&user.JoinedFromIP,
		&profileFields,
		&user.AvatarTmp,
		&user.AvatarSrc,
		&user.UpdatedAt,
	)

	utils.LogDBQuery(query, []interface{}{arg}, time.Since(startTime), err)

	if err != nil {
		return nil, err
	}

	if err := user.ProfileFields.UnmarshalText([]byte(profileFields.String)); err != nil {
		return nil, fmt.Errorf("failed to decode profile fields: %w", err)
	}

	return user, nil
}

// UpdateUsername changes the username of a user
func (r *SQLUserRepository) UpdateUsername(ctx context.Context, id int64, username string) error {
	startTime := time.Now()

	query := `UPDATE users SET username = $1, updated_at = $2 WHERE user_id = $3`
	args := []interface{}{username, startTime, id}

	result, err := r.db.ExecutorFor(ctx).ExecContext(ctx, r.db.Rebind(query), args...)

	utils.LogDBQuery(query, args, time.Since(startTime), err)

	if err != nil {
		if constraint, ok := uniqueViolation(err); ok && violates(constraint, "username") {
			return utils.NewDuplicateError("User", "username", username)
		}
		return fmt.Errorf("failed to update username: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return utils.NewNotFoundError("User", id)
	}

	return nil
}

// ExistsByUsername checks if a username is taken, ignoring case
func (r *SQLUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(username) = LOWER($1))`, username)
}

// ExistsByEmail checks if an email is registered, ignoring case
func (r *SQLUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`, email)
}

func (r *SQLUserRepository) exists(ctx context.Context, query string, arg string) (bool, error) {
	startTime := time.Now()

	var exists bool
	err := r.db.ExecutorFor(ctx).QueryRowContext(ctx, r.db.Rebind(query), arg).Scan(&exists)

	utils.LogDBQuery(query, []interface{}{arg}, time.Since(startTime), err)

	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}

	return exists, nil
}

// ClearJoinIPsBefore nulls registration IPs of users that joined at or before cutoff.
func (r *SQLUserRepository) ClearJoinIPsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	startTime := time.Now()

	query := `UPDATE users SET joined_from_ip = NULL WHERE joined_on <= $1 AND joined_from_ip IS NOT NULL`

	result, err := r.db.ExecutorFor(ctx).ExecContext(ctx, r.db.Rebind(query), cutoff)

	utils.LogDBQuery(query, []interface{}{cutoff}, time.Since(startTime), err)

	if err != nil {
		return 0, fmt.Errorf("failed to clear old join IPs: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
