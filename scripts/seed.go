// Package scripts seeds the database with the data the forum needs on a
// fresh install. Executed seeds are recorded in the seeds table so each
// runs once.
package scripts

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/Forum_Backend/internal/database"
	"github.com/yasinhessnawi1/Forum_Backend/internal/models"
)

// reservedUsernames are banned as literal usernames on a fresh install.
var reservedUsernames = []string{"admin", "administrator", "moderator", "staff", "system"}

const reservedUsernameMessage = "This username is reserved."

type seed struct {
	name string
	run  func(ctx context.Context, tx *sql.Tx) error
}

// Seeder handles database seeding.
type Seeder struct {
	db *database.Pool
}

// NewSeeder creates a new seeder.
func NewSeeder(db *database.Pool) *Seeder {
	return &Seeder{
		db: db,
	}
}

// SeedDatabase runs every seed that has not been executed yet.
func (s *Seeder) SeedDatabase(ctx context.Context) error {
	log.Info().Msg("Seeding database")
	startTime := time.Now()

	if err := s.createSeedsTable(ctx); err != nil {
		return fmt.Errorf("failed to create seeds table: %w", err)
	}

	executedSeeds, err := s.getExecutedSeeds(ctx)
	if err != nil {
		return fmt.Errorf("failed to get executed seeds: %w", err)
	}

	for _, sd := range s.seeds() {
		if executedSeeds[sd.name] {
			log.Debug().Str("seed", sd.name).Msg("Seed already executed")
			continue
		}

		log.Info().Str("seed", sd.name).Msg("Running seed")
		if err := s.runSeed(ctx, sd.name, sd.run); err != nil {
			return err
		}
	}

	log.Info().
		Dur("duration", time.Since(startTime)).
		Msg("Database seeding completed")

	return nil
}

func (s *Seeder) seeds() []seed {
	return []seed{
		{"reserved_usernames", s.seedReservedUsernames},
	}
}

func (s *Seeder) createSeedsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS seeds (
			name VARCHAR(255) PRIMARY KEY,
			executed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

func (s *Seeder) getExecutedSeeds(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM seeds`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close rows")
		}
	}()

	seeds := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		seeds[name] = true
	}

	return seeds, rows.Err()
}

// runSeed runs seedFunc and records it in one transaction.
func (s *Seeder) runSeed(ctx context.Context, name string, seedFunc func(ctx context.Context, tx *sql.Tx) error) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		if err := seedFunc(ctx, tx); err != nil {
			return fmt.Errorf("seed %s failed: %w", name, err)
		}

		if _, err := tx.ExecContext(ctx, s.db.Rebind(`INSERT INTO seeds (name) VALUES ($1)`), name); err != nil {
			return fmt.Errorf("failed to record seed: %w", err)
		}

		return nil
	})
}

// seedReservedUsernames adds a permanent username ban for each reserved
// name that has no ban yet.
func (s *Seeder) seedReservedUsernames(ctx context.Context, tx *sql.Tx) error {
	existsQuery := s.db.Rebind(`SELECT EXISTS(SELECT 1 FROM bans WHERE check_type = $1 AND banned_value = $2)`)
	insertQuery := s.db.Rebind(`
		INSERT INTO bans (check_type, banned_value, user_message, staff_message, expires_on, is_checked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`)

	now := time.Now().UTC()
	inserted := 0

	for _, name := range reservedUsernames {
		ban := models.NewBan(models.BanUsername, name, reservedUsernameMessage, "Reserved on install", nil)

		var exists bool
		if err := tx.QueryRowContext(ctx, existsQuery, ban.CheckType, ban.BannedValue).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check ban %s: %w", name, err)
		}
		if exists {
			continue
		}

		_, err := tx.ExecContext(ctx, insertQuery,
			ban.CheckType, ban.BannedValue, ban.UserMessage, ban.StaffMessage, ban.ExpiresOn, ban.IsChecked, now)
		if err != nil {
			return fmt.Errorf("failed to insert ban %s: %w", name, err)
		}
		inserted++
	}

	log.Info().
		Int("reserved_usernames", len(reservedUsernames)).
		Int("inserted_bans", inserted).
		Msg("Reserved usernames seeding completed")

	return nil
}
