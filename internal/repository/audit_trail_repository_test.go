package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasinhessnawi1/Forum_Backend/internal/models"
)

func TestAuditTrailRepository_Create(t *testing.T) {
	pool, mock, cleanup := setupDBMock(t)
	defer cleanup()
	repo := NewAuditTrailRepository(pool)

	trail := models.NewAuditTrail(7, "198.51.100.4")

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO audit_trails (user_id, created_at, ip_address) VALUES ($1, $2, $3) RETURNING audit_trail_id")).
		WithArgs(int64(7), trail.CreatedAt, "198.51.100.4").
		WillReturnRows(sqlmock.NewRows([]string{"audit_trail_id"}).AddRow(int64(31)))

	err := repo.Create(context.Background(), trail)

	assert.NoError(t, err)
	assert.Equal(t, int64(31), trail.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditTrailRepository_ListForUser(t *testing.T) {
	t.Run("Returns one chunk", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewAuditTrailRepository(pool)

		first := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $1 AND audit_trail_id > $2")).
			WithArgs(int64(7), int64(10), 2).
			WillReturnRows(sqlmock.NewRows([]string{"audit_trail_id", "user_id", "created_at", "ip_address"}).
				AddRow(11, 7, first, "198.51.100.4").
				AddRow(12, 7, first.Add(time.Hour), "198.51.100.5"))

		trails, err := repo.ListForUser(context.Background(), 7, 10, 2)

		require.NoError(t, err)
		require.Len(t, trails, 2)
		assert.Equal(t, int64(11), trails[0].ID)
		assert.Equal(t, "198.51.100.5", trails[1].IPAddress)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Query error", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewAuditTrailRepository(pool)

		mock.ExpectQuery("FROM audit_trails").WillReturnError(errors.New("connection reset"))

		trails, err := repo.ListForUser(context.Background(), 7, 0, 500)

		assert.Nil(t, trails)
		assert.ErrorContains(t, err, "failed to query audit trails")
	})
}

func TestAuditTrailRepository_DeleteOlderThan(t *testing.T) {
	pool, mock, cleanup := setupDBMock(t)
	defer cleanup()
	repo := NewAuditTrailRepository(pool)

	cutoff := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM audit_trails WHERE created_at <= $1")).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 12))

	deleted, err := repo.DeleteOlderThan(context.Background(), cutoff)

	assert.NoError(t, err)
	assert.Equal(t, int64(12), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
