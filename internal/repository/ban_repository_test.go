package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasinhessnawi1/Forum_Backend/internal/database"
	"github.com/yasinhessnawi1/Forum_Backend/internal/models"
	"github.com/yasinhessnawi1/Forum_Backend/internal/utils"
)

// setupDBMock creates a new mock database and pool for testing
func setupDBMock(t *testing.T) (*database.Pool, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create mock database")

	pool := &database.Pool{
		DB: db,
	}

	return pool, mock, func() {
		db.Close()
	}
}

var banRowColumns = []string{
	"ban_id", "check_type", "banned_value", "user_message", "staff_message", "expires_on", "is_checked", "created_at",
}

func TestNewBanRepository(t *testing.T) {
	// Arrange
	pool, _, cleanup := setupDBMock(t)
	defer cleanup()

	// Act
	repo := NewBanRepository(pool)

	// Assert
	assert.NotNil(t, repo, "Repository should not be nil")
	assert.Implements(t, (*BanRepository)(nil), repo, "Should implement BanRepository interface")
}

func TestBanRepository_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewBanRepository(pool)

		expiry := time.Now().Add(24 * time.Hour)
		ban := models.NewBan(models.BanEmail, "*@spam.example", "No spam", "Seen in reports", &expiry)

		mock.ExpectQuery("INSERT INTO bans").
			WithArgs(1, "*@spam.example", "No spam", "Seen in reports", &expiry, true, ban.CreatedAt).
			WillReturnRows(sqlmock.NewRows([]string{"ban_id"}).AddRow(int64(5)))

		// Act
		result, err := repo.Create(context.Background(), ban)

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, int64(5), result.ID)
		assert.Equal(t, "*@spam.example", result.BannedValue)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		// Arrange
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewBanRepository(pool)

		mock.ExpectQuery("INSERT INTO bans").WillReturnError(errors.New("database error"))

		// Act
		result, err := repo.Create(context.Background(), models.NewBan(models.BanUsername, "admin*", "", "", nil))

		// Assert
		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "failed to create ban")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBanRepository_GetByID(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewBanRepository(pool)

		now := time.Now()
		mock.ExpectQuery(regexp.QuoteMeta("FROM bans WHERE ban_id = $1")).
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows(banRowColumns).AddRow(2, 2, "10.0.*", "Go away", "", nil, true, now))

		ban, err := repo.GetByID(context.Background(), 2)

		require.NoError(t, err)
		assert.Equal(t, models.BanIP, ban.CheckType)
		assert.Equal(t, "10.0.*", ban.BannedValue)
		assert.Nil(t, ban.ExpiresOn)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewBanRepository(pool)

		mock.ExpectQuery("FROM bans WHERE ban_id").WillReturnError(sql.ErrNoRows)

		ban, err := repo.GetByID(context.Background(), 2)

		assert.Nil(t, ban)
		assert.True(t, utils.IsNotFoundError(err))
	})
}

func TestBanRepository_List(t *testing.T) {
	pool, mock, cleanup := setupDBMock(t)
	defer cleanup()
	repo := NewBanRepository(pool)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM bans")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY ban_id DESC LIMIT $1 OFFSET $2")).
		WithArgs(20, 20).
		WillReturnRows(sqlmock.NewRows(banRowColumns).
			AddRow(22, 0, "admin*", "", "", nil, true, now).
			AddRow(21, 1, "*@spam.example", "", "", nil, false, now))

	bans, total, err := repo.List(context.Background(), 20, 20)

	require.NoError(t, err)
	assert.Equal(t, 42, total)
	require.Len(t, bans, 2)
	assert.Equal(t, int64(22), bans[0].ID)
	assert.False(t, bans[1].IsChecked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBanRepository_GetCheckedByTypes(t *testing.T) {
	t.Run("Filters by type, newest first", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewBanRepository(pool)

		now := time.Now()
		mock.ExpectQuery(regexp.QuoteMeta("WHERE is_checked = TRUE AND check_type IN ($1, $2)")).
			WithArgs(0, 2).
			WillReturnRows(sqlmock.NewRows(banRowColumns).
				AddRow(9, 2, "10.0.*", "", "", nil, true, now).
				AddRow(4, 0, "admin*", "", "", nil, true, now))

		bans, err := repo.GetCheckedByTypes(context.Background(), []models.BanCheckType{models.BanUsername, models.BanIP})

		require.NoError(t, err)
		require.Len(t, bans, 2)
		assert.Equal(t, models.BanIP, bans[0].CheckType)
		assert.Equal(t, models.BanUsername, bans[1].CheckType)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MySQL placeholders", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewBanRepository(&database.Pool{DB: db, Driver: "mysql"})

		mock.ExpectQuery(regexp.QuoteMeta("check_type IN (?)")).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows(banRowColumns))

		bans, err := repo.GetCheckedByTypes(context.Background(), []models.BanCheckType{models.BanEmail})

		assert.NoError(t, err)
		assert.Empty(t, bans)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("No types skips the query", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewBanRepository(pool)

		bans, err := repo.GetCheckedByTypes(context.Background(), nil)

		assert.NoError(t, err)
		assert.Nil(t, bans)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Scan error", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewBanRepository(pool)

		mock.ExpectQuery("FROM bans").
			WillReturnRows(sqlmock.NewRows([]string{"ban_id"}).AddRow(1))

		_, err := repo.GetCheckedByTypes(context.Background(), []models.BanCheckType{models.BanUsername})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to scan ban row")
	})
}

func TestBanRepository_Delete(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewBanRepository(pool)

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bans WHERE ban_id = $1")).
			WithArgs(int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.Background(), 3))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewBanRepository(pool)

		mock.ExpectExec("DELETE FROM bans").WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), 3)

		assert.True(t, utils.IsNotFoundError(err))
	})
}

func TestBanRepository_DeleteExpired(t *testing.T) {
	pool, mock, cleanup := setupDBMock(t)
	defer cleanup()
	repo := NewBanRepository(pool)

	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bans WHERE expires_on IS NOT NULL AND expires_on <= $1")).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	deleted, err := repo.DeleteExpired(context.Background(), now)

	assert.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
