// Package handlers provides the HTTP handlers of the forum API.
//
// Handlers depend on the small service interfaces declared here rather than
// on concrete services, so they can be tested with mocks.
package handlers

import (
	"context"

	"github.com/yasinhessnawi1/Forum_Backend/internal/models"
	"github.com/yasinhessnawi1/Forum_Backend/internal/utils"
)

// AuthServiceInterface defines the signup and login operations.
type AuthServiceInterface interface {
	// RegisterUser creates an account joined from ip. Banned usernames,
	// emails and IPs are rejected with a banned error.
	RegisterUser(ctx context.Context, reg *models.UserRegistration, ip string) (*models.User, error)

	// AuthenticateUser verifies credentials, records ip in the audit trail
	// and returns an access token.
	AuthenticateUser(ctx context.Context, creds *models.UserCredentials, ip string) (*models.LoginResponse, error)
}

// UserServiceInterface defines the user profile and rename operations.
type UserServiceInterface interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	// ChangeUsername renames userID on behalf of actor and records the
	// change in the name history.
	ChangeUsername(ctx context.Context, userID int64, newUsername string, actor *models.User) (*models.User, error)

	GetNameHistory(ctx context.Context, userID int64) ([]*models.NameChange, error)
}

// ArchiveServiceInterface builds user data archives.
type ArchiveServiceInterface interface {
	// ArchiveUser returns the path of a zip file holding the user's data.
	ArchiveUser(ctx context.Context, userID int64) (string, error)
	// RemoveArchive deletes a delivered archive file.
	RemoveArchive(path string) error
}

// BanServiceInterface defines ban management and lookup.
type BanServiceInterface interface {
	FindBan(ctx context.Context, query models.BanQuery) (*models.Ban, error)
	CreateBan(ctx context.Context, req *models.BanCreate) (*models.Ban, error)
	GetBan(ctx context.Context, id int64) (*models.Ban, error)
	ListBans(ctx context.Context, params utils.PaginationParams) ([]*models.Ban, int, error)
	DeleteBan(ctx context.Context, id int64) error
	DeleteExpiredBans(ctx context.Context) (int64, error)
}

// RetentionServiceInterface triggers the IP retention sweep.
type RetentionServiceInterface interface {
	RemoveOldIPs(ctx context.Context) error
}

// HealthChecker reports whether the database is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
