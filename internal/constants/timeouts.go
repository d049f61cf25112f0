package constants

import "time"

// Server Timeouts define limits for the HTTP server.
const (
	DefaultReadTimeout     = 5 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
)

// Database Timeouts define limits for database operations.
const (
	DBConnectionTimeout  = 10 * time.Second
	DBHealthCheckTimeout = 5 * time.Second
	DBConnMaxLifetime    = 1 * time.Hour
	DBConnMaxIdleTime    = 30 * time.Minute
)

// Job Timeouts bound background work.
const (
	// RemoveOldIPsTimeout bounds a single retention sweep.
	RemoveOldIPsTimeout = 5 * time.Minute

	// ArchiveTimeout bounds building a single data archive.
	ArchiveTimeout = 2 * time.Minute

	// DefaultArchiveMaxAge is how long a finished archive may stay in the
	// output directory when its download did not remove it.
	DefaultArchiveMaxAge = 24 * time.Hour
)

// DefaultJWTExpiry is the lifetime of access tokens.
const DefaultJWTExpiry = 15 * time.Minute

// Rate limiter housekeeping.
const (
	RateLimitIdleTTL         = 30 * time.Minute
	RateLimitCleanupInterval = 5 * time.Minute
)
