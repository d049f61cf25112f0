// Package constants provides shared constant values used throughout the application.
//
// The defaults.go file defines default values and limits used when a setting is
// missing from the configuration file and the environment.
package constants

// Default Configuration Values define fallback settings when not specified in configuration.
const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 8080

	// DefaultDBDriver is the database driver used when none is configured.
	DefaultDBDriver = DriverPostgres

	// DefaultDBMaxConnections is the default maximum number of database connections.
	DefaultDBMaxConnections = 20

	// DefaultDBMinConnections is the default minimum number of database connections.
	DefaultDBMinConnections = 5

	// DefaultLogLevel is the default logging verbosity level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default logging output format.
	DefaultLogFormat = "json"

	// DefaultAppName is reported in logs and the version endpoint.
	DefaultAppName = "forum-backend"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Environment Types define the recognized application running environments.
const (
	// EnvDevelopment identifies a development environment with debugging features enabled.
	EnvDevelopment = "development"

	// EnvTesting identifies a testing environment for automated tests.
	EnvTesting = "testing"

	// EnvProduction identifies a production environment with optimized settings.
	EnvProduction = "production"
)

// MaxRequestBodySize is the maximum size in bytes for HTTP request bodies.
const MaxRequestBodySize = 1048576 // 1MB in bytes

// Default Password Hash Settings define the parameters for Argon2id password hashing.
const (
	DefaultPasswordHashMemory      = 64 * 1024
	DefaultPasswordHashIterations  = 3
	DefaultPasswordHashParallelism = 2
	DefaultPasswordHashSaltLength  = 16
	DefaultPasswordHashKeyLength   = 32

	// DevPasswordHashMemory and DevPasswordHashIterations keep hashing fast outside production.
	DevPasswordHashMemory     = 16 * 1024
	DevPasswordHashIterations = 1
)

// User lifecycle defaults.
const (
	// DefaultIPStoreTimeDays is how long registration IPs and audit trails are kept.
	DefaultIPStoreTimeDays = 50

	// DefaultRemoveOldIPsSchedule runs the IP retention sweep daily at 03:30.
	DefaultRemoveOldIPsSchedule = "30 3 * * *"

	// DefaultAuditTrailChunkSize is the page size used when exporting audit trails.
	DefaultAuditTrailChunkSize = 500

	// MinUsernameLength and MaxUsernameLength bound usernames.
	MinUsernameLength = 3
	MaxUsernameLength = 14

	// MinPasswordLength is the shortest accepted password.
	MinPasswordLength = 8
)

// Data archive defaults.
const (
	DefaultArchiveWorkingDir = "./data/archive-tmp"
	DefaultArchiveOutputDir  = "./data/archives"
	DefaultMediaRoot         = "./media"

	// ArchiveFilenameMaxLength caps slugified data file names.
	ArchiveFilenameMaxLength = 50

	// ArchiveTimeNameLayout formats time-valued data file names.
	ArchiveTimeNameLayout = "2006-01-02-150405.000000"

	// ArchiveUnavailableValue replaces values that were already purged.
	ArchiveUnavailableValue = "unavailable"
)

// Auth Constants define values related to token management.
const (
	// DefaultJWTIssuer is the issuer claim value for JWT tokens.
	DefaultJWTIssuer = "forum-api"

	// BearerTokenPrefix is the prefix for Authorization header bearer tokens.
	BearerTokenPrefix = "Bearer "

	// TokenTypeAccess marks access tokens.
	TokenTypeAccess = "access"
)

// Base Routes define the root URL paths for different parts of the API.
const (
	APIBasePath = "/api"
	HealthPath  = "/health"
	MetricsPath = "/metrics"
)

// Context keys shared by the auth package and the logger.
const (
	UserIDContextKey    = "user_id"
	UsernameContextKey  = "username"
	IsStaffContextKey   = "is_staff"
	RequestIDContextKey = "request_id"
)

// URL parameters.
const (
	ParamUserID = "userID"
	ParamBanID  = "banID"
)

// Rate limits for the public auth endpoints, per client IP.
const (
	RateLimitCategoryLogin  = "login"
	RateLimitCategorySignup = "signup"

	LoginRequestsPerSecond  = 0.2
	LoginBurst              = 10
	SignupRequestsPerSecond = 0.05
	SignupBurst             = 3
)

// Scheduled job names.
const (
	JobRemoveOldIPs      = "remove_old_ips"
	JobDeleteExpiredBans = "delete_expired_bans"
	JobPruneDataArchives = "prune_data_archives"
)
