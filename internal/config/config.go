// Package config loads the application configuration from a YAML file and
// environment variables, applies defaults and validates the result.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/yasinhessnawi1/Forum_Backend/internal/constants"
)

// AppConfig represents the entire application configuration
type AppConfig struct {
	App           AppSettings         `yaml:"app"`
	Database      DatabaseSettings    `yaml:"database"`
	Server        ServerSettings      `yaml:"server"`
	JWT           JWTSettings         `yaml:"jwt"`
	Logging       LoggingSettings     `yaml:"logging"`
	CORS          CORSSettings        `yaml:"cors"`
	PasswordHash  HashSettings        `yaml:"password_hash"`
	Users         UserSettings        `yaml:"users"`
	Archive       ArchiveSettings     `yaml:"archive"`
	ProfileFields []ProfileFieldGroup `yaml:"profile_fields"`
}

// AppSettings contains general application settings
type AppSettings struct {
	Environment string `yaml:"environment" env:"APP_ENV"`
	Name        string `yaml:"name" env:"APP_NAME"`
	Version     string `yaml:"version" env:"APP_VERSION"`
}

// DatabaseSettings contains database connection settings
type DatabaseSettings struct {
	Driver   string `yaml:"driver" env:"DB_DRIVER"`
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT"`
	Name     string `yaml:"name" env:"DB_NAME"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	SSLMode  string `yaml:"ssl_mode" env:"DB_SSL_MODE"`
	MaxConns int    `yaml:"max_conns" env:"DB_MAX_CONNS"`
	MinConns int    `yaml:"min_conns" env:"DB_MIN_CONNS"`
}

// ServerSettings contains HTTP server settings
type ServerSettings struct {
	Host            string        `yaml:"host" env:"SERVER_HOST"`
	Port            int           `yaml:"port" env:"SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	// TrustedProxies lists the IPs and CIDR ranges whose X-Forwarded-For
	// and X-Real-IP headers are believed.
	TrustedProxies []string `yaml:"trusted_proxies" env:"SERVER_TRUSTED_PROXIES"`
}

// JWTSettings contains JWT authentication settings
type JWTSettings struct {
	Secret string        `yaml:"secret" env:"JWT_SECRET"`
	Expiry time.Duration `yaml:"expiry" env:"JWT_EXPIRY"`
	Issuer string        `yaml:"issuer" env:"JWT_ISSUER"`
}

// LoggingSettings contains logging configuration
type LoggingSettings struct {
	Level      string `yaml:"level" env:"LOG_LEVEL"`
	Format     string `yaml:"format" env:"LOG_FORMAT"`
	RequestLog bool   `yaml:"request_log" env:"LOG_REQUESTS"`
}

// CORSSettings contains CORS configuration
type CORSSettings struct {
	AllowedOrigins   []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
	AllowCredentials bool     `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS"`
}

// HashSettings contains password hashing settings
type HashSettings struct {
	Memory      uint32 `yaml:"memory" env:"HASH_MEMORY"`
	Iterations  uint32 `yaml:"iterations" env:"HASH_ITERATIONS"`
	Parallelism uint8  `yaml:"parallelism" env:"HASH_PARALLELISM"`
	SaltLength  uint32 `yaml:"salt_length" env:"HASH_SALT_LENGTH"`
	KeyLength   uint32 `yaml:"key_length" env:"HASH_KEY_LENGTH"`
}

// UserSettings contains user lifecycle settings.
type UserSettings struct {
	// IPStoreTimeDays is how many days registration IPs and audit trails are kept.
	IPStoreTimeDays int `yaml:"ip_store_time_days" env:"USERS_IP_STORE_TIME_DAYS"`
	// RemoveOldIPsSchedule is a standard cron expression; "-" disables the schedule.
	RemoveOldIPsSchedule string `yaml:"remove_old_ips_schedule" env:"USERS_REMOVE_OLD_IPS_SCHEDULE"`
	AuditTrailChunkSize  int    `yaml:"audit_trail_chunk_size" env:"USERS_AUDIT_TRAIL_CHUNK_SIZE"`
}

// ArchiveSettings contains data archive settings.
type ArchiveSettings struct {
	WorkingDir string `yaml:"working_dir" env:"ARCHIVE_WORKING_DIR"`
	OutputDir  string `yaml:"output_dir" env:"ARCHIVE_OUTPUT_DIR"`
	MediaRoot  string `yaml:"media_root" env:"ARCHIVE_MEDIA_ROOT"`
	// MaxAge bounds how long finished zip files are kept.
	MaxAge time.Duration `yaml:"max_age" env:"ARCHIVE_MAX_AGE"`
}

// ProfileFieldGroup is a named group of profile fields.
type ProfileFieldGroup struct {
	Name   string         `yaml:"name"`
	Fields []ProfileField `yaml:"fields"`
}

// ProfileField describes one profile field a user may fill in.
type ProfileField struct {
	Name  string `yaml:"name"`
	Label string `yaml:"label"`
}

// ConnectionString returns the DSN for the configured driver.
func (dbs *DatabaseSettings) ConnectionString() string {
	if strings.ToLower(dbs.Driver) == constants.DriverMySQL {
		// MariaDB/MySQL connection string format: username:password@tcp(host:port)/dbname
		password := dbs.Password
		if password != "" {
			password = ":" + password
		}

		return fmt.Sprintf(
			"%s%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&collation=utf8mb4_unicode_ci",
			dbs.User, password, dbs.Host, dbs.Port, dbs.Name,
		)
	}

	sslMode := dbs.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(dbs.User, dbs.Password),
		Host:     fmt.Sprintf("%s:%d", dbs.Host, dbs.Port),
		Path:     dbs.Name,
		RawQuery: "sslmode=" + sslMode,
	}
	if dbs.Password == "" {
		dsn.User = url.User(dbs.User)
	}
	return dsn.String()
}

// ServerAddress returns the complete server address
func (ss *ServerSettings) ServerAddress() string {
	return fmt.Sprintf("%s:%d", ss.Host, ss.Port)
}

// IsDevelopment checks if the application is running in development mode
func (as *AppSettings) IsDevelopment() bool {
	return strings.ToLower(as.Environment) == constants.EnvDevelopment
}

// IsProduction checks if the application is running in production mode
func (as *AppSettings) IsProduction() bool {
	return strings.ToLower(as.Environment) == constants.EnvProduction
}

// IsTesting checks if the application is running in testing mode
func (as *AppSettings) IsTesting() bool {
	return strings.ToLower(as.Environment) == constants.EnvTesting
}

// ScheduleEnabled reports whether the retention sweep should be scheduled.
func (us *UserSettings) ScheduleEnabled() bool {
	return us.RemoveOldIPsSchedule != "" && us.RemoveOldIPsSchedule != "-"
}

// Load loads the configuration from a config file and environment variables
func Load(configPath string) (*AppConfig, error) {
	config := &AppConfig{}

	// A missing file is fine, env vars and defaults still apply
	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if err := LoadEnv(config); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	setDefaults(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logConfig(config)

	return config, nil
}

// setDefaults sets default values for any missing configuration
func setDefaults(config *AppConfig) {
	if config.App.Environment == "" {
		config.App.Environment = constants.EnvDevelopment
	}
	if config.App.Name == "" {
		config.App.Name = constants.DefaultAppName
	}
	if config.App.Version == "" {
		config.App.Version = "1.0.0"
	}

	if config.Server.Host == "" {
		config.Server.Host = "127.0.0.1"
	}
	if config.Server.Port == 0 {
		config.Server.Port = constants.DefaultServerPort
	}
	if config.Server.ReadTimeout == 0 {
		config.Server.ReadTimeout = constants.DefaultReadTimeout
	}
	if config.Server.WriteTimeout == 0 {
		config.Server.WriteTimeout = constants.DefaultWriteTimeout
	}
	if config.Server.ShutdownTimeout == 0 {
		config.Server.ShutdownTimeout = constants.DefaultShutdownTimeout
	}

	if config.Database.Driver == "" {
		config.Database.Driver = constants.DefaultDBDriver
	}
	config.Database.Driver = strings.ToLower(config.Database.Driver)
	if config.Database.Host == "" {
		config.Database.Host = "localhost"
	}
	if config.Database.Port == 0 {
		if config.Database.Driver == constants.DriverMySQL {
			config.Database.Port = 3306
		} else {
			config.Database.Port = 5432
		}
	}
	if config.Database.Name == "" {
		config.Database.Name = "forum"
	}
	if config.Database.MaxConns == 0 {
		config.Database.MaxConns = constants.DefaultDBMaxConnections
	}
	if config.Database.MinConns == 0 {
		config.Database.MinConns = constants.DefaultDBMinConnections
	}

	if config.JWT.Expiry == 0 {
		config.JWT.Expiry = constants.DefaultJWTExpiry
	}
	if config.JWT.Issuer == "" {
		config.JWT.Issuer = constants.DefaultJWTIssuer
	}

	if config.Logging.Level == "" {
		config.Logging.Level = constants.DefaultLogLevel
	}
	if config.Logging.Format == "" {
		config.Logging.Format = constants.DefaultLogFormat
	}

	if len(config.CORS.AllowedOrigins) == 0 {
		config.CORS.AllowedOrigins = []string{"*"}
	}

	// Lower hashing cost outside production
	if config.PasswordHash.Memory == 0 {
		if config.App.IsProduction() {
			config.PasswordHash.Memory = constants.DefaultPasswordHashMemory
		} else {
			config.PasswordHash.Memory = constants.DevPasswordHashMemory
		}
	}
	if config.PasswordHash.Iterations == 0 {
		if config.App.IsProduction() {
			config.PasswordHash.Iterations = constants.DefaultPasswordHashIterations
		} else {
			config.PasswordHash.Iterations = constants.DevPasswordHashIterations
		}
	}
	if config.PasswordHash.Parallelism == 0 {
		config.PasswordHash.Parallelism = constants.DefaultPasswordHashParallelism
	}
	if config.PasswordHash.SaltLength == 0 {
		config.PasswordHash.SaltLength = constants.DefaultPasswordHashSaltLength
	}
	if config.PasswordHash.KeyLength == 0 {
		config.PasswordHash.KeyLength = constants.DefaultPasswordHashKeyLength
	}

	if config.Users.IPStoreTimeDays == 0 {
		config.Users.IPStoreTimeDays = constants.DefaultIPStoreTimeDays
	}
	if config.Users.RemoveOldIPsSchedule == "" {
		config.Users.RemoveOldIPsSchedule = constants.DefaultRemoveOldIPsSchedule
	}
	if config.Users.AuditTrailChunkSize == 0 {
		config.Users.AuditTrailChunkSize = constants.DefaultAuditTrailChunkSize
	}

	if config.Archive.WorkingDir == "" {
		config.Archive.WorkingDir = constants.DefaultArchiveWorkingDir
	}
	if config.Archive.OutputDir == "" {
		config.Archive.OutputDir = constants.DefaultArchiveOutputDir
	}
	if config.Archive.MediaRoot == "" {
		config.Archive.MediaRoot = constants.DefaultMediaRoot
	}
	if config.Archive.MaxAge == 0 {
		config.Archive.MaxAge = constants.DefaultArchiveMaxAge
	}

	if len(config.ProfileFields) == 0 {
		config.ProfileFields = DefaultProfileFields()
	}
}

// DefaultProfileFields returns the profile field groups used when none are configured.
func DefaultProfileFields() []ProfileFieldGroup {
	return []ProfileFieldGroup{
		{
			Name: "Personal",
			Fields: []ProfileField{
				{Name: "real_name", Label: "Real name"},
				{Name: "gender", Label: "Gender"},
				{Name: "bio", Label: "Bio"},
				{Name: "location", Label: "Location"},
			},
		},
		{
			Name: "Contact",
			Fields: []ProfileField{
				{Name: "twitter", Label: "Twitter handle"},
				{Name: "skype", Label: "Skype ID"},
				{Name: "website", Label: "Website"},
			},
		},
	}
}

// validateConfig validates that the configuration has all required values
func validateConfig(config *AppConfig) error {
	env := strings.ToLower(config.App.Environment)
	if env != constants.EnvDevelopment && env != constants.EnvTesting && env != constants.EnvProduction {
		log.Warn().
			Str("environment", config.App.Environment).
			Msg("Invalid environment, defaulting to development")
		config.App.Environment = constants.EnvDevelopment
	}

	if config.App.IsProduction() {
		if config.JWT.Secret == "" || config.JWT.Secret == "changeme" {
			return fmt.Errorf("JWT secret must be set in production")
		}
		if config.Database.User == "" {
			return fmt.Errorf("database user must be set in production")
		}
	}

	if config.Database.Driver != constants.DriverPostgres && config.Database.Driver != constants.DriverMySQL {
		return fmt.Errorf("unsupported database driver: %s", config.Database.Driver)
	}

	logLevel := strings.ToLower(config.Logging.Level)
	validLevels := []string{"debug", "info", "warn", "error", "fatal", "panic"}
	validLevel := false
	for _, level := range validLevels {
		if logLevel == level {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	if config.Users.IPStoreTimeDays < 0 {
		return fmt.Errorf("users.ip_store_time_days must not be negative")
	}
	if config.Archive.MaxAge < 0 {
		return fmt.Errorf("archive.max_age must not be negative")
	}
	if config.Users.AuditTrailChunkSize < 0 {
		return fmt.Errorf("users.audit_trail_chunk_size must not be negative")
	}

	seen := make(map[string]bool)
	for _, group := range config.ProfileFields {
		for _, field := range group.Fields {
			if field.Name == "" {
				return fmt.Errorf("profile field in group %q has no name", group.Name)
			}
			if seen[field.Name] {
				return fmt.Errorf("profile field %q is defined more than once", field.Name)
			}
			seen[field.Name] = true
		}
	}

	return nil
}

// logConfig logs the current configuration, masking sensitive values
func logConfig(config *AppConfig) {
	log.Info().
		Str("environment", config.App.Environment).
		Str("version", config.App.Version).
		Str("server", config.Server.ServerAddress()).
		Str("db_driver", config.Database.Driver).
		Str("db_host", config.Database.Host).
		Int("db_port", config.Database.Port).
		Str("db_name", config.Database.Name).
		Str("db_password", redact(config.Database.Password)).
		Str("jwt_secret", redact(config.JWT.Secret)).
		Str("log_level", config.Logging.Level).
		Int("ip_store_time_days", config.Users.IPStoreTimeDays).
		Str("remove_old_ips_schedule", config.Users.RemoveOldIPsSchedule).
		Msg("Configuration loaded")
}

func redact(value string) string {
	if value == "" {
		return ""
	}
	return constants.LogRedactedValue
}
