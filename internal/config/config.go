// Package config handles loading application configuration from environment
// variables. All config is centralized here so no other package reads env
// vars directly. Sensible defaults are provided for development.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Config holds all application configuration. Populated from environment
// variables at startup. Passed to other packages via dependency injection.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string

	// Port is the HTTP listen port (default: 8080).
	Port int

	// BaseURL is the public-facing URL used for links and CORS.
	BaseURL string

	// LogLevel controls log verbosity: "debug", "info", "warn", "error".
	LogLevel string

	// Database holds MariaDB connection settings.
	Database DatabaseConfig

	// Redis holds Redis connection settings.
	Redis RedisConfig

	// Auth holds the admin identity and token settings.
	Auth AuthConfig

	// Upload holds file upload and admission settings.
	Upload UploadConfig

	// Cache holds response cache and deduplication settings.
	Cache CacheConfig
}

// DatabaseConfig holds MariaDB connection parameters. Individual fields
// (Host, User, Password, Name) are read from separate env vars so container
// orchestrators can manage each independently. If DATABASE_URL is set, it
// takes precedence over the individual fields.
type DatabaseConfig struct {
	// Host is the MariaDB address in host:port format (default: "localhost:3306").
	// If no port is specified, 3306 is appended automatically.
	Host string

	// User is the MariaDB username (default: "studio").
	User string

	// Password is the MariaDB password (default: "studio").
	Password string

	// Name is the database name (default: "studio").
	Name string

	// dsnOverride is set when DATABASE_URL is provided, bypassing individual fields.
	dsnOverride string

	// MaxOpenConns is the maximum number of open connections in the pool.
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections in the pool.
	MaxIdleConns int

	// ConnMaxLifetime is how long a connection can be reused.
	ConnMaxLifetime time.Duration
}

// DSN returns the go-sql-driver/mysql connection string. If DATABASE_URL was
// set, it is returned as-is. Otherwise the DSN is built from the individual
// Host/User/Password/Name fields using the driver's Config.FormatDSN()
// to safely handle special characters in passwords.
func (d DatabaseConfig) DSN() string {
	if d.dsnOverride != "" {
		return d.dsnOverride
	}
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = ensurePort(d.Host, "3306")
	cfg.DBName = d.Name
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// ensurePort appends the default port if the host string doesn't include one.
// Allows users to set DB_HOST=mydb (gets :3306) or DB_HOST=mydb:3307 (as-is).
func ensurePort(host, defaultPort string) string {
	_, _, err := net.SplitHostPort(host)
	if err != nil {
		return net.JoinHostPort(host, defaultPort)
	}
	return host
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379").
	URL string
}

// AuthConfig holds the single admin identity and bearer-token settings.
// There is no user account system; one admin manages all content.
type AuthConfig struct {
	// JWTSecret signs admin bearer tokens (must be 32+ bytes in production).
	JWTSecret string

	// TokenTTL is how long an issued admin token stays valid.
	TokenTTL time.Duration

	// AdminUsername is the admin login name.
	AdminUsername string

	// AdminPassword is a plaintext admin password for development. Ignored
	// when AdminPasswordHash is set.
	AdminPassword string

	// AdminPasswordHash is an argon2id encoded hash of the admin password.
	// Preferred over AdminPassword for any real deployment.
	AdminPasswordHash string
}

// UploadConfig holds file upload and admission pool settings.
type UploadConfig struct {
	// MaxSize is the maximum upload file size in bytes.
	MaxSize int64

	// MaxFiles is the maximum number of files accepted per request.
	MaxFiles int

	// MediaPath is the root directory for uploaded asset storage.
	MediaPath string

	// UploadSlots caps concurrent upload-body receptions. Excess requests
	// are rejected immediately, not queued.
	UploadSlots int

	// ProcessingSlots caps concurrent image-processing jobs.
	ProcessingSlots int

	// BodyTimeout bounds how long one upload may spend receiving its body
	// before its slot is force-released and the request fails.
	BodyTimeout time.Duration
}

// CacheConfig holds response cache and request deduplication settings.
// The response cache is a debounce, not a durability layer: TTLs are short
// and losing every entry is only a loss of efficiency.
type CacheConfig struct {
	// TTL is the default time-to-live for cached read responses.
	TTL time.Duration

	// HealthTTL is the shorter TTL used for the health endpoint.
	HealthTTL time.Duration

	// DedupeGrace is how long a completed in-flight ticket lingers so
	// near-simultaneous duplicate requests still join it.
	DedupeGrace time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		BaseURL:  getEnv("BASE_URL", "http://localhost:8080"),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost:3306"),
			User:            getEnv("DB_USER", "studio"),
			Password:        getEnv("DB_PASSWORD", "studio"),
			Name:            getEnv("DB_NAME", "studio"),
			dsnOverride:     getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},

		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},

		Auth: AuthConfig{
			JWTSecret:         getEnv("JWT_SECRET", ""),
			TokenTTL:          getEnvDuration("TOKEN_TTL", 24*time.Hour),
			AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
			AdminPassword:     getEnv("ADMIN_PASSWORD", "admin"),
			AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		},

		Upload: UploadConfig{
			MaxSize:         getEnvInt64("MAX_UPLOAD_SIZE", 5*1024*1024), // 5MB
			MaxFiles:        getEnvInt("MAX_UPLOAD_FILES", 10),
			MediaPath:       getEnv("MEDIA_PATH", "./uploads"),
			UploadSlots:     getEnvInt("UPLOAD_SLOTS", 10),
			ProcessingSlots: getEnvInt("PROCESSING_SLOTS", 5),
			BodyTimeout:     getEnvDuration("UPLOAD_BODY_TIMEOUT", 5*time.Minute),
		},

		Cache: CacheConfig{
			TTL:         getEnvDuration("CACHE_TTL", 30*time.Second),
			HealthTTL:   getEnvDuration("CACHE_HEALTH_TTL", 5*time.Second),
			DedupeGrace: getEnvDuration("DEDUPE_GRACE", 50*time.Millisecond),
		},
	}

	// Validate required fields in production. Case-insensitive check catches
	// common variants like "Production", "prod", etc.
	envLower := strings.ToLower(cfg.Env)
	if envLower == "production" || envLower == "prod" {
		if cfg.Auth.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		if len(cfg.Auth.JWTSecret) < 32 {
			return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
		}
		if cfg.Auth.AdminPasswordHash == "" && cfg.Auth.AdminPassword == "admin" {
			return nil, fmt.Errorf("ADMIN_PASSWORD_HASH (or a non-default ADMIN_PASSWORD) is required in production")
		}
	}

	// Provide a dev-only default secret so local dev works without .env.
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "dev-secret-key-do-not-use-in-production!!"
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev"
}

// --- Helper functions for reading environment variables ---

// getEnv reads a string env var or returns the default.
func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvInt reads an integer env var or returns the default.
func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvInt64 reads an int64 env var or returns the default.
func getEnvInt64(key string, defaultVal int64) int64 {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvDuration reads a duration env var (e.g., "30s") or returns the default.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
