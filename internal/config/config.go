package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Progress store
	OfflineMode     bool
	DefaultUserID   string
	SeedDefaultUser bool

	// JWT (empty disables token verification)
	JWTSecret string

	// Logging
	LogRetention time.Duration

	// Server
	Port               string
	CORSOrigins        string
	RateLimitPerMinute int

	// Error tracking
	SentryDSN string
	AppEnv    string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "phase_progress"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		OfflineMode:     parseBool(getEnv("OFFLINE_MODE", "false")),
		DefaultUserID:   getEnv("DEFAULT_USER_ID", "test-user"),
		SeedDefaultUser: parseBool(getEnv("SEED_DEFAULT_USER", "true")),

		JWTSecret: getEnv("JWT_SECRET", ""),

		LogRetention: parseDuration(getEnv("LOG_RETENTION", "720h")),

		Port:               getEnv("PORT", "8080"),
		CORSOrigins:        getEnv("CORS_ORIGINS", "*"),
		RateLimitPerMinute: parseInt(getEnv("RATE_LIMIT_PER_MINUTE", "60"), 60),

		SentryDSN: getEnv("SENTRY_DSN", ""),
		AppEnv:    getEnv("APP_ENV", "development"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// Mode reports the progress store mode for health output and logs.
func (c *Config) Mode() string {
	if c.OfflineMode {
		return "offline"
	}
	return "online"
}

// AuthEnabled reports whether progress routes require a bearer token.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return b
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 30 * 24 * time.Hour
	}
	return d
}
