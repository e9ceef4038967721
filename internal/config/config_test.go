package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"OFFLINE_MODE", "DEFAULT_USER_ID", "SEED_DEFAULT_USER", "JWT_SECRET", "LOG_RETENTION", "PORT", "RATE_LIMIT_PER_MINUTE"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.False(t, cfg.OfflineMode)
	assert.Equal(t, "online", cfg.Mode())
	assert.Equal(t, "test-user", cfg.DefaultUserID)
	assert.True(t, cfg.SeedDefaultUser)
	assert.False(t, cfg.AuthEnabled())
	assert.Equal(t, 720*time.Hour, cfg.LogRetention)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("OFFLINE_MODE", "true")
	t.Setenv("DEFAULT_USER_ID", "learner-1")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("LOG_RETENTION", "48h")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "120")

	cfg := Load()

	assert.True(t, cfg.OfflineMode)
	assert.Equal(t, "offline", cfg.Mode())
	assert.Equal(t, "learner-1", cfg.DefaultUserID)
	assert.True(t, cfg.AuthEnabled())
	assert.Equal(t, 48*time.Hour, cfg.LogRetention)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("OFFLINE_MODE", "sometimes")
	t.Setenv("LOG_RETENTION", "forever")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "-5")

	cfg := Load()

	assert.False(t, cfg.OfflineMode)
	assert.Equal(t, 30*24*time.Hour, cfg.LogRetention)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: "5433", DBSSLMode: "require"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5433 sslmode=require TimeZone=UTC", cfg.DSN())
}
