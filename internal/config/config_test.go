package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "crm-service", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())

	assert.Equal(t, 60, cfg.Auth.StaffTokenTTLMinutes)
	assert.Equal(t, 60, cfg.Auth.PortalTokenTTLMinutes)
	assert.Equal(t, 72, cfg.Auth.SetupTokenTTLHours)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)

	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 10, cfg.RateLimit.Capacity)
	assert.Equal(t, 6*time.Second, cfg.RateLimit.RefillInterval())

	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("AUTH_STAFF_TOKEN_TTL_MINUTES", "15")
	t.Setenv("RATELIMIT_ENABLED", "false")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 15, cfg.Auth.StaffTokenTTLMinutes)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestLoadToleratesMalformedNumbers(t *testing.T) {
	t.Setenv("AUTH_BCRYPT_COST", "not-a-number")
	t.Setenv("RATELIMIT_CAPACITY", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, 10, cfg.RateLimit.Capacity)
}

func TestLoadRejectsInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "primary")

	_, err := Load()
	require.Error(t, err)
}

func TestRequestTimeoutDisabled(t *testing.T) {
	app := AppConfig{RequestTimeoutSeconds: 0}
	assert.Equal(t, time.Duration(0), app.RequestTimeout())
}
