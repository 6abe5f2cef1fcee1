package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/crm-service/internal/config"
)

func newTestLimiter(t *testing.T, cfg config.RateLimitConfig) *LoginLimiter {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLoginLimiter(cfg, client, zap.NewNop())
}

func TestLoginLimiterExhaustsCapacity(t *testing.T) {
	limiter := newTestLimiter(t, config.RateLimitConfig{
		Enabled:          true,
		Capacity:         3,
		RefillTokens:     1,
		RefillIntervalMs: 60_000,
		TTLSeconds:       600,
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, _, err := limiter.Allow(ctx, "ratelimit:login:10.0.0.1:/api/auth/staff/login")
		require.NoError(t, err)
		assert.True(t, allowed, "attempt %d should pass", i+1)
	}

	allowed, retryAfter, err := limiter.Allow(ctx, "ratelimit:login:10.0.0.1:/api/auth/staff/login")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Greater(t, retryAfter, time.Duration(0))
}

func TestLoginLimiterKeysAreIndependent(t *testing.T) {
	limiter := newTestLimiter(t, config.RateLimitConfig{
		Enabled:          true,
		Capacity:         1,
		RefillTokens:     1,
		RefillIntervalMs: 60_000,
		TTLSeconds:       600,
	})
	ctx := context.Background()

	allowed, _, err := limiter.Allow(ctx, "ratelimit:login:10.0.0.1:/api/auth/staff/login")
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, _, err = limiter.Allow(ctx, "ratelimit:login:10.0.0.1:/api/auth/staff/login")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, _, err = limiter.Allow(ctx, "ratelimit:login:10.0.0.2:/api/auth/staff/login")
	require.NoError(t, err)
	assert.True(t, allowed, "a different client address holds its own bucket")
}

func TestLoginLimiterRefills(t *testing.T) {
	limiter := newTestLimiter(t, config.RateLimitConfig{
		Enabled:          true,
		Capacity:         1,
		RefillTokens:     1,
		RefillIntervalMs: 50,
		TTLSeconds:       600,
	})
	ctx := context.Background()

	allowed, _, err := limiter.Allow(ctx, "ratelimit:login:10.0.0.1:/api/portal/login")
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, _, err = limiter.Allow(ctx, "ratelimit:login:10.0.0.1:/api/portal/login")
	require.NoError(t, err)
	require.False(t, allowed)

	time.Sleep(80 * time.Millisecond)

	allowed, _, err = limiter.Allow(ctx, "ratelimit:login:10.0.0.1:/api/portal/login")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestLoginLimiterDisabled(t *testing.T) {
	limiter := newTestLimiter(t, config.RateLimitConfig{Enabled: false})
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		allowed, _, err := limiter.Allow(ctx, "ratelimit:login:10.0.0.1:/api/auth/staff/login")
		require.NoError(t, err)
		assert.True(t, allowed)
	}
}

func TestLoginLimiterFailsOpenWithoutRedis(t *testing.T) {
	limiter := NewLoginLimiter(config.RateLimitConfig{
		Enabled:  true,
		Capacity: 1,
	}, nil, zap.NewNop())

	allowed, _, err := limiter.Allow(context.Background(), "ratelimit:login:10.0.0.1:/api/auth/staff/login")
	require.NoError(t, err)
	assert.True(t, allowed)
}
