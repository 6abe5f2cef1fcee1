package auth

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/crm-service/internal/config"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

var tokenBucketScript = redis.NewScript(`
    local key = KEYS[1]
    local now_ms = tonumber(ARGV[1])
    local capacity = tonumber(ARGV[2])
    local refill_tokens = tonumber(ARGV[3])
    local interval_ms = tonumber(ARGV[4])
    local ttl_seconds = tonumber(ARGV[5])

    local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
    local tokens = tonumber(state[1])
    local last_refill = tonumber(state[2])

    if tokens == nil or last_refill == nil then
        tokens = capacity
        last_refill = now_ms
    end

    if interval_ms > 0 and refill_tokens > 0 then
        local elapsed = math.max(0, now_ms - last_refill)
        local intervals = math.floor(elapsed / interval_ms)
        if intervals > 0 then
            tokens = math.min(capacity, tokens + (intervals * refill_tokens))
            last_refill = last_refill + (intervals * interval_ms)
        end
    end

    local allowed = 0
    local retry_after_ms = 0
    if tokens > 0 then
        allowed = 1
        tokens = tokens - 1
    else
        local until_next = interval_ms - (now_ms - last_refill)
        if until_next < 0 then until_next = 0 end
        retry_after_ms = until_next
    end

    redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
    redis.call('EXPIRE', key, ttl_seconds)

    return { allowed, tokens, retry_after_ms }
`)

// LoginLimiter throttles credential-guessing with a Redis token bucket per
// client address and route.
type LoginLimiter struct {
	cfg    config.RateLimitConfig
	client *redis.Client
	logger *zap.Logger
}

// NewLoginLimiter builds the limiter. A nil client disables limiting.
func NewLoginLimiter(cfg config.RateLimitConfig, client *redis.Client, logger *zap.Logger) *LoginLimiter {
	return &LoginLimiter{cfg: cfg, client: client, logger: logger}
}

// Allow consumes one token for key. Redis failures fail open so an outage
// never locks out logins.
func (l *LoginLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	if !l.cfg.Enabled || l.client == nil {
		return true, 0, nil
	}

	args := []interface{}{
		time.Now().UnixMilli(),
		l.cfg.Capacity,
		l.cfg.RefillTokens,
		l.cfg.RefillInterval().Milliseconds(),
		l.cfg.TTLSeconds,
	}

	vals, err := tokenBucketScript.Run(ctx, l.client, []string{key}, args...).Result()
	if err != nil {
		return true, 0, err
	}

	arr, ok := vals.([]interface{})
	if !ok || len(arr) != 3 {
		return true, 0, nil
	}

	allowed := asInt64(arr[0]) == 1
	retryMs := asInt64(arr[2])
	return allowed, time.Duration(retryMs) * time.Millisecond, nil
}

// Handler wraps Allow as fiber middleware for login routes.
func (l *LoginLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := "ratelimit:login:" + c.IP() + ":" + c.Path()

		allowed, retryAfter, err := l.Allow(c.UserContext(), key)
		if err != nil {
			l.logger.Warn("rate limiter unavailable", zap.Error(err))
			return c.Next()
		}
		if !allowed {
			secs := int(retryAfter.Round(time.Second) / time.Second)
			if secs < 1 {
				secs = 1
			}
			c.Set("Retry-After", strconv.Itoa(secs))
			return apperrors.NewDomainError("RATE_LIMITED", "too many login attempts", fiber.StatusTooManyRequests, nil)
		}
		return c.Next()
	}
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case string:
		parsed, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
