package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// incrWithExpiry increments the counter and starts its window on first use,
// atomically so a counter can never be left without a TTL.
var incrWithExpiry = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

// RedisLoginLimiter counts attempts in a fixed window stored in Redis, so
// every API instance shares the same counters.
type RedisLoginLimiter struct {
	redis  *redis.Client
	limit  int
	window time.Duration
	prefix string
}

// NewRedisLoginLimiter creates a Redis-backed limiter. An empty prefix
// defaults to "site:login".
func NewRedisLoginLimiter(client *redis.Client, limit int, window time.Duration, prefix string) *RedisLoginLimiter {
	if prefix == "" {
		prefix = "site:login"
	}
	return &RedisLoginLimiter{
		redis:  client,
		limit:  limit,
		window: window,
		prefix: prefix,
	}
}

func (l *RedisLoginLimiter) key(key string) string {
	return l.prefix + ":" + key
}

// Allow increments the attempt counter. Redis failures fail open.
func (l *RedisLoginLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := incrWithExpiry.Run(ctx, l.redis, []string{l.key(key)}, l.window.Milliseconds()).Int64()
	if err != nil {
		return true, fmt.Errorf("redis error: %w", err)
	}
	return count <= int64(l.limit), nil
}

// Reset deletes the counter
func (l *RedisLoginLimiter) Reset(ctx context.Context, key string) error {
	return l.redis.Del(ctx, l.key(key)).Err()
}

// TTL returns the time until the key's window ends
func (l *RedisLoginLimiter) TTL(ctx context.Context, key string) (time.Duration, error) {
	return l.redis.TTL(ctx, l.key(key)).Result()
}

// HealthCheck verifies Redis connectivity
func (l *RedisLoginLimiter) HealthCheck(ctx context.Context) error {
	return l.redis.Ping(ctx).Err()
}
