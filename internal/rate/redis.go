package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "myreliq:auth:rl:"

// fixedWindow counts hits under a key whose expiry is armed by the first
// INCR. It returns {allowed, ms until the window resets}; PTTL can report a
// negative value when the key raced away, in which case a full window is
// assumed.
var fixedWindow = redis.NewScript(`
local hits = redis.call("INCR", KEYS[1])
if hits == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
local left = redis.call("PTTL", KEYS[1])
if left < 0 then
  left = tonumber(ARGV[2])
end
if hits > tonumber(ARGV[1]) then
  return {0, left}
end
return {1, left}
`)

// RedisLimiter enforces a fixed window shared across replicas. The clock
// argument to Allow is ignored; redis owns the window timing.
type RedisLimiter struct {
	rdb    *redis.Client
	max    int
	span   time.Duration
	prefix string
}

func NewRedisLimiter(rdb *redis.Client, max int, span time.Duration, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisLimiter{rdb: rdb, max: max, span: span, prefix: prefix}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, _ time.Time) (bool, time.Duration, error) {
	spanMS := l.span.Milliseconds()
	if spanMS <= 0 {
		return false, 0, fmt.Errorf("rate: window must be positive, got %s", l.span)
	}

	res, err := fixedWindow.Run(ctx, l.rdb, []string{l.prefix + key}, l.max, spanMS).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("rate: redis eval: %w", err)
	}
	if len(res) != 2 {
		return false, 0, fmt.Errorf("rate: script returned %d values, want 2", len(res))
	}

	retryAfter := time.Duration(res[1]) * time.Millisecond
	if retryAfter < 0 {
		retryAfter = 0
	}
	return res[0] == 1, retryAfter, nil
}
