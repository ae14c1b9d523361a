package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/puzzlekit/puzzlekit/internal/ratelimit"
)

// windowKeyPrefix namespaces rate-limit keys in Redis.
const windowKeyPrefix = "ratelimit:window:"

// fixedWindowScript implements the fixed-window counter atomically.
// INCR creates the key at 1; the expiry is attached only on creation so the
// deadline stays fixed for the whole window. Expiry in Redis replaces the
// in-memory store's passive sweep. Returns {count, remaining ms}.
var fixedWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local window_ms = tonumber(ARGV[1])

	local count = redis.call('INCR', key)
	if count == 1 then
		redis.call('PEXPIRE', key, window_ms)
	end

	local ttl = redis.call('PTTL', key)
	if ttl < 0 then
		redis.call('PEXPIRE', key, window_ms)
		ttl = window_ms
	end

	return {count, ttl}
`)

// WindowStore is a Redis-backed ratelimit.Store. Unlike the in-memory table
// it is shared by every API instance pointing at the same Redis, which makes
// the per-client caps hold across a horizontally scaled deployment.
type WindowStore struct {
	cache *Cache
}

// NewWindowStore creates a rate-limit window store on top of the cache.
func NewWindowStore(c *Cache) *WindowStore {
	return &WindowStore{cache: c}
}

// Take implements ratelimit.Store.
// On Redis errors it fails open: blocking all traffic because the limiter
// backend is down is worse than briefly not limiting.
func (s *WindowStore) Take(ctx context.Context, key string, window time.Duration, max int) (ratelimit.Result, error) {
	now := time.Now()

	values, err := fixedWindowScript.Run(ctx, s.cache.client,
		[]string{windowKeyPrefix + key},
		window.Milliseconds(),
	).Int64Slice()
	if err != nil || len(values) != 2 {
		return ratelimit.Result{
			Allowed:   true,
			Remaining: max,
			ResetAt:   now.Add(window),
		}, nil
	}

	count := int(values[0])
	remaining := time.Duration(values[1]) * time.Millisecond
	resetAt := now.Add(remaining)

	if count > max {
		return ratelimit.Result{
			Allowed:    false,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: remaining,
		}, nil
	}

	left := max - count
	if left < 0 {
		left = 0
	}

	return ratelimit.Result{
		Allowed:   true,
		Remaining: left,
		ResetAt:   resetAt,
	}, nil
}
