// Package ratelimit implements a distributed token bucket on Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dtroode/authflow-server/internal/model"
)

// tokenBucketScript refills the bucket by whole intervals, takes one token if
// available and returns {allowed, tokens_left, retry_after_ms}.
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
    retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)

return { allowed, tokens, retry_after_ms }
`)

// Options configure a TokenBucket.
type Options struct {
	Prefix         string
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
}

var _ model.RateLimiter = (*TokenBucket)(nil)

// TokenBucket is a model.RateLimiter whose state lives in Redis, so all
// replicas share the same buckets.
type TokenBucket struct {
	client redis.Scripter
	opts   Options
	now    func() time.Time
}

func NewTokenBucket(client redis.Scripter, opts Options) *TokenBucket {
	if opts.TTL <= 0 {
		opts.TTL = time.Hour
	}
	return &TokenBucket{client: client, opts: opts, now: time.Now}
}

// Allow takes a token from the bucket identified by key.
func (b *TokenBucket) Allow(ctx context.Context, key string) (model.RateDecision, error) {
	args := []interface{}{
		b.now().UnixMilli(),
		b.opts.Capacity,
		b.opts.RefillTokens,
		b.opts.RefillInterval.Milliseconds(),
		int64(b.opts.TTL / time.Second),
	}

	vals, err := tokenBucketScript.Run(ctx, b.client, []string{b.key(key)}, args...).Int64Slice()
	if err != nil {
		return model.RateDecision{}, fmt.Errorf("failed to run rate limit script: %w", err)
	}
	if len(vals) != 3 {
		return model.RateDecision{}, fmt.Errorf("unexpected rate limit script result: %v", vals)
	}

	return model.RateDecision{
		Allowed:    vals[0] == 1,
		Limit:      b.opts.Capacity,
		Remaining:  vals[1],
		RetryAfter: time.Duration(vals[2]) * time.Millisecond,
	}, nil
}

func (b *TokenBucket) key(key string) string {
	if b.opts.Prefix == "" {
		return key
	}
	return b.opts.Prefix + ":" + key
}
