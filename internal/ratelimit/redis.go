package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:"

// allowScript runs the whole trim-count-record sequence server-side so the
// decision is atomic per key even across service instances. Scores are
// millisecond timestamps; members are supplied by the caller and must be
// unique per request. Returns {allowed, count, retry_ms}.
var allowScript = redis.NewScript(`
local limit = tonumber(ARGV[1])
local window_ms = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', now - window_ms)
local count = redis.call('ZCARD', KEYS[1])

if count >= limit then
	local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
	local retry_ms = window_ms
	if #oldest > 0 then
		retry_ms = tonumber(oldest[2]) + window_ms - now
	end
	return {0, count, retry_ms}
end

redis.call('ZADD', KEYS[1], now, ARGV[4])
redis.call('PEXPIRE', KEYS[1], window_ms)
return {1, count + 1, 0}
`)

// memberSeq disambiguates entries recorded within the same nanosecond.
var memberSeq atomic.Uint64

// RedisLimiter implements the same sliding window over a Redis sorted set,
// so the quota is shared across service instances.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (*Result, error) {
	now := time.Now()
	member := strconv.FormatInt(now.UnixNano(), 10) + ":" + strconv.FormatUint(memberSeq.Add(1), 10)

	vals, err := allowScript.Run(ctx, l.client,
		[]string{redisKeyPrefix + key},
		l.limit,
		l.window.Milliseconds(),
		now.UnixMilli(),
		member,
	).Slice()
	if err != nil {
		return nil, fmt.Errorf("ratelimit check: %w", err)
	}
	if len(vals) != 3 {
		return nil, fmt.Errorf("ratelimit check: unexpected script reply %v", vals)
	}

	allowed, _ := vals[0].(int64)
	count, _ := vals[1].(int64)

	if allowed == 0 {
		retryMs, _ := vals[2].(int64)
		retry := time.Duration(retryMs) * time.Millisecond
		if retry <= 0 || retry > l.window {
			retry = l.window
		}
		return &Result{Allowed: false, Limit: l.limit, Remaining: 0, RetryAfter: retry}, nil
	}

	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return &Result{Allowed: true, Limit: l.limit, Remaining: remaining}, nil
}
