// Package ratelimit provides sliding-window request limiting keyed by a
// client identifier. Two implementations are available: an in-process
// timestamp log for single-instance deployments and a Redis-backed variant
// for multi-instance ones.
package ratelimit

import (
	"context"
	"time"
)

// Limiter decides whether a request attributed to key is allowed now.
type Limiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
}

// Result reports the outcome of a rate limit check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}
