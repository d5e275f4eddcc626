package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter keeps a per-key log of request timestamps inside the trailing
// window. The purge-check-append sequence for a key runs under that key's
// mutex, so concurrent requests from the same client never undercount.
//
// Idle keys are never evicted; memory grows with the number of distinct
// clients seen over the process lifetime.
type MemoryLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	entries map[string]*entry

	now func() time.Time // overridable in tests
}

type entry struct {
	mu         sync.Mutex
	timestamps []time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:   limit,
		window:  window,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (*Result, error) {
	e := l.entry(key)

	e.mu.Lock()
	defer e.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	kept := e.timestamps[:0]
	for _, ts := range e.timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	e.timestamps = kept

	if len(e.timestamps) >= l.limit {
		// Oldest kept timestamp leaves the window first.
		retry := e.timestamps[0].Add(l.window).Sub(now)
		if retry < 0 {
			retry = 0
		}
		return &Result{Allowed: false, Limit: l.limit, Remaining: 0, RetryAfter: retry}, nil
	}

	e.timestamps = append(e.timestamps, now)
	return &Result{
		Allowed:   true,
		Limit:     l.limit,
		Remaining: l.limit - len(e.timestamps),
	}, nil
}

func (l *MemoryLimiter) entry(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{}
		l.entries[key] = e
	}
	return e
}
