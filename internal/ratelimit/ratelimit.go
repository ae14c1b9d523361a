// Package ratelimit implements fixed-window per-client request throttling.
//
// A window counts requests from one client and resets wholesale once its
// deadline passes. State lives in an injected Store so tests get isolated
// tables and deployments can swap in a shared Redis-backed store.
package ratelimit

import (
	"context"
	"time"
)

// Result describes the outcome of a rate limit check.
type Result struct {
	Allowed    bool
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Store tracks request counts per client key within fixed windows.
// Implementations must be safe for concurrent use.
type Store interface {
	// Take records one request for key and reports whether it fits within
	// max requests per window. Crossing a window boundary replaces the
	// entry atomically with count=1 and a fresh deadline.
	Take(ctx context.Context, key string, window time.Duration, max int) (Result, error)
}

// Limiter binds a Store to one window/max policy.
type Limiter struct {
	store  Store
	window time.Duration
	max    int
}

// New creates a Limiter with the given policy.
func New(store Store, window time.Duration, max int) *Limiter {
	return &Limiter{
		store:  store,
		window: window,
		max:    max,
	}
}

// Check records a request from clientKey and returns the decision.
func (l *Limiter) Check(ctx context.Context, clientKey string) (Result, error) {
	return l.store.Take(ctx, clientKey, l.window, l.max)
}

// Window returns the configured window duration.
func (l *Limiter) Window() time.Duration {
	return l.window
}

// Max returns the configured per-window request cap.
func (l *Limiter) Max() int {
	return l.max
}

// RetryAfterSeconds converts a retry hint to whole seconds, rounding up so
// a client that waits the advertised time always lands in the next window.
func RetryAfterSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}
