package ratelimit

import (
	"context"
	"sync"
	"time"
)

// clientWindow is one client's counter within the current fixed window.
type clientWindow struct {
	count   int
	resetAt time.Time
}

// MemoryStore is an in-process window table guarded by a mutex.
// State is lost on restart and not shared across instances; use the
// Redis-backed store for multi-instance deployments.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*clientWindow
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory window store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]*clientWindow),
		now:     time.Now,
	}
}

// Take implements Store.
func (s *MemoryStore) Take(_ context.Context, key string, window time.Duration, max int) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	// Passive sweep: expired windows across all clients are pruned on every
	// call, so no background timer is needed. O(active clients).
	for k, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, k)
		}
	}

	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &clientWindow{count: 1, resetAt: now.Add(window)}
		s.windows[key] = w
		return Result{
			Allowed:   true,
			Remaining: max - 1,
			ResetAt:   w.resetAt,
		}, nil
	}

	if w.count >= max {
		return Result{
			Allowed:    false,
			Remaining:  0,
			ResetAt:    w.resetAt,
			RetryAfter: w.resetAt.Sub(now),
		}, nil
	}

	w.count++
	return Result{
		Allowed:   true,
		Remaining: max - w.count,
		ResetAt:   w.resetAt,
	}, nil
}

// Len returns the number of active client windows. Used by tests.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}
