package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered        uint64
	LoginSuccesses         uint64
	LoginFailures          uint64
	TokensRejected         uint64
	RateLimitRejectsGlobal uint64
	RateLimitRejectsAuth   uint64
	PuzzlesCreated         uint64
	BooksCreated           uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	usersRegistered        uint64
	loginSuccesses         uint64
	loginFailures          uint64
	tokensRejected         uint64
	rateLimitRejectsGlobal uint64
	rateLimitRejectsAuth   uint64
	puzzlesCreated         uint64
	booksCreated           uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersRegistered:        atomic.LoadUint64(&m.usersRegistered),
		LoginSuccesses:         atomic.LoadUint64(&m.loginSuccesses),
		LoginFailures:          atomic.LoadUint64(&m.loginFailures),
		TokensRejected:         atomic.LoadUint64(&m.tokensRejected),
		RateLimitRejectsGlobal: atomic.LoadUint64(&m.rateLimitRejectsGlobal),
		RateLimitRejectsAuth:   atomic.LoadUint64(&m.rateLimitRejectsAuth),
		PuzzlesCreated:         atomic.LoadUint64(&m.puzzlesCreated),
		BooksCreated:           atomic.LoadUint64(&m.booksCreated),
	}
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncLoginSuccess increments the successful login counter.
func (m *InMemoryRecorder) IncLoginSuccess() {
	atomic.AddUint64(&m.loginSuccesses, 1)
}

// IncLoginFailure increments the failed login counter.
func (m *InMemoryRecorder) IncLoginFailure() {
	atomic.AddUint64(&m.loginFailures, 1)
}

// IncTokenRejected increments the rejected token counter.
func (m *InMemoryRecorder) IncTokenRejected() {
	atomic.AddUint64(&m.tokensRejected, 1)
}

// IncRateLimitRejected increments the rejection counter for the given scope.
func (m *InMemoryRecorder) IncRateLimitRejected(scope string) {
	if scope == "auth" {
		atomic.AddUint64(&m.rateLimitRejectsAuth, 1)
		return
	}
	atomic.AddUint64(&m.rateLimitRejectsGlobal, 1)
}

// IncPuzzleCreated increments the puzzle counter.
func (m *InMemoryRecorder) IncPuzzleCreated() {
	atomic.AddUint64(&m.puzzlesCreated, 1)
}

// IncBookCreated increments the book counter.
func (m *InMemoryRecorder) IncBookCreated() {
	atomic.AddUint64(&m.booksCreated, 1)
}
