// Package testutil provides shared helpers for integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/puzzlekit/puzzlekit/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 710710

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema drops and recreates a named schema for tests.
// name is the migration base name, e.g. "000001_users".
func ResetSchema(ctx context.Context, pool *pgxpool.Pool, name string) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	downSQL, err := os.ReadFile(filepath.Join(root, "migrations", name+".down.sql"))
	if err != nil {
		return fmt.Errorf("read down migration: %w", err)
	}
	if _, err := pool.Exec(ctx, string(downSQL)); err != nil {
		return fmt.Errorf("apply down migration: %w", err)
	}

	upSQL, err := os.ReadFile(filepath.Join(root, "migrations", name+".up.sql"))
	if err != nil {
		return fmt.Errorf("read up migration: %w", err)
	}
	if _, err := pool.Exec(ctx, string(upSQL)); err != nil {
		return fmt.Errorf("apply up migration: %w", err)
	}

	return nil
}

// ResetAllSchemas recreates every table the API uses, children first on the
// way down.
func ResetAllSchemas(ctx context.Context, pool *pgxpool.Pool) error {
	for _, name := range []string{"000003_books", "000002_puzzles", "000001_users"} {
		root, err := ProjectRoot()
		if err != nil {
			return err
		}
		downSQL, err := os.ReadFile(filepath.Join(root, "migrations", name+".down.sql"))
		if err != nil {
			return fmt.Errorf("read down migration %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, string(downSQL)); err != nil {
			return fmt.Errorf("apply down migration %s: %w", name, err)
		}
	}

	for _, name := range []string{"000001_users", "000002_puzzles", "000003_books"} {
		if err := applyUp(ctx, pool, name); err != nil {
			return err
		}
	}

	return nil
}

func applyUp(ctx context.Context, pool *pgxpool.Pool, name string) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}
	upSQL, err := os.ReadFile(filepath.Join(root, "migrations", name+".up.sql"))
	if err != nil {
		return fmt.Errorf("read up migration %s: %w", name, err)
	}
	if _, err := pool.Exec(ctx, string(upSQL)); err != nil {
		return fmt.Errorf("apply up migration %s: %w", name, err)
	}
	return nil
}

// ProjectRoot resolves the repository root from this file's location.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a test user with sensible defaults and a unique email.
func NewTestUser(t testing.TB) *model.User {
	t.Helper()
	now := time.Now().UTC()
	id := ulid.Make().String()
	return &model.User{
		ID:               id,
		Name:             "Test User",
		Email:            fmt.Sprintf("user-%s@example.com", id),
		PasswordHash:     "$2a$04$C6UzMDM.H6dfI/f/IKcEeO6pGhldF0quFJ1rY3cBkFm9rF1dQVbZu",
		SubscriptionTier: model.TierFree,
		UsageLastReset:   now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// NewTestPuzzle creates a test puzzle owned by userID.
func NewTestPuzzle(t testing.TB, userID string) *model.Puzzle {
	t.Helper()
	now := time.Now().UTC()
	id := ulid.Make().String()
	return &model.Puzzle{
		ID:          id,
		FrontendID:  fmt.Sprintf("sudoku-%d-%s", now.UnixMilli(), id[:9]),
		UserID:      userID,
		Type:        model.PuzzleSudoku,
		PuzzleSVG:   "<svg><!-- puzzle --></svg>",
		SolutionSVG: "<svg><!-- solution --></svg>",
		Difficulty:  model.DifficultyMedium,
		Tags:        []string{"test"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewTestBook creates a test book owned by userID.
func NewTestBook(t testing.TB, userID string) *model.Book {
	t.Helper()
	now := time.Now().UTC()
	return &model.Book{
		ID:        ulid.Make().String(),
		UserID:    userID,
		Title:     "Test Book",
		Status:    model.BookDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
