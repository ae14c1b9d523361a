//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/oklog/ulid/v2"

	"github.com/puzzlekit/puzzlekit/internal/testutil"
)

func newTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetAllSchemas(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schemas: %v", err)
	}

	return ctx, repo
}

func TestIntegrationUserRepository_CreateAndGet(t *testing.T) {
	ctx, repo := newTestEnv(t)

	user := testutil.NewTestUser(t)
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	retrieved, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if retrieved.Email != user.Email {
		t.Errorf("Email mismatch: got %q, want %q", retrieved.Email, user.Email)
	}
	if retrieved.PasswordHash != user.PasswordHash {
		t.Error("PasswordHash not round-tripped")
	}

	byEmail, err := repo.GetUserByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Errorf("ID mismatch: got %q, want %q", byEmail.ID, user.ID)
	}
}

func TestIntegrationUserRepository_DuplicateEmail(t *testing.T) {
	ctx, repo := newTestEnv(t)

	user1 := testutil.NewTestUser(t)
	user2 := testutil.NewTestUser(t)
	user2.Email = user1.Email

	if err := repo.CreateUser(ctx, user1); err != nil {
		t.Fatalf("CreateUser (first) failed: %v", err)
	}

	err := repo.CreateUser(ctx, user2)
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got: %v", err)
	}
}

func TestIntegrationUserRepository_NotFound(t *testing.T) {
	ctx, repo := newTestEnv(t)

	if _, err := repo.GetUserByID(ctx, ulid.Make().String()); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound by ID, got: %v", err)
	}
	if _, err := repo.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound by email, got: %v", err)
	}
}

func TestIntegrationUserRepository_IncrementCounters(t *testing.T) {
	ctx, repo := newTestEnv(t)

	user := testutil.NewTestUser(t)
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if err := repo.IncrementPuzzlesGenerated(ctx, user.ID); err != nil {
		t.Fatalf("IncrementPuzzlesGenerated failed: %v", err)
	}
	if err := repo.IncrementPuzzlesGenerated(ctx, user.ID); err != nil {
		t.Fatalf("IncrementPuzzlesGenerated failed: %v", err)
	}
	if err := repo.IncrementBooksCreated(ctx, user.ID); err != nil {
		t.Fatalf("IncrementBooksCreated failed: %v", err)
	}

	retrieved, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if retrieved.PuzzlesGenerated != 2 {
		t.Errorf("PuzzlesGenerated = %d, want 2", retrieved.PuzzlesGenerated)
	}
	if retrieved.BooksCreated != 1 {
		t.Errorf("BooksCreated = %d, want 1", retrieved.BooksCreated)
	}
}

func TestIntegrationUserRepository_UpdateUsage(t *testing.T) {
	ctx, repo := newTestEnv(t)

	user := testutil.NewTestUser(t)
	user.PuzzlesGenerated = 7
	user.BooksCreated = 3
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	user.PuzzlesGenerated = 0
	user.BooksCreated = 0
	user.UsageLastReset = user.UsageLastReset.AddDate(0, 1, 0)

	if err := repo.UpdateUserUsage(ctx, user); err != nil {
		t.Fatalf("UpdateUserUsage failed: %v", err)
	}

	retrieved, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if retrieved.PuzzlesGenerated != 0 || retrieved.BooksCreated != 0 {
		t.Errorf("counters not reset: puzzles=%d books=%d", retrieved.PuzzlesGenerated, retrieved.BooksCreated)
	}
}

func TestIntegrationUserRepository_IncrementMissingUser(t *testing.T) {
	ctx, repo := newTestEnv(t)

	err := repo.IncrementPuzzlesGenerated(ctx, ulid.Make().String())
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got: %v", err)
	}
}
