package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestUser_ResetMonthlyUsage_SameMonth(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 20, 12, 0, 0, 0, time.UTC)
	user := &User{
		PuzzlesGenerated: 5,
		BooksCreated:     2,
		UsageLastReset:   time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
	}

	if user.ResetMonthlyUsage(now) {
		t.Error("expected no mutation within the same month")
	}

	if user.PuzzlesGenerated != 5 || user.BooksCreated != 2 {
		t.Errorf("counters changed unexpectedly: puzzles=%d books=%d", user.PuzzlesGenerated, user.BooksCreated)
	}
}

func TestUser_ResetMonthlyUsage_NewMonth(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.February, 2, 8, 0, 0, 0, time.UTC)
	user := &User{
		PuzzlesGenerated: 5,
		BooksCreated:     3,
		UsageLastReset:   time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC),
	}

	if !user.ResetMonthlyUsage(now) {
		t.Fatal("expected mutation when month rolls over")
	}

	if user.PuzzlesGenerated != 0 || user.BooksCreated != 0 {
		t.Errorf("counters not zeroed: puzzles=%d books=%d", user.PuzzlesGenerated, user.BooksCreated)
	}

	if !user.UsageLastReset.Equal(now) {
		t.Errorf("UsageLastReset not updated: got %s, want %s", user.UsageLastReset, now)
	}
}

func TestUser_ResetMonthlyUsage_SameMonthDifferentYear(t *testing.T) {
	t.Parallel()

	// January 2025 vs January 2026 must still reset.
	now := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	user := &User{
		PuzzlesGenerated: 9,
		UsageLastReset:   time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC),
	}

	if !user.ResetMonthlyUsage(now) {
		t.Fatal("expected mutation when year differs")
	}

	if user.PuzzlesGenerated != 0 {
		t.Errorf("expected puzzlesGenerated reset to 0, got %d", user.PuzzlesGenerated)
	}
}

func TestUser_JSONOmitsPasswordHash(t *testing.T) {
	t.Parallel()

	user := &User{
		ID:           "01HWXYZ",
		Email:        "a@x.com",
		PasswordHash: "$2a$12$supersecret",
	}

	data, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	if strings.Contains(string(data), "supersecret") {
		t.Errorf("password hash leaked into JSON: %s", data)
	}
}

func TestValidPuzzleType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		typ   PuzzleType
		valid bool
	}{
		{"sudoku", PuzzleSudoku, true},
		{"wordsearch", PuzzleWordSearch, true},
		{"maze", PuzzleMaze, true},
		{"nonogram", PuzzleNonogram, true},
		{"unknown", PuzzleType("crossword"), false},
		{"empty", PuzzleType(""), false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ValidPuzzleType(tt.typ); got != tt.valid {
				t.Errorf("ValidPuzzleType(%q) = %v, want %v", tt.typ, got, tt.valid)
			}
		})
	}
}

func TestValidSubscriptionTier(t *testing.T) {
	t.Parallel()

	if !ValidSubscriptionTier(TierFree) {
		t.Error("free tier should be valid")
	}
	if ValidSubscriptionTier(SubscriptionTier("platinum")) {
		t.Error("unknown tier should be invalid")
	}
}
