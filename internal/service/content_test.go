package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/puzzlekit/puzzlekit/internal/metrics"
	"github.com/puzzlekit/puzzlekit/internal/model"
)

func newTestContentService(store *fakeStore) *ContentService {
	return NewContentService(store, store, metrics.NewInMemory())
}

func seedUser(t *testing.T, store *fakeStore) *model.User {
	t.Helper()
	user := &model.User{
		ID:               ulid.Make().String(),
		Name:             "Test User",
		Email:            strings.ToLower(ulid.Make().String()) + "@example.com",
		PasswordHash:     "irrelevant",
		SubscriptionTier: model.TierFree,
		UsageLastReset:   time.Now().UTC(),
	}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestContentService_CreatePuzzle(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := newTestContentService(store)
	user := seedUser(t, store)

	puzzle, err := svc.CreatePuzzle(context.Background(), CreatePuzzleInput{
		UserID:      user.ID,
		Type:        "sudoku",
		PuzzleSVG:   "<svg/>",
		SolutionSVG: "<svg/>",
		Difficulty:  "Medium",
		Tags:        []string{"daily"},
	})
	if err != nil {
		t.Fatalf("CreatePuzzle failed: %v", err)
	}

	if puzzle.ID == "" {
		t.Error("expected a generated ID")
	}
	if puzzle.Type != model.PuzzleSudoku {
		t.Errorf("type = %q, want sudoku", puzzle.Type)
	}

	owner, err := store.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if owner.PuzzlesGenerated != 1 {
		t.Errorf("puzzlesGenerated = %d, want 1", owner.PuzzlesGenerated)
	}
}

func TestContentService_CreatePuzzle_FrontendID(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := newTestContentService(store)
	user := seedUser(t, store)

	puzzle, err := svc.CreatePuzzle(context.Background(), CreatePuzzleInput{
		UserID:      user.ID,
		Type:        "wordsearch",
		PuzzleSVG:   "<svg/>",
		SolutionSVG: "<svg/>",
	})
	if err != nil {
		t.Fatalf("CreatePuzzle failed: %v", err)
	}

	pattern := regexp.MustCompile(`^wordsearch-\d+-[a-z0-9]{9}$`)
	if !pattern.MatchString(puzzle.FrontendID) {
		t.Errorf("frontend ID %q does not match <type>-<ms>-<suffix>", puzzle.FrontendID)
	}
}

func TestContentService_CreatePuzzle_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   CreatePuzzleInput
		wantErr error
	}{
		{"unknown type", CreatePuzzleInput{Type: "crossword", PuzzleSVG: "x", SolutionSVG: "x"}, ErrInvalidPuzzleType},
		{"missing puzzle svg", CreatePuzzleInput{Type: "maze", SolutionSVG: "x"}, ErrPuzzleSVGRequired},
		{"missing solution svg", CreatePuzzleInput{Type: "maze", PuzzleSVG: "x"}, ErrPuzzleSVGRequired},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := newFakeStore()
			svc := newTestContentService(store)
			tt.input.UserID = seedUser(t, store).ID

			_, err := svc.CreatePuzzle(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreatePuzzle() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestContentService_CreatePuzzle_CounterFailureSurfaces(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := newTestContentService(store)
	user := seedUser(t, store)
	store.failIncrement = true

	_, err := svc.CreatePuzzle(context.Background(), CreatePuzzleInput{
		UserID:      user.ID,
		Type:        "maze",
		PuzzleSVG:   "<svg/>",
		SolutionSVG: "<svg/>",
	})
	if err == nil {
		t.Fatal("expected an error when the counter update fails")
	}
	// The puzzle itself was still written; the two writes are not atomic.
	if len(store.puzzles) != 1 {
		t.Errorf("stored puzzles = %d, want 1", len(store.puzzles))
	}
}

func TestContentService_ListPuzzles(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := newTestContentService(store)
	user := seedUser(t, store)
	other := seedUser(t, store)
	ctx := context.Background()

	base := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		store.puzzles = append(store.puzzles, &model.Puzzle{
			ID:        ulid.Make().String(),
			UserID:    user.ID,
			Type:      model.PuzzleMaze,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	store.puzzles = append(store.puzzles, &model.Puzzle{
		ID:        ulid.Make().String(),
		UserID:    other.ID,
		Type:      model.PuzzleMaze,
		CreatedAt: base.Add(time.Hour),
	})

	puzzles, err := svc.ListPuzzles(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListPuzzles failed: %v", err)
	}

	if len(puzzles) != listLimit {
		t.Fatalf("got %d puzzles, want %d", len(puzzles), listLimit)
	}
	for _, p := range puzzles {
		if p.UserID != user.ID {
			t.Fatalf("got a puzzle owned by %s", p.UserID)
		}
	}
	for i := 1; i < len(puzzles); i++ {
		if puzzles[i].CreatedAt.After(puzzles[i-1].CreatedAt) {
			t.Fatal("puzzles not ordered newest first")
		}
	}
}

func TestContentService_CreateBook(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := newTestContentService(store)
	user := seedUser(t, store)

	book, err := svc.CreateBook(context.Background(), CreateBookInput{
		UserID:      user.ID,
		Title:       "  Spring Collection  ",
		Description: "A book of mazes",
	})
	if err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}

	if book.Title != "Spring Collection" {
		t.Errorf("title not trimmed: %q", book.Title)
	}
	if book.Status != model.BookDraft {
		t.Errorf("status = %q, want draft", book.Status)
	}

	owner, err := store.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if owner.BooksCreated != 1 {
		t.Errorf("booksCreated = %d, want 1", owner.BooksCreated)
	}
}

func TestContentService_CreateBook_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   CreateBookInput
		wantErr error
	}{
		{"missing title", CreateBookInput{}, ErrTitleRequired},
		{"blank title", CreateBookInput{Title: "   "}, ErrTitleRequired},
		{"title too long", CreateBookInput{Title: longString(101)}, ErrTitleTooLong},
		{"description too long", CreateBookInput{Title: "ok", Description: longString(501)}, ErrDescriptionTooLong},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := newFakeStore()
			svc := newTestContentService(store)
			tt.input.UserID = seedUser(t, store).ID

			_, err := svc.CreateBook(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateBook() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
