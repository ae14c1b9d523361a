package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/puzzlekit/puzzlekit/internal/metrics"
	"github.com/puzzlekit/puzzlekit/internal/model"
)

// Content service errors.
var (
	ErrInvalidPuzzleType  = errors.New("invalid puzzle type")
	ErrPuzzleSVGRequired  = errors.New("puzzle and solution SVG are required")
	ErrTitleRequired      = errors.New("title is required")
	ErrTitleTooLong       = errors.New("title exceeds maximum length")
	ErrDescriptionTooLong = errors.New("description exceeds maximum length")
)

const (
	// listLimit caps every list response at the 20 most recent records.
	listLimit = 20

	maxTitleLength       = 100
	maxDescriptionLength = 500

	frontendIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	frontendIDRandLen  = 9
)

// ContentService handles puzzle and book operations.
type ContentService struct {
	content ContentStore
	users   UserStore
	metrics metrics.Recorder
	now     func() time.Time
}

// NewContentService creates a new ContentService.
func NewContentService(content ContentStore, users UserStore, recorder metrics.Recorder) *ContentService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ContentService{
		content: content,
		users:   users,
		metrics: recorder,
		now:     time.Now,
	}
}

// CreatePuzzleInput defines input for storing a puzzle.
type CreatePuzzleInput struct {
	UserID      string
	Type        string
	PuzzleSVG   string
	SolutionSVG string
	Difficulty  string
	Tags        []string
	IsPublic    bool
}

// CreatePuzzle stores a puzzle and bumps the owner's usage counter.
// The counter update is a second, separate write: a failure after the insert
// leaves the puzzle stored with a stale counter. Accepted trade-off; a
// transaction would couple the content store to the user store.
func (s *ContentService) CreatePuzzle(ctx context.Context, input CreatePuzzleInput) (*model.Puzzle, error) {
	puzzleType := model.PuzzleType(input.Type)
	if !model.ValidPuzzleType(puzzleType) {
		return nil, ErrInvalidPuzzleType
	}
	if input.PuzzleSVG == "" || input.SolutionSVG == "" {
		return nil, ErrPuzzleSVGRequired
	}

	now := s.now().UTC()
	puzzle := &model.Puzzle{
		ID:          ulid.Make().String(),
		FrontendID:  s.generateFrontendID(string(puzzleType), now),
		UserID:      input.UserID,
		Type:        puzzleType,
		PuzzleSVG:   input.PuzzleSVG,
		SolutionSVG: input.SolutionSVG,
		Difficulty:  model.Difficulty(input.Difficulty),
		Tags:        input.Tags,
		IsPublic:    input.IsPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if puzzle.Tags == nil {
		puzzle.Tags = []string{}
	}

	if err := s.content.CreatePuzzle(ctx, puzzle); err != nil {
		return nil, err
	}

	if err := s.users.IncrementPuzzlesGenerated(ctx, input.UserID); err != nil {
		return nil, fmt.Errorf("puzzle stored but counter update failed: %w", err)
	}

	s.metrics.IncPuzzleCreated()
	return puzzle, nil
}

// ListPuzzles returns the user's puzzles, most recent first.
func (s *ContentService) ListPuzzles(ctx context.Context, userID string) ([]*model.Puzzle, error) {
	return s.content.ListPuzzlesByUser(ctx, userID, listLimit)
}

// CreateBookInput defines input for creating a book.
type CreateBookInput struct {
	UserID      string
	Title       string
	Description string
}

// CreateBook stores a book and bumps the owner's usage counter.
// Same two-write pattern as CreatePuzzle.
func (s *ContentService) CreateBook(ctx context.Context, input CreateBookInput) (*model.Book, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if len(title) > maxTitleLength {
		return nil, ErrTitleTooLong
	}
	if len(input.Description) > maxDescriptionLength {
		return nil, ErrDescriptionTooLong
	}

	now := s.now().UTC()
	book := &model.Book{
		ID:          ulid.Make().String(),
		UserID:      input.UserID,
		Title:       title,
		Description: input.Description,
		Status:      model.BookDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.content.CreateBook(ctx, book); err != nil {
		return nil, err
	}

	if err := s.users.IncrementBooksCreated(ctx, input.UserID); err != nil {
		return nil, fmt.Errorf("book stored but counter update failed: %w", err)
	}

	s.metrics.IncBookCreated()
	return book, nil
}

// ListBooks returns the user's books, most recently updated first.
func (s *ContentService) ListBooks(ctx context.Context, userID string) ([]*model.Book, error) {
	return s.content.ListBooksByUser(ctx, userID, listLimit)
}

// generateFrontendID builds the client-facing identifier the web app expects:
// "<type>-<unix ms>-<random suffix>".
func (s *ContentService) generateFrontendID(puzzleType string, now time.Time) string {
	suffix := make([]byte, frontendIDRandLen)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(frontendIDAlphabet))))
		if err != nil {
			// crypto/rand failure is effectively unreachable; fall back to
			// the ULID entropy already in hand.
			return fmt.Sprintf("%s-%d-%s", puzzleType, now.UnixMilli(), strings.ToLower(ulid.Make().String()[:frontendIDRandLen]))
		}
		suffix[i] = frontendIDAlphabet[n.Int64()]
	}
	return fmt.Sprintf("%s-%d-%s", puzzleType, now.UnixMilli(), suffix)
}
