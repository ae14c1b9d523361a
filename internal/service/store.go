// Package service provides business logic for the application.
package service

import (
	"context"

	"github.com/puzzlekit/puzzlekit/internal/model"
)

// UserStore is the persistence surface the auth and content services need
// for users. *repository.Repository satisfies it; tests use in-memory fakes.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUserUsage(ctx context.Context, user *model.User) error
	IncrementPuzzlesGenerated(ctx context.Context, userID string) error
	IncrementBooksCreated(ctx context.Context, userID string) error
}

// ContentStore is the persistence surface for puzzles and books.
type ContentStore interface {
	CreatePuzzle(ctx context.Context, puzzle *model.Puzzle) error
	ListPuzzlesByUser(ctx context.Context, userID string, limit int) ([]*model.Puzzle, error)
	CreateBook(ctx context.Context, book *model.Book) error
	ListBooksByUser(ctx context.Context, userID string, limit int) ([]*model.Book, error)
}
