package repository

import (
	"context"
	"fmt"

	"github.com/puzzlekit/puzzlekit/internal/model"
)

// CreateBook inserts a new book into the database.
func (r *Repository) CreateBook(ctx context.Context, book *model.Book) error {
	query := `
		INSERT INTO books (id, user_id, title, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		book.ID,
		book.UserID,
		book.Title,
		book.Description,
		book.Status,
		book.CreatedAt,
		book.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}

	return nil
}

// ListBooksByUser returns the user's books, most recently updated first,
// capped at limit.
func (r *Repository) ListBooksByUser(ctx context.Context, userID string, limit int) ([]*model.Book, error) {
	query := `
		SELECT id, user_id, title, description, status, created_at, updated_at
		FROM books
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	books := make([]*model.Book, 0, limit)
	for rows.Next() {
		var b model.Book
		err := rows.Scan(
			&b.ID,
			&b.UserID,
			&b.Title,
			&b.Description,
			&b.Status,
			&b.CreatedAt,
			&b.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate books: %w", err)
	}

	return books, nil
}
