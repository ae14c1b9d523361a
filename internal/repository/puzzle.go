package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/puzzlekit/puzzlekit/internal/model"
)

// ErrFrontendIDExists indicates a puzzle with the same frontend ID already exists.
var ErrFrontendIDExists = errors.New("frontend ID already exists")

// CreatePuzzle inserts a new puzzle into the database.
func (r *Repository) CreatePuzzle(ctx context.Context, puzzle *model.Puzzle) error {
	query := `
		INSERT INTO puzzles (id, frontend_id, user_id, type, puzzle_svg, solution_svg,
			difficulty, tags, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		puzzle.ID,
		puzzle.FrontendID,
		puzzle.UserID,
		puzzle.Type,
		puzzle.PuzzleSVG,
		puzzle.SolutionSVG,
		nullIfEmpty(string(puzzle.Difficulty)),
		pq.Array(puzzle.Tags),
		puzzle.IsPublic,
		puzzle.CreatedAt,
		puzzle.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrFrontendIDExists
		}
		return fmt.Errorf("failed to create puzzle: %w", err)
	}

	return nil
}

// ListPuzzlesByUser returns the user's puzzles, most recent first, capped at limit.
func (r *Repository) ListPuzzlesByUser(ctx context.Context, userID string, limit int) ([]*model.Puzzle, error) {
	query := `
		SELECT id, frontend_id, user_id, type, puzzle_svg, solution_svg,
			difficulty, tags, is_public, created_at, updated_at
		FROM puzzles
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list puzzles: %w", err)
	}
	defer rows.Close()

	puzzles := make([]*model.Puzzle, 0, limit)
	for rows.Next() {
		var p model.Puzzle
		var difficulty *string
		var tags []string

		err := rows.Scan(
			&p.ID,
			&p.FrontendID,
			&p.UserID,
			&p.Type,
			&p.PuzzleSVG,
			&p.SolutionSVG,
			&difficulty,
			pq.Array(&tags),
			&p.IsPublic,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan puzzle: %w", err)
		}

		if difficulty != nil {
			p.Difficulty = model.Difficulty(*difficulty)
		}
		p.Tags = tags
		puzzles = append(puzzles, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate puzzles: %w", err)
	}

	return puzzles, nil
}

// nullIfEmpty maps "" to SQL NULL for optional text columns.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
