package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/puzzlekit/puzzlekit/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
)

const userColumns = `id, name, email, password_hash, is_verified, subscription_tier,
		puzzles_generated, books_created, usage_last_reset, created_at, updated_at`

// CreateUser inserts a new user into the database.
// The password hash must already be computed; this layer never sees plaintext.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, is_verified, subscription_tier,
			puzzles_generated, books_created, usage_last_reset, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.IsVerified,
		user.SubscriptionTier,
		user.PuzzlesGenerated,
		user.BooksCreated,
		user.UsageLastReset,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// UpdateUserUsage persists the usage counters and reset timestamp.
// Called after ResetMonthlyUsage mutates the user at login.
func (r *Repository) UpdateUserUsage(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET puzzles_generated = $2, books_created = $3, usage_last_reset = $4, updated_at = now()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		user.ID,
		user.PuzzlesGenerated,
		user.BooksCreated,
		user.UsageLastReset,
	)
	if err != nil {
		return fmt.Errorf("failed to update user usage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// IncrementPuzzlesGenerated adds one to the user's puzzle counter.
// The increment happens in SQL so concurrent requests from the same user
// cannot lose updates.
func (r *Repository) IncrementPuzzlesGenerated(ctx context.Context, userID string) error {
	return r.incrementUsage(ctx, userID, "puzzles_generated")
}

// IncrementBooksCreated adds one to the user's book counter.
func (r *Repository) IncrementBooksCreated(ctx context.Context, userID string) error {
	return r.incrementUsage(ctx, userID, "books_created")
}

func (r *Repository) incrementUsage(ctx context.Context, userID, column string) error {
	// column is one of two compile-time constants, never user input.
	query := `UPDATE users SET ` + column + ` = ` + column + ` + 1, updated_at = now() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", column, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// scanUser reads one user row.
func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.IsVerified,
		&user.SubscriptionTier,
		&user.PuzzlesGenerated,
		&user.BooksCreated,
		&user.UsageLastReset,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
