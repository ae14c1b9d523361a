package model

import "time"

// BookStatus tracks a book through its publishing lifecycle.
type BookStatus string

// Book lifecycle states.
const (
	BookDraft     BookStatus = "draft"
	BookPublished BookStatus = "published"
	BookArchived  BookStatus = "archived"
)

// Book is a puzzle-book project owned by a user.
type Book struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      BookStatus `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
