package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/puzzlekit/puzzlekit/internal/auth"
	"github.com/puzzlekit/puzzlekit/internal/handler/dto"
	"github.com/puzzlekit/puzzlekit/internal/model"
	"github.com/puzzlekit/puzzlekit/internal/service"
)

// BookHandler handles book creation and listing.
type BookHandler struct {
	svc          *service.ContentService
	logger       *slog.Logger
	exposeErrors bool
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(svc *service.ContentService, logger *slog.Logger, exposeErrors bool) *BookHandler {
	return &BookHandler{
		svc:          svc,
		logger:       logger,
		exposeErrors: exposeErrors,
	}
}

// Create handles POST /books.
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user := auth.MustUserFromContext(r.Context())

	book, err := h.svc.CreateBook(r.Context(), service.CreateBookInput{
		UserID:      user.ID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("book_created",
		"book_id", book.ID,
		"user_id", user.ID,
	)

	writeSuccess(w, http.StatusCreated, book, "Book created successfully")
}

// List handles GET /books. Returns the caller's most recently updated books.
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())

	books, err := h.svc.ListBooks(r.Context(), user.ID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	if books == nil {
		books = []*model.Book{}
	}

	writeSuccess(w, http.StatusOK, books, "")
}

func (h *BookHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrTitleRequired):
		writeError(w, http.StatusBadRequest, "Title is required")
	case errors.Is(err, service.ErrTitleTooLong):
		writeError(w, http.StatusBadRequest, "Title must be at most 100 characters")
	case errors.Is(err, service.ErrDescriptionTooLong):
		writeError(w, http.StatusBadRequest, "Description must be at most 500 characters")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, internalErrorMessage(err, h.exposeErrors))
	}
}
