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

// PuzzleHandler handles puzzle storage and listing.
type PuzzleHandler struct {
	svc          *service.ContentService
	logger       *slog.Logger
	exposeErrors bool
}

// NewPuzzleHandler creates a new PuzzleHandler.
func NewPuzzleHandler(svc *service.ContentService, logger *slog.Logger, exposeErrors bool) *PuzzleHandler {
	return &PuzzleHandler{
		svc:          svc,
		logger:       logger,
		exposeErrors: exposeErrors,
	}
}

// Create handles POST /puzzles.
func (h *PuzzleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePuzzleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user := auth.MustUserFromContext(r.Context())

	input := service.CreatePuzzleInput{
		UserID:      user.ID,
		Type:        req.Type,
		PuzzleSVG:   req.PuzzleSVG,
		SolutionSVG: req.SolutionSVG,
		IsPublic:    req.IsPublic,
	}
	if req.Meta != nil {
		input.Difficulty = req.Meta.Difficulty
		input.Tags = req.Meta.Tags
	}

	puzzle, err := h.svc.CreatePuzzle(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("puzzle_created",
		"puzzle_id", puzzle.ID,
		"user_id", user.ID,
		"type", string(puzzle.Type),
	)

	writeSuccess(w, http.StatusCreated, puzzle, "Puzzle created successfully")
}

// List handles GET /puzzles. Returns the caller's most recent puzzles.
func (h *PuzzleHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())

	puzzles, err := h.svc.ListPuzzles(r.Context(), user.ID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	// Empty list, not null.
	if puzzles == nil {
		puzzles = []*model.Puzzle{}
	}

	writeSuccess(w, http.StatusOK, puzzles, "")
}

func (h *PuzzleHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidPuzzleType):
		writeError(w, http.StatusBadRequest, "Invalid puzzle type")
	case errors.Is(err, service.ErrPuzzleSVGRequired):
		writeError(w, http.StatusBadRequest, "Puzzle and solution SVG are required")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, internalErrorMessage(err, h.exposeErrors))
	}
}
