package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/puzzlekit/puzzlekit/internal/auth"
	"github.com/puzzlekit/puzzlekit/internal/handler/dto"
	"github.com/puzzlekit/puzzlekit/internal/service"
)

// AuthHandler handles registration, login and profile requests.
type AuthHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
	// exposeErrors leaks internal error detail in 500 responses.
	// Enabled in development only.
	exposeErrors bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger, exposeErrors bool) *AuthHandler {
	return &AuthHandler{
		svc:          svc,
		logger:       logger,
		exposeErrors: exposeErrors,
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, pair, err := h.svc.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("user_registered",
		"user_id", user.ID,
		"tier", string(user.SubscriptionTier),
	)

	writeSuccess(w, http.StatusCreated, dto.AuthResponse{
		User:         user,
		Token:        pair.Token,
		RefreshToken: pair.RefreshToken,
	}, "User registered successfully")
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, pair, err := h.svc.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("user_logged_in", "user_id", user.ID)

	writeSuccess(w, http.StatusOK, dto.AuthResponse{
		User:         user,
		Token:        pair.Token,
		RefreshToken: pair.RefreshToken,
	}, "Login successful")
}

// Profile handles GET /auth/profile. The auth middleware has already
// resolved the user.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())
	writeSuccess(w, http.StatusOK, user, "Profile retrieved successfully")
}

// handleServiceError maps service errors to HTTP responses.
func (h *AuthHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, "User with this email already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrNameRequired):
		writeError(w, http.StatusBadRequest, "Name is required")
	case errors.Is(err, service.ErrNameTooLong):
		writeError(w, http.StatusBadRequest, "Name must be at most 50 characters")
	case errors.Is(err, service.ErrEmailInvalid):
		writeError(w, http.StatusBadRequest, "A valid email is required")
	case errors.Is(err, service.ErrPasswordTooShort):
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, internalErrorMessage(err, h.exposeErrors))
	}
}

// internalErrorMessage redacts error detail unless exposeErrors is set.
func internalErrorMessage(err error, expose bool) string {
	if expose && err != nil {
		return err.Error()
	}
	return "Internal server error"
}
