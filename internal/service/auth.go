package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/puzzlekit/puzzlekit/internal/auth"
	"github.com/puzzlekit/puzzlekit/internal/metrics"
	"github.com/puzzlekit/puzzlekit/internal/model"
	"github.com/puzzlekit/puzzlekit/internal/repository"
)

// Service errors.
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNameRequired       = errors.New("name is required")
	ErrNameTooLong        = errors.New("name exceeds maximum length")
	ErrEmailInvalid       = errors.New("email address is invalid")
	ErrPasswordTooShort   = errors.New("password is too short")
)

// emailRegex is deliberately loose; the mailbox is the real validator.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	maxNameLength     = 50
	minPasswordLength = 6
)

// TokenPair carries the issued credentials for a session.
// RefreshToken holds the same value as Token: the API has no refresh
// rotation and repeats the access token for client compatibility. Do not
// treat it as an independent credential.
type TokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// AuthService handles registration, login, and profile retrieval.
type AuthService struct {
	users      UserStore
	tokens     *auth.Tokens
	bcryptCost int
	metrics    metrics.Recorder
	now        func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, tokens *auth.Tokens, bcryptCost int, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		metrics:    recorder,
		now:        time.Now,
	}
}

// RegisterInput defines input for registering a user.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates a new account and issues its first token pair.
// The password is hashed here, before anything touches the store.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, *TokenPair, error) {
	if err := validateRegisterInput(input); err != nil {
		return nil, nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	user := &model.User{
		ID:               ulid.Make().String(),
		Name:             strings.TrimSpace(input.Name),
		Email:            normalizeEmail(input.Email),
		PasswordHash:     hash,
		SubscriptionTier: model.TierFree,
		UsageLastReset:   now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, nil, ErrEmailTaken
		}
		return nil, nil, err
	}

	pair, err := s.issuePair(user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.metrics.IncUserRegistered()
	return user, pair, nil
}

// LoginInput defines input for logging in.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and issues a token pair. Unknown email and
// wrong password both return ErrInvalidCredentials so callers cannot probe
// which emails exist. The monthly usage rollover happens here, before the
// token is issued, and is persisted when it fires.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*model.User, *TokenPair, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLoginFailure()
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !auth.CheckPassword(input.Password, user.PasswordHash) {
		s.metrics.IncLoginFailure()
		return nil, nil, ErrInvalidCredentials
	}

	if user.ResetMonthlyUsage(s.now().UTC()) {
		if err := s.users.UpdateUserUsage(ctx, user); err != nil {
			return nil, nil, fmt.Errorf("failed to persist usage reset: %w", err)
		}
	}

	pair, err := s.issuePair(user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.metrics.IncLoginSuccess()
	return user, pair, nil
}

func (s *AuthService) issuePair(userID string) (*TokenPair, error) {
	token, err := s.tokens.Issue(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &TokenPair{Token: token, RefreshToken: token}, nil
}

func validateRegisterInput(input RegisterInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return ErrNameRequired
	}
	if len(name) > maxNameLength {
		return ErrNameTooLong
	}
	if !emailRegex.MatchString(normalizeEmail(input.Email)) {
		return ErrEmailInvalid
	}
	if len(input.Password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
