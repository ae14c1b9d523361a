package middleware

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/puzzlekit/puzzlekit/internal/auth"
	"github.com/puzzlekit/puzzlekit/internal/metrics"
	"github.com/puzzlekit/puzzlekit/internal/model"
	"github.com/puzzlekit/puzzlekit/internal/repository"
)

type staticUserSource struct {
	users map[string]*model.User
}

func (s *staticUserSource) GetUserByID(_ context.Context, id string) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeErrorEnvelope(t *testing.T, body io.Reader) (bool, string) {
	t.Helper()
	var envelope struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&envelope); err != nil {
		t.Fatalf("decoding error envelope: %v", err)
	}
	return envelope.Success, envelope.Error
}

func newAuthHandler(t *testing.T, tokens *auth.Tokens, users UserSource) http.Handler {
	t.Helper()
	mw := Auth(AuthConfig{
		Logger:  discardLogger(),
		Tokens:  tokens,
		Users:   users,
		Metrics: metrics.NewNoop(),
	})
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := auth.UserFromContext(r.Context())
		if user == nil {
			t.Error("expected a user in the request context")
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAuth_MissingToken(t *testing.T) {
	t.Parallel()

	tokens := auth.NewTokens("middleware-test-secret", time.Hour)
	handler := newAuthHandler(t, tokens, &staticUserSource{})

	for _, header := range []string{"", "Basic abc", "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/profile", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, rec.Code)
		}
		success, msg := decodeErrorEnvelope(t, rec.Body)
		if success || msg != "Access token required" {
			t.Errorf("header %q: envelope = (%v, %q)", header, success, msg)
		}
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	t.Parallel()

	tokens := auth.NewTokens("middleware-test-secret", time.Hour)
	other := auth.NewTokens("some-other-secret", time.Hour)

	forged, err := other.Issue("user-1")
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}

	handler := newAuthHandler(t, tokens, &staticUserSource{})

	for _, token := range []string{"not-a-jwt", forged} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/profile", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
		if _, msg := decodeErrorEnvelope(t, rec.Body); msg != "Invalid token" {
			t.Errorf("error message = %q, want %q", msg, "Invalid token")
		}
	}
}

func TestAuth_UnknownSubject(t *testing.T) {
	t.Parallel()

	tokens := auth.NewTokens("middleware-test-secret", time.Hour)
	token, err := tokens.Issue("deleted-user")
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}

	handler := newAuthHandler(t, tokens, &staticUserSource{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if _, msg := decodeErrorEnvelope(t, rec.Body); msg != "Invalid token" {
		t.Errorf("error message = %q, want %q", msg, "Invalid token")
	}
}

func TestAuth_ValidToken(t *testing.T) {
	t.Parallel()

	tokens := auth.NewTokens("middleware-test-secret", time.Hour)
	token, err := tokens.Issue("user-1")
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}

	users := &staticUserSource{users: map[string]*model.User{
		"user-1": {ID: "user-1", Email: "a@x.com"},
	}}

	var seen *model.User
	mw := Auth(AuthConfig{Logger: discardLogger(), Tokens: tokens, Users: users})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if seen == nil || seen.ID != "user-1" {
		t.Errorf("context user = %+v, want user-1", seen)
	}
}

func TestAuth_RejectionsAreCounted(t *testing.T) {
	t.Parallel()

	tokens := auth.NewTokens("middleware-test-secret", time.Hour)
	recorder := metrics.NewInMemory()
	mw := Auth(AuthConfig{
		Logger:  discardLogger(),
		Tokens:  tokens,
		Users:   &staticUserSource{},
		Metrics: recorder,
	})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/puzzles", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got := recorder.Snapshot().TokensRejected; got != 1 {
		t.Errorf("tokensRejected = %d, want 1", got)
	}
}
