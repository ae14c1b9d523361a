package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/puzzlekit/puzzlekit/internal/auth"
	"github.com/puzzlekit/puzzlekit/internal/metrics"
	"github.com/puzzlekit/puzzlekit/internal/model"
)

// UserSource resolves a verified token subject to a stored user.
type UserSource interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger  *slog.Logger
	Tokens  *auth.Tokens
	Users   UserSource
	Metrics metrics.Recorder
}

// Auth returns a middleware that authenticates API requests. It extracts
// the bearer token from the Authorization header, verifies it, loads the
// user it names, and injects the user into the request context.
//
// A missing token reports "Access token required"; every other failure,
// including a valid token whose user no longer exists, collapses into
// "Invalid token".
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_token"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeErrorEnvelope(w, http.StatusUnauthorized, "Access token required")
				return
			}

			subject, err := cfg.Tokens.Verify(token)
			if err != nil {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "invalid_token"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				recorder.IncTokenRejected()
				writeErrorEnvelope(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			user, err := cfg.Users.GetUserByID(r.Context(), subject)
			if err != nil {
				// A deleted user's still-valid token must stop working.
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "unknown_subject"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				recorder.IncTokenRejected()
				writeErrorEnvelope(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			ctx := auth.ContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken pulls the token out of "Authorization: Bearer <token>".
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
