package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/puzzlekit/puzzlekit/internal/metrics"
	"github.com/puzzlekit/puzzlekit/internal/ratelimit"
)

// anonymousClient buckets requests whose client cannot be identified.
// They all share one window rather than bypassing the limiter.
const anonymousClient = "anonymous"

// RateLimitConfig holds configuration for the rate limiting middleware.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Limiter *ratelimit.Limiter
	Metrics metrics.Recorder
	// Scope labels the limiter in logs and metrics ("global" or "auth") and
	// namespaces its window keys, so limiters sharing one Store count
	// independently.
	Scope string
}

// RateLimit returns middleware that throttles requests per client IP using
// a fixed window. Every response carries X-RateLimit-* headers; rejections
// add Retry-After and the standard 429 envelope. Store errors fail open.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := clientKey(r)

			result, err := cfg.Limiter.Check(r.Context(), cfg.Scope+":"+client)
			if err != nil {
				cfg.Logger.Error("rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("scope", cfg.Scope),
					slog.String("client", client),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				// Fail open - allow request
				next.ServeHTTP(w, r)
				return
			}

			setRateLimitHeaders(w, cfg.Limiter.Max(), result.Remaining, result.ResetAt)

			if !result.Allowed {
				retryAfter := ratelimit.RetryAfterSeconds(result.RetryAfter)

				cfg.Logger.Warn("rate limit exceeded",
					slog.String("scope", cfg.Scope),
					slog.String("client", client),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Int("retry_after_seconds", retryAfter),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				recorder.IncRateLimitRejected(cfg.Scope)

				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				writeErrorEnvelope(w, http.StatusTooManyRequests, "Too many requests, please try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// setRateLimitHeaders sets standard rate limit response headers.
func setRateLimitHeaders(w http.ResponseWriter, limit, remaining int, resetAt time.Time) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
}

// clientKey extracts the client identity used for rate limiting.
// Checks X-Forwarded-For and X-Real-IP for proxied requests, then falls
// back to RemoteAddr; unidentifiable clients share the anonymous bucket.
func clientKey(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		// Take the first IP (client IP)
		for i := range xff {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	if r.RemoteAddr != "" {
		// Drop the ephemeral port: each connection from one host must land
		// in the same window.
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host
		}
		return r.RemoteAddr
	}

	return anonymousClient
}
