// Package main is the entrypoint for the PuzzleKit API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/puzzlekit/puzzlekit/internal/auth"
	"github.com/puzzlekit/puzzlekit/internal/cache"
	"github.com/puzzlekit/puzzlekit/internal/config"
	"github.com/puzzlekit/puzzlekit/internal/handler"
	"github.com/puzzlekit/puzzlekit/internal/metrics"
	"github.com/puzzlekit/puzzlekit/internal/middleware"
	"github.com/puzzlekit/puzzlekit/internal/ratelimit"
	"github.com/puzzlekit/puzzlekit/internal/repository"
	"github.com/puzzlekit/puzzlekit/internal/server"
	"github.com/puzzlekit/puzzlekit/internal/service"
)

func main() {
	ctx := context.Background()

	// Load configuration. Validation failures (placeholder JWT secret,
	// weak bcrypt cost outside development) are fatal here.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// The rate limit store is selected by configuration: a single node
	// keeps windows in process memory, a fleet shares them via Redis.
	var (
		windowStore ratelimit.Store
		cacheClient *cache.Cache
	)
	if cfg.RateLimitStore == config.RateLimitStoreRedis {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		defer cacheClient.Close()
		logger.Info("connected to Redis")
		windowStore = cache.NewWindowStore(cacheClient)
	} else {
		windowStore = ratelimit.NewMemoryStore()
	}

	globalLimiter := ratelimit.New(windowStore, cfg.RateLimitWindow, cfg.RateLimitMax)
	authLimiter := ratelimit.New(windowStore, cfg.RateLimitWindow, cfg.AuthRateLimitMax)

	// Initialize services
	recorder := metrics.NewNoop()
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(repo, tokens, cfg.BcryptCost, recorder)
	contentService := service.NewContentService(repo, repo, recorder)

	// Initialize handlers
	exposeErrors := cfg.IsDevelopment()
	// A nil *cache.Cache must not become a non-nil HealthChecker.
	var cachePing handler.HealthChecker
	if cacheClient != nil {
		cachePing = cacheClient
	}
	healthHandler := handler.NewHealthHandler(repo, cachePing)
	authHandler := handler.NewAuthHandler(authService, logger, exposeErrors)
	puzzleHandler := handler.NewPuzzleHandler(contentService, logger, exposeErrors)
	bookHandler := handler.NewBookHandler(contentService, logger, exposeErrors)

	r := setupRouter(routerDeps{
		cfg:           cfg,
		logger:        logger,
		recorder:      recorder,
		tokens:        tokens,
		repo:          repo,
		globalLimiter: globalLimiter,
		authLimiter:   authLimiter,
		health:        healthHandler,
		auth:          authHandler,
		puzzles:       puzzleHandler,
		books:         bookHandler,
	})

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"api_prefix", cfg.APIPrefix,
		"rate_limit_store", cfg.RateLimitStore,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// routerDeps bundles everything setupRouter needs.
type routerDeps struct {
	cfg           *config.Config
	logger        *slog.Logger
	recorder      metrics.Recorder
	tokens        *auth.Tokens
	repo          *repository.Repository
	globalLimiter *ratelimit.Limiter
	authLimiter   *ratelimit.Limiter
	health        *handler.HealthHandler
	auth          *handler.AuthHandler
	puzzles       *handler.PuzzleHandler
	books         *handler.BookHandler
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware. The global rate limit window applies to every
	// route, including health; the auth limiter stacks on top of it for
	// the credential endpoints.
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: d.cfg.IsDevelopment()}))
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = d.cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.Recoverer(d.logger))
	r.Use(middleware.MaxBodySize(d.cfg.MaxRequestBodySize))
	r.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Logger:  d.logger,
		Limiter: d.globalLimiter,
		Metrics: d.recorder,
		Scope:   "global",
	}))

	// Probe endpoints outside the API prefix
	r.Get("/healthz", d.health.Healthz)
	r.Get("/readyz", d.health.Readyz)

	authLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Logger:  d.logger,
		Limiter: d.authLimiter,
		Metrics: d.recorder,
		Scope:   "auth",
	})

	requireAuth := middleware.Auth(middleware.AuthConfig{
		Logger:  d.logger,
		Tokens:  d.tokens,
		Users:   d.repo,
		Metrics: d.recorder,
	})

	r.Route(d.cfg.APIPrefix, func(r chi.Router) {
		r.Get("/health", d.health.Health)

		r.Route("/auth", func(r chi.Router) {
			r.With(authLimit).Post("/register", d.auth.Register)
			r.With(authLimit).Post("/login", d.auth.Login)
			r.With(requireAuth).Get("/profile", d.auth.Profile)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/puzzles", d.puzzles.List)
			r.Post("/puzzles", d.puzzles.Create)
			r.Get("/books", d.books.List)
			r.Post("/books", d.books.Create)
		})
	})

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

// redactURL strips credentials from a connection URL before logging.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

// sanitizeError removes known secrets from an error message.
func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
