// Package main is the entrypoint for the skufinder API server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/skufinder/skufinder/internal/artifact"
	"github.com/skufinder/skufinder/internal/config"
	"github.com/skufinder/skufinder/internal/handler"
	"github.com/skufinder/skufinder/internal/metrics"
	"github.com/skufinder/skufinder/internal/middleware"
	"github.com/skufinder/skufinder/internal/repository"
	"github.com/skufinder/skufinder/internal/server"
	"github.com/skufinder/skufinder/internal/service"
	"github.com/skufinder/skufinder/internal/session"
	"github.com/skufinder/skufinder/internal/upc"
)

const version = "1.0.0"

func main() {
	ctx := context.Background()

	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if err := cfg.Validate(); err != nil {
		if !errors.Is(err, config.ErrLookupNotConfigured) {
			logger.Error("invalid configuration", slog.String("error", err.Error()))
			os.Exit(1)
		}
		// Lookups fail fast until the key is provided; the server still
		// serves health checks and the login flow.
		logger.Error("GO_UPC_API_KEY is not set, starting degraded: all lookups will fail")
	}

	// User store
	repo, err := repository.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to open user store",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("user store ready", slog.String("backend", repository.BackendName(cfg.DatabaseURL)))

	// Session store
	var sessions session.Store
	var counter session.Counter
	if cfg.RedisURL != "" {
		redisStore, err := session.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		sessions = redisStore
		counter = redisStore
		logger.Info("session store ready", slog.String("backend", "redis"))
	} else {
		memStore := session.NewMemoryStore()
		sessions = memStore
		counter = memStore
		logger.Info("session store ready", slog.String("backend", "memory"))
	}

	// Upstream client and artifact materializer
	client := upc.New(cfg.GoUPCAPIKey,
		upc.WithBaseURL(cfg.GoUPCBaseURL),
		upc.WithTimeout(cfg.LookupTimeout),
	)

	var exporter service.Exporter
	if cfg.ExportEnabled {
		exporter = artifact.New(cfg.ImagesDir)
		logger.Info("artifact export enabled", slog.String("dir", cfg.ImagesDir))
	}

	// Services
	recorder := metrics.NewInMemory()
	products := service.NewProductService(client, exporter, recorder)
	authSvc := service.NewAuthService(repo, sessions, cfg.SessionTTL, cfg.RegistrationEnabled, recorder)

	created, err := authSvc.EnsureSuperadmin(ctx, cfg.SuperadminEmail, cfg.SuperadminPassword)
	if err != nil {
		logger.Error("failed to seed superadmin", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if created {
		logger.Info("superadmin created", slog.String("email", cfg.SuperadminEmail))
	}

	// Handlers
	h := handler.New(version)
	healthHandler := handler.NewHealthHandler(repo, sessions, cfg.LookupConfigured)
	authHandler := handler.NewAuthHandler(authSvc, logger, cfg.IsProduction())
	searchHandler := handler.NewSearchHandler(products, logger)
	downloadHandler := handler.NewDownloadHandler(nil, logger)
	filesHandler := handler.NewFilesHandler(cfg.ImagesDir, logger)
	adminHandler := handler.NewAdminHandler(authSvc, logger)

	r := setupRouter(routerDeps{
		root:     h,
		health:   healthHandler,
		auth:     authHandler,
		search:   searchHandler,
		download: downloadHandler,
		files:    filesHandler,
		admin:    adminHandler,
		sessions: sessions,
		counter:  counter,
		cfg:      cfg,
		logger:   logger,
	})

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)
	srv.OnShutdown("user store", func(ctx context.Context) error { return repo.Close() })
	srv.OnShutdown("session store", func(ctx context.Context) error { return sessions.Close() })

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"auth_enabled", cfg.AuthEnabled,
		"export_enabled", cfg.ExportEnabled,
		"lookup_configured", cfg.LookupConfigured(),
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

type routerDeps struct {
	root     *handler.Handler
	health   *handler.HealthHandler
	auth     *handler.AuthHandler
	search   *handler.SearchHandler
	download *handler.DownloadHandler
	files    *handler.FilesHandler
	admin    *handler.AdminHandler
	sessions session.Store
	counter  session.Counter
	cfg      *config.Config
	logger   *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.Recoverer(d.logger))
	r.Use(middleware.MaxBodySize(d.cfg.MaxRequestBodySize))

	if origins := d.cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowedOrigins = origins
		r.Use(middleware.CORS(corsCfg))
	}

	// Probes (no auth required)
	r.Get("/health", d.health.Health)
	r.Get("/readyz", d.health.Readyz)

	// Login flow
	rateLimited := middleware.LoginRateLimit(middleware.RateLimitConfig{
		Logger:  d.logger,
		Counter: d.counter,
		Limit:   d.cfg.LoginRateLimit,
		Window:  d.cfg.LoginRateWindow,
	})
	r.Get("/login", d.auth.LoginPage)
	r.With(rateLimited).Post("/login", d.auth.Login)
	r.Post("/register", d.auth.Register)

	// Session-gated routes
	r.Group(func(r chi.Router) {
		if d.cfg.AuthEnabled {
			r.Use(middleware.SessionAuth(middleware.SessionConfig{
				Logger: d.logger,
				Store:  d.sessions,
			}))
		}

		r.Get("/", d.root.Root)
		r.Get("/logout", d.auth.Logout)
		r.Post("/api/search", d.search.Search)
		r.Post("/api/batch", d.search.Batch)
		r.Get("/download-image", d.download.DownloadImage)

		if d.cfg.ExportEnabled {
			r.Get("/files/{folder}/{file}", d.files.Serve)
		}

		r.Route("/api/admin", func(r chi.Router) {
			if d.cfg.AuthEnabled {
				r.Use(middleware.RequireAdmin(d.logger))
			}
			r.Get("/users", d.admin.ListUsers)
			r.Post("/users/{id}/active", d.admin.SetActive)
			r.Post("/users/{id}/password", d.admin.ResetPassword)
		})
	})

	// 404 and 405 handlers
	r.NotFound(d.root.NotFound)
	r.MethodNotAllowed(d.root.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

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
