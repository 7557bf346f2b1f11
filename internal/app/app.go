// Package app is the application bootstrap and dependency injection root.
// It creates and holds all shared infrastructure (DB pool, Redis client,
// media pipeline, response cache, admission pools, Echo instance) and
// wires the feature packages together.
package app

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/padmasana/studio/internal/admission"
	"github.com/padmasana/studio/internal/apperror"
	"github.com/padmasana/studio/internal/config"
	"github.com/padmasana/studio/internal/httpcache"
	"github.com/padmasana/studio/internal/media"
	"github.com/padmasana/studio/internal/middleware"
)

// App holds all shared dependencies and the Echo HTTP server instance.
// Created once at startup in main.go.
type App struct {
	// Config holds the loaded application configuration.
	Config *config.Config

	// DB is the MariaDB connection pool shared by all feature packages.
	DB *sql.DB

	// Redis is the Redis client backing the response cache.
	Redis *redis.Client

	// Echo is the HTTP server instance.
	Echo *echo.Echo

	// Pipeline ingests uploads into the media root.
	Pipeline *media.Pipeline

	// Cache is the short-TTL response cache for GET routes.
	Cache *httpcache.ResponseCache

	// Coordinator collapses concurrent identical GETs.
	Coordinator *httpcache.Coordinator

	// UploadPool and ProcessingPool bound the media write path.
	UploadPool     *admission.Pool
	ProcessingPool *admission.Pool

	startedAt time.Time
}

// New creates an App with the given infrastructure, prepares the media
// root on disk, configures the Echo server with global middleware and
// error handling, and registers every route.
func New(cfg *config.Config, db *sql.DB, rdb *redis.Client) (*App, error) {
	e := echo.New()

	// Disable Echo's default banner and startup message; we log our own.
	e.HideBanner = true
	e.HidePort = true

	// Configure trusted reverse proxy IPs so c.RealIP() returns the actual
	// client IP instead of the proxy's IP. Rate limiting depends on it.
	middleware.TrustedProxies(e, []string{
		"127.0.0.0/8",    // Localhost
		"10.0.0.0/8",     // Docker default bridge
		"172.16.0.0/12",  // Docker bridge (alternate range)
		"192.168.0.0/16", // Common LAN
		"fd00::/8",       // IPv6 private
	})

	placer := media.NewPlacer(cfg.Upload.MediaPath)
	if err := placer.EnsureBase(); err != nil {
		return nil, fmt.Errorf("preparing media root: %w", err)
	}

	app := &App{
		Config:         cfg,
		DB:             db,
		Redis:          rdb,
		Echo:           e,
		Pipeline:       media.NewPipeline(placer, cfg.Upload.MaxSize, cfg.Upload.MaxFiles),
		Cache:          httpcache.NewResponseCache(rdb),
		Coordinator:    httpcache.NewCoordinator(cfg.Cache.DedupeGrace),
		UploadPool:     admission.NewPool("uploads", cfg.Upload.UploadSlots),
		ProcessingPool: admission.NewPool("processing", cfg.Upload.ProcessingSlots),
		startedAt:      time.Now(),
	}

	// Register global middleware in order of execution.
	app.setupMiddleware()

	// Register the custom error handler that maps AppErrors to HTTP responses.
	e.HTTPErrorHandler = app.errorHandler

	// Serve uploaded media directly from the media root.
	e.Static("/uploads", cfg.Upload.MediaPath)

	app.registerRoutes()

	return app, nil
}

// setupMiddleware registers global middleware on the Echo instance.
// Order matters: outermost (recovery) runs first.
func (a *App) setupMiddleware() {
	a.Echo.Use(middleware.Recovery())
	a.Echo.Use(middleware.RequestLogger())
	a.Echo.Use(middleware.SecurityHeaders())

	// CORS for the SPA dev server; same-origin in production.
	a.Echo.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   []string{a.Config.BaseURL},
		AllowCredentials: true,
	}))
}

// errorHandler is the custom Echo error handler. Every error leaves the
// server as the JSON envelope {success:false, error:<type>, message}.
func (a *App) errorHandler(err error, c echo.Context) {
	// Don't double-write if the response is already committed.
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	errType := "internal_error"
	message := "An unexpected error occurred"

	var appErr *apperror.AppError
	var echoErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		code = appErr.Code
		errType = appErr.Type
		message = appErr.Message

		// Log internal errors with the underlying cause.
		if appErr.Internal != nil {
			slog.Error("internal error",
				slog.String("type", appErr.Type),
				slog.String("message", appErr.Message),
				slog.Any("internal", appErr.Internal),
				slog.String("path", c.Request().URL.Path),
			)
		}
	case errors.As(err, &echoErr):
		// Echo's built-in errors, e.g. 404 from the router.
		code = echoErr.Code
		errType = typeForStatus(code)
		if msg, ok := echoErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(code)
		}
	default:
		slog.Error("unhandled error",
			slog.Any("error", err),
			slog.String("path", c.Request().URL.Path),
		)
	}

	c.JSON(code, map[string]any{
		"success": false,
		"error":   errType,
		"message": message,
	})
}

// typeForStatus maps a bare HTTP status to an error type string for
// errors that did not originate as AppErrors.
func typeForStatus(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusRequestEntityTooLarge:
		return "payload_too_large"
	case http.StatusTooManyRequests:
		return "rate_limited"
	default:
		return "internal_error"
	}
}

// Start begins listening for HTTP requests on the configured port.
func (a *App) Start() error {
	addr := fmt.Sprintf(":%d", a.Config.Port)
	slog.Info("starting server",
		slog.String("addr", addr),
		slog.String("env", a.Config.Env),
		slog.String("media_root", a.Config.Upload.MediaPath),
	)
	return a.Echo.Start(addr)
}

// Uptime reports how long the app has been running.
func (a *App) Uptime() time.Duration {
	return time.Since(a.startedAt)
}
