// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/WallySa7/alrawi/internal/api"
	"github.com/WallySa7/alrawi/internal/index"
	"github.com/WallySa7/alrawi/internal/library"
	"github.com/WallySa7/alrawi/internal/mcpserver"
	"github.com/WallySa7/alrawi/internal/service"
	"github.com/WallySa7/alrawi/internal/sse"
	"github.com/WallySa7/alrawi/internal/storage"
)

// components holds the wired application core shared by the HTTP server and
// the MCP server entrypoints.
type components struct {
	store  storage.Provider
	db     *index.DB
	lib    *library.Library
	svc    *service.Service
	logger *slog.Logger
}

func buildComponents(cfg *Config, logger *slog.Logger, broker *sse.Broker) (*components, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
	}
	slog.SetDefault(logger)

	// Ensure vault directory exists.
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	if err := index.Sync(db, store, cfg.Vault.RecordFolders(), logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	defaults := cfg.Library.MapperDefaults()
	lib := library.New(store, library.Config{
		VideosFolder: cfg.Vault.VideosFolder,
		BooksFolder:  cfg.Vault.BooksFolder,
		Defaults:     defaults,
	}, logger)

	var events service.Publisher
	if broker != nil {
		events = broker
	}
	svc := service.New(store, lib, db, events, service.Config{
		VideosFolder:  cfg.Vault.VideosFolder,
		BooksFolder:   cfg.Vault.BooksFolder,
		VideoStatuses: cfg.Library.VideoStatuses,
		BookStatuses:  cfg.Library.BookStatuses,
		Defaults:      defaults,
	}, logger)

	return &components{store: store, db: db, lib: lib, svc: svc, logger: logger}, nil
}

// Run starts the HTTP application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	c, err := buildComponents(cfg, app.logger, broker)
	if err != nil {
		return err
	}
	defer c.db.Close()
	logger := c.logger

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	apiRouter := api.NewRouter(c.svc, c.db, cfg.Auth.AuthEnabled(), cfg.Auth.Token,
		broker, cfg.Vault.Path, cfg.Vault.CoversFolder)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Cover images (unauthenticated, read-only).
	covers := api.NewCoverHandler(cfg.Vault.Path, cfg.Vault.CoversFolder)
	r.Get("/covers/{filename}", covers.ServeFile)

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// File watcher: external edits (Obsidian, sync tools) flow into the
	// index, invalidate the library caches, and fan out over SSE.
	g.Go(func() error {
		index.Watch(gCtx, c.db, c.store, cfg.Vault.Path, cfg.Vault.RecordFolders(), logger,
			func(kind, path string) {
				c.lib.InvalidatePath(path)
				broker.PublishRecordEvent(kind, path)
			})
		return nil
	})

	// HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP starts the MCP server on stdio with the given options.
func RunMCP(_ context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	// stdout carries the MCP protocol; logs must go to stderr.
	logger := app.logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
	}

	c, err := buildComponents(app.config, logger, nil)
	if err != nil {
		return err
	}
	defer c.db.Close()

	c.logger.Info("MCP server starting on stdio")
	return mcpserver.New(c.svc, c.db).ServeStdio()
}
