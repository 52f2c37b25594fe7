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
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/soverin/inkpot/internal/api"
	"github.com/soverin/inkpot/internal/auth"
	"github.com/soverin/inkpot/internal/captcha"
	"github.com/soverin/inkpot/internal/images"
	"github.com/soverin/inkpot/internal/index"
	"github.com/soverin/inkpot/internal/notes"
	"github.com/soverin/inkpot/internal/share"
	"github.com/soverin/inkpot/internal/sse"
	"github.com/soverin/inkpot/internal/storage"
)

// Filenames kept inside the log directory.
const (
	loginFile  = "login"
	sharesFile = "shares.json"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("notes_dir", cfg.Data.NotesDir),
		slog.String("images_dir", cfg.Data.ImagesDir),
		slog.String("log_dir", cfg.Data.LogDir),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure data directories exist.
	for _, dir := range []string{cfg.Data.NotesDir, cfg.Data.ImagesDir, cfg.Data.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir %s: %w", dir, err)
		}
	}

	// Initialize storage.
	noteFS, err := storage.NewFS(cfg.Data.NotesDir)
	if err != nil {
		return fmt.Errorf("init note storage: %w", err)
	}
	imageFS, err := storage.NewFS(cfg.Data.ImagesDir)
	if err != nil {
		return fmt.Errorf("init image storage: %w", err)
	}
	logFS, err := storage.NewFS(cfg.Data.LogDir)
	if err != nil {
		return fmt.Errorf("init log storage: %w", err)
	}

	// Initialize SQLite search index.
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	// Run initial sync.
	if err := index.Sync(db, noteFS, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	// Core state handles.
	imgs := images.NewStore(imageFS)
	svc := notes.NewService(noteFS, imgs, db, logger)
	captchas := captcha.NewStore(cfg.Captcha.TTL)
	shares := share.NewRegistry(filepath.Join(cfg.Data.LogDir, sharesFile), noteFS)
	creds := auth.NewVerifier(filepath.Join(cfg.Data.LogDir, loginFile))

	// SSE broker.
	broker := sse.NewBroker()
	defer broker.Close()

	// Build API handler and router.
	handler := api.NewHandler(svc, captchas, shares, creds, imgs, imageFS, logFS, db, cfg.Upload.MaxImageBytes)
	apiRouter := api.NewRouter(handler, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints.
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

	r.Mount("/", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the notes directory so external edits reach the index and
	// connected SSE clients.
	g.Go(func() error {
		return notes.Watch(gCtx, db, noteFS, cfg.Data.NotesDir, logger, func(kind, filename string) {
			broker.PublishNoteEvent(kind, filename)
		})
	})

	// Sweep expired captcha challenges.
	g.Go(func() error {
		captchas.Run(gCtx, cfg.Captcha.SweepInterval, logger)
		return nil
	})

	// Start HTTP server.
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
