package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/soverin/inkpot/internal/images"
	"github.com/soverin/inkpot/internal/index"
	"github.com/soverin/inkpot/internal/mcpserver"
	"github.com/soverin/inkpot/internal/notes"
	"github.com/soverin/inkpot/internal/share"
	"github.com/soverin/inkpot/internal/storage"
)

// RunMCP serves the MCP tools over stdio instead of starting the HTTP
// server. Stdout carries the protocol, so logs go to stderr.
func RunMCP(_ context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	for _, dir := range []string{cfg.Data.NotesDir, cfg.Data.ImagesDir, cfg.Data.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir %s: %w", dir, err)
		}
	}

	noteFS, err := storage.NewFS(cfg.Data.NotesDir)
	if err != nil {
		return fmt.Errorf("init note storage: %w", err)
	}
	imageFS, err := storage.NewFS(cfg.Data.ImagesDir)
	if err != nil {
		return fmt.Errorf("init image storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	if err := index.Sync(db, noteFS, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	svc := notes.NewService(noteFS, images.NewStore(imageFS), db, logger)
	shares := share.NewRegistry(filepath.Join(cfg.Data.LogDir, sharesFile), noteFS)

	return mcpserver.New(svc, db, shares).ServeStdio()
}
