package notes

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/soverin/inkpot/internal/index"
	"github.com/soverin/inkpot/internal/storage"
)

// WatchCallback is called after a watcher-driven index change.
// kind is one of "created", "updated", "deleted".
type WatchCallback func(kind, filename string)

// Watch starts an fsnotify watcher on the notes directory and keeps the
// search index in step with external edits until ctx is cancelled. It
// calls cb (if non-nil) after each successful index mutation.
//
// The notes directory is flat, so renames need no reconciliation pass:
// the old name arrives as a Rename event and the new name as a separate
// Create.
func Watch(ctx context.Context, db *index.DB, store storage.Provider, dir string, logger *slog.Logger, cb WatchCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("dir", dir))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			filename := filepath.Base(ev.Name)
			if !strings.HasSuffix(filename, Ext) {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := store.Read(filename)
				if readErr != nil {
					// Write events race with deletion and with the
					// atomic-rename temp files; skip quietly.
					continue
				}
				if idxErr := index.IndexFile(db, filename, data); idxErr != nil {
					logger.Warn("watcher: index failed", slog.String("filename", filename), slog.String("error", idxErr.Error()))
					continue
				}
				kind := "updated"
				if ev.Op&fsnotify.Create != 0 {
					kind = "created"
				}
				logger.Debug("watcher: indexed", slog.String("filename", filename), slog.String("op", kind))
				if cb != nil {
					cb(kind, filename)
				}

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				if delErr := db.DeleteNote(filename); delErr != nil {
					logger.Warn("watcher: deindex failed", slog.String("filename", filename), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: removed", slog.String("filename", filename))
				if cb != nil {
					cb("deleted", filename)
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
