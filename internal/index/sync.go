package index

import (
	"log/slog"
	"strings"

	"github.com/soverin/inkpot/internal/storage"
)

// Sync walks the notes directory and brings the index up to date:
// new or changed files are upserted, files removed from disk are
// deleted from the index.
func Sync(db *DB, notes storage.Provider, logger *slog.Logger) error {
	infos, err := notes.List(".md")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(infos))
	for _, info := range infos {
		disk[info.Name] = struct{}{}

		if checksums[info.Name] == info.Checksum {
			continue
		}

		data, err := notes.Read(info.Name)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("filename", info.Name), slog.String("error", err.Error()))
			continue
		}
		if err := IndexFile(db, info.Name, data); err != nil {
			logger.Warn("sync: index failed", slog.String("filename", info.Name), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("filename", info.Name))
		}
	}

	// Remove stale entries.
	for f := range checksums {
		if _, ok := disk[f]; !ok {
			if err := db.DeleteNote(f); err != nil {
				logger.Warn("sync: delete failed", slog.String("filename", f), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("filename", f))
			}
		}
	}

	return nil
}

// IndexFile upserts one note into the index. The title is the filename
// without its extension.
func IndexFile(db *DB, filename string, data []byte) error {
	title := strings.TrimSuffix(filename, ".md")
	return db.UpsertNote(filename, title, storage.Checksum(data), string(data))
}
