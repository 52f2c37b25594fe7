// Package notes implements the note repository: paginated listing,
// reads, collision-avoiding create and rename, saves, uploads, and
// delete with attachment garbage collection.
package notes

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/soverin/inkpot/internal/apperr"
	"github.com/soverin/inkpot/internal/images"
	"github.com/soverin/inkpot/internal/index"
	"github.com/soverin/inkpot/internal/storage"
)

// Ext is the fixed extension identifying a file as a note.
const Ext = ".md"

// Note is the metadata returned by mutating operations.
type Note struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	Title        string `json:"title"`
	Path         string `json:"path"`
	LastModified int64  `json:"lastModified"`
}

// ListItem is one entry of a paginated listing.
type ListItem struct {
	Filename     string `json:"filename"`
	Title        string `json:"title"`
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	LastModified int64  `json:"lastModified"`
}

// ListResult is a page of notes.
type ListResult struct {
	Items    []ListItem
	Total    int
	Page     int
	PageSize int
	HasMore  bool
}

// Service coordinates note storage, attachment cleanup, and the search
// index.
type Service struct {
	store  storage.Provider
	images *images.Store
	db     *index.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a note service.
func NewService(store storage.Provider, imgs *images.Store, db *index.DB, logger *slog.Logger) *Service {
	return &Service{store: store, images: imgs, db: db, logger: logger, now: time.Now}
}

// List returns one page of notes sorted by last-modified time,
// newest first. page and pageSize fall back to 1 and 20; pageSize is
// deliberately uncapped.
func (s *Service) List(page, pageSize int) (*ListResult, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	infos, err := s.store.List(Ext)
	if err != nil {
		return nil, err
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ModTime.After(infos[j].ModTime)
	})

	total := len(infos)
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	items := make([]ListItem, 0, end-start)
	for _, info := range infos[start:end] {
		items = append(items, ListItem{
			Filename:     info.Name,
			Title:        strings.TrimSuffix(info.Name, Ext),
			Path:         notePath(info.Name),
			Size:         info.Size,
			LastModified: info.ModTime.UnixMilli(),
		})
	}

	return &ListResult{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		HasMore:  (page-1)*pageSize+len(items) < total,
	}, nil
}

// Read returns the raw content of a note.
func (s *Service) Read(filename string) ([]byte, error) {
	data, err := s.store.Read(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Create writes a new empty note titled title. An existing <title>.md is
// disambiguated by appending the current millisecond timestamp to the
// title.
func (s *Service) Create(title string) (*Note, error) {
	ts := s.now().UnixMilli()
	filename := title + Ext
	if s.store.Exists(filename) {
		filename = fmt.Sprintf("%s%d%s", title, ts, Ext)
	}

	if err := s.store.Write(filename, []byte{}); err != nil {
		return nil, err
	}
	s.indexNote(filename, []byte{})

	info, err := s.store.Stat(filename)
	if err != nil {
		return nil, err
	}
	return &Note{
		ID:           strconv.FormatInt(ts, 10),
		Filename:     filename,
		Title:        title,
		Path:         notePath(filename),
		LastModified: info.ModTime.UnixMilli(),
	}, nil
}

// Save overwrites a note's content in place. There is no rollback of
// partial writes beyond what the atomic storage write provides.
func (s *Service) Save(filename string, content []byte) error {
	if err := s.store.Write(filename, content); err != nil {
		return err
	}
	s.indexNote(filename, content)
	return nil
}

// Delete removes a note and garbage-collects image attachments its
// content references. The content read is best-effort; only the final
// unlink can fail the operation. A missing note fails with
// apperr.ErrNotFound.
func (s *Service) Delete(filename string) error {
	content, err := s.store.Read(filename)
	if err != nil {
		content = nil
	}

	for _, ref := range images.ExtractRefs(content) {
		if err := s.images.Remove(ref); err != nil {
			s.logger.Warn("delete: remove attachment failed",
				slog.String("image", ref), slog.String("error", err.Error()))
		}
	}

	if err := s.store.Delete(filename); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}

	if err := s.db.DeleteNote(filename); err != nil {
		s.logger.Warn("delete: deindex failed",
			slog.String("filename", filename), slog.String("error", err.Error()))
	}
	return nil
}

// Rename moves a note to <newTitle>.md, disambiguating with a timestamp
// on collision. A missing source fails with apperr.ErrNotFound.
func (s *Service) Rename(filename, newTitle string) (*Note, error) {
	if !s.store.Exists(filename) {
		return nil, apperr.ErrNotFound
	}

	newFilename := newTitle + Ext
	if s.store.Exists(newFilename) {
		newFilename = fmt.Sprintf("%s%d%s", newTitle, s.now().UnixMilli(), Ext)
	}

	if err := s.store.Rename(filename, newFilename); err != nil {
		return nil, err
	}

	if err := s.db.DeleteNote(filename); err != nil {
		s.logger.Warn("rename: deindex failed",
			slog.String("filename", filename), slog.String("error", err.Error()))
	}
	if content, err := s.store.Read(newFilename); err == nil {
		s.indexNote(newFilename, content)
	}

	info, err := s.store.Stat(newFilename)
	if err != nil {
		return nil, err
	}
	return &Note{
		ID:           strconv.FormatInt(info.ModTime.UnixMilli(), 10),
		Filename:     newFilename,
		Title:        newTitle,
		Path:         notePath(newFilename),
		LastModified: info.ModTime.UnixMilli(),
	}, nil
}

// CreateFromUpload stores an uploaded note under its original filename.
// Unlike Create and Rename there is no disambiguation: an existing
// target fails with apperr.ErrAlreadyExists.
func (s *Service) CreateFromUpload(filename string, content []byte) (*Note, error) {
	if !strings.HasSuffix(filename, Ext) {
		return nil, fmt.Errorf("notes: not a %s file: %s", Ext, filename)
	}
	if s.store.Exists(filename) {
		return nil, apperr.ErrAlreadyExists
	}

	if err := s.store.Write(filename, content); err != nil {
		return nil, err
	}
	s.indexNote(filename, content)

	info, err := s.store.Stat(filename)
	if err != nil {
		return nil, err
	}
	return &Note{
		ID:           strconv.FormatInt(info.ModTime.UnixMilli(), 10),
		Filename:     filename,
		Title:        strings.TrimSuffix(filename, Ext),
		Path:         notePath(filename),
		LastModified: info.ModTime.UnixMilli(),
	}, nil
}

// indexNote upserts a note into the search index; index failures are
// logged, never surfaced, since the filesystem stays the source of
// truth.
func (s *Service) indexNote(filename string, content []byte) {
	if err := index.IndexFile(s.db, filename, content); err != nil {
		s.logger.Warn("index note failed",
			slog.String("filename", filename), slog.String("error", err.Error()))
	}
}

func notePath(filename string) string {
	return "/file/" + filename
}

// TrimPath strips the public /file/ prefix from a client-supplied note
// path, yielding the bare filename.
func TrimPath(path string) string {
	return strings.TrimPrefix(path, "/file/")
}
