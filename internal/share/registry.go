// Package share implements the durable share-link registry: a JSON
// document mapping opaque ids to note filenames with optional expiry.
package share

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/soverin/inkpot/internal/apperr"
	"github.com/soverin/inkpot/internal/storage"
)

// Entry is one share link. Timestamps are unix milliseconds; a nil
// ExpiresAt never expires.
type Entry struct {
	Filename  string `json:"filename"`
	CreatedAt int64  `json:"createdAt"`
	ExpiresAt *int64 `json:"expiresAt"`
}

// Registry is a file-backed share-link store. The whole document is read
// into memory and rewritten on every mutation; a single mutex serializes
// mutating calls so concurrent creates cannot discard each other's
// writes.
type Registry struct {
	path  string
	notes storage.Provider
	now   func() time.Time

	mu sync.Mutex
}

// NewRegistry creates a registry persisted at path. Share targets are
// validated against the given notes provider.
func NewRegistry(path string, notes storage.Provider) *Registry {
	return &Registry{path: path, notes: notes, now: time.Now}
}

// Create sweeps expired entries, validates that filename still exists,
// and registers a fresh share id. expireDays <= 0 means the link never
// expires.
func (r *Registry) Create(filename string, expireDays int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.load()
	r.sweepLocked(entries)

	if !r.notes.Exists(filename) {
		return "", apperr.ErrNotFound
	}

	now := r.now().UnixMilli()
	entry := Entry{Filename: filename, CreatedAt: now}
	if expireDays > 0 {
		expiresAt := now + int64(expireDays)*24*int64(time.Hour/time.Millisecond)
		entry.ExpiresAt = &expiresAt
	}

	id := newID()
	entries[id] = entry
	if err := r.persist(entries); err != nil {
		return "", err
	}
	return id, nil
}

// Resolve returns the target filename for a share id. Unknown and
// expired ids both fail with apperr.ErrNotFound; an expired entry is
// evicted from the document on discovery.
func (r *Registry) Resolve(id string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.load()
	entry, ok := entries[id]
	if !ok {
		return "", apperr.ErrNotFound
	}
	if entry.ExpiresAt != nil && r.now().UnixMilli() > *entry.ExpiresAt {
		delete(entries, id)
		if err := r.persist(entries); err != nil {
			return "", err
		}
		return "", apperr.ErrNotFound
	}
	return entry.Filename, nil
}

// Sweep removes all expired entries, rewriting the document only when
// something was removed. It returns the number of evicted entries.
func (r *Registry) Sweep() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.load()
	removed := r.sweepLocked(entries)
	if removed == 0 {
		return 0, nil
	}
	if err := r.persist(entries); err != nil {
		return 0, err
	}
	return removed, nil
}

// sweepLocked evicts expired entries in place. Caller holds r.mu.
func (r *Registry) sweepLocked(entries map[string]Entry) int {
	now := r.now().UnixMilli()
	removed := 0
	for id, e := range entries {
		if e.ExpiresAt != nil && now > *e.ExpiresAt {
			delete(entries, id)
			removed++
		}
	}
	return removed
}

// load reads the whole document. A missing file is created empty; an
// unreadable or corrupt document is treated as empty rather than
// refusing service.
func (r *Registry) load() map[string]Entry {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			_ = os.WriteFile(r.path, []byte("{}"), 0o644)
		}
		return make(map[string]Entry)
	}
	entries := make(map[string]Entry)
	if err := json.Unmarshal(data, &entries); err != nil {
		return make(map[string]Entry)
	}
	return entries
}

func (r *Registry) persist(entries map[string]Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("share: marshal: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("share: persist: %w", err)
	}
	return nil
}

// newID returns an opaque share id: base36 millisecond timestamp plus an
// 8-character base36 random suffix.
func newID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + randSuffix(8)
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func randSuffix(n int) string {
	var b strings.Builder
	for range n {
		b.WriteByte(base36[rand.IntN(len(base36))])
	}
	return b.String()
}
