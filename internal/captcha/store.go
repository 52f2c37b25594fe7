package captcha

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/soverin/inkpot/internal/apperr"
)

type challenge struct {
	code      string
	expiresAt time.Time
}

// Store holds issued challenges keyed by id until they are verified,
// expire, or are swept. It is an explicit handle owned by the caller;
// safe for concurrent use.
type Store struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]challenge
}

// NewStore creates a challenge store whose entries expire after ttl.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]challenge),
	}
}

// Issue generates a new challenge and returns its id and rendered SVG.
func (s *Store) Issue() (string, []byte) {
	id := newID()
	code := NewCode()

	s.mu.Lock()
	s.entries[id] = challenge{code: code, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()

	return id, Render(code)
}

// Verify checks guess against the stored code for id. An unknown or
// expired id fails with apperr.ErrChallengeExpired. A live entry is
// consumed on first touch, win or lose; the comparison is
// case-insensitive.
func (s *Store) Verify(id, guess string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.entries[id]
	if !ok {
		return false, apperr.ErrChallengeExpired
	}
	if s.now().After(c.expiresAt) {
		delete(s.entries, id)
		return false, apperr.ErrChallengeExpired
	}

	delete(s.entries, id)
	return strings.EqualFold(c.code, guess), nil
}

// Sweep evicts expired entries and returns how many were removed.
func (s *Store) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, c := range s.entries {
		if now.After(c.expiresAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Run sweeps the store on the given interval until ctx is cancelled.
// Abandoned challenges would otherwise accumulate for the process
// lifetime.
func (s *Store) Run(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				logger.Debug("captcha: swept expired challenges", slog.Int("removed", n))
			}
		}
	}
}
