// Package credential keeps the short-lived access tokens handed to clients of
// the photo-sharing platform.
package credential

import (
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"catalogsync/internal/clock"
)

// Store maps issued tokens to their issue time. Entries are never pruned;
// validity is recomputed from the timestamp on every check.
type Store struct {
	mu     sync.Mutex
	ttl    time.Duration
	clock  clock.Clock
	issued map[string]time.Time
}

func NewStore(ttl time.Duration, c clock.Clock) *Store {
	if c == nil {
		c = clock.Real{}
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Store{ttl: ttl, clock: c, issued: make(map[string]time.Time)}
}

// tokens are kept as digests so the registry never holds a usable credential
func digest(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *Store) TTL() time.Duration { return s.ttl }

// Issue creates a new token valid from now.
func (s *Store) Issue() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked()
}

func (s *Store) issueLocked() string {
	token := "ps_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	s.issued[digest(token)] = s.clock.Now()
	return token
}

// Known reports whether token was ever issued, expired or not.
func (s *Store) Known(token string) bool {
	if token == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.issued[digest(token)]
	return ok
}

func (s *Store) IsValid(token string) bool {
	if token == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.issued[digest(token)]
	if !ok {
		return false
	}
	return s.clock.Now().Sub(at) < s.ttl
}

// Refresh always issues a fresh token; the old one is left to expire.
func (s *Store) Refresh(old string) string {
	return s.Issue()
}

type Verdict int

const (
	Rejected Verdict = iota
	Valid
	Refreshed
)

// Authorize checks token and, when it was issued here but has expired,
// replaces it in the same critical section. The returned token is the one
// the caller should use from now on.
func (s *Store) Authorize(token string) (Verdict, string) {
	if token == "" {
		return Rejected, ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.issued[digest(token)]
	switch {
	case !ok:
		return Rejected, ""
	case s.clock.Now().Sub(at) < s.ttl:
		return Valid, token
	default:
		return Refreshed, s.issueLocked()
	}
}
