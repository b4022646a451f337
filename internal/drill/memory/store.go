// Package memory provides the in-process session store.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bissquit/incident-drill/internal/drill"
	"github.com/bissquit/incident-drill/internal/pkg/metrics"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Config holds store limits.
type Config struct {
	MaxSessions int
	IdleTTL     time.Duration
}

// Store keeps sessions in a bounded LRU. A session idle for longer than
// IdleTTL, or pushed out by newer sessions, is discarded.
// The LRU runs a reaper goroutine that never exits, so create one Store per process.
type Store struct {
	mu       sync.Mutex
	sessions *expirable.LRU[string, *drill.Session]
}

// NewStore creates a session store.
func NewStore(cfg Config) *Store {
	onEvict := func(_ string, _ *drill.Session) {
		metrics.SessionsActive.Dec()
	}
	return &Store{
		sessions: expirable.NewLRU[string, *drill.Session](cfg.MaxSessions, onEvict, cfg.IdleTTL),
	}
}

// Create stores a new session.
func (s *Store) Create(_ context.Context, session *drill.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sessions.Contains(session.ID) {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	s.sessions.Add(session.ID, session)
	metrics.SessionsActive.Inc()
	return nil
}

// Get returns a session and resets its idle timer.
func (s *Store) Get(_ context.Context, id string) (*drill.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", drill.ErrSessionNotFound, id)
	}
	s.sessions.Add(id, session)
	return session, nil
}

// Delete removes a session.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.sessions.Remove(id) {
		return fmt.Errorf("%w: %s", drill.ErrSessionNotFound, id)
	}
	return nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return s.sessions.Len()
}
