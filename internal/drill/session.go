package drill

import (
	"sync"
	"time"
)

// Session is one responder's walkthrough. Operations on a session are serialized.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu   sync.Mutex
	ctrl *Controller
}

// NewSession wraps a controller into a session.
func NewSession(id string, createdAt time.Time, ctrl *Controller) *Session {
	return &Session{
		ID:        id,
		CreatedAt: createdAt,
		ctrl:      ctrl,
	}
}

// SessionState is a snapshot of a session as returned to callers.
type SessionState struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	State
}

// snapshot must be called with mu held.
func (s *Session) snapshot() *SessionState {
	return &SessionState{
		SessionID: s.ID,
		CreatedAt: s.CreatedAt,
		State:     s.ctrl.State(),
	}
}
