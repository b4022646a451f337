// Package drill implements the phase-gated incident response walkthrough.
package drill

import "context"

// Repository defines the interface for session storage.
// Get returns ErrSessionNotFound for unknown or expired sessions.
type Repository interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}
