package drill

import (
	"errors"

	"github.com/bissquit/incident-drill/internal/domain"
)

// Controller errors.
var (
	ErrPhaseLocked       = errors.New("phase is locked")
	ErrInvalidTransition = errors.New("invalid phase transition")
	ErrUnknownPhase      = errors.New("unknown phase")
	ErrIncompleteRecord  = domain.ErrIncompleteRecord
)

// Session errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNoCheckpoint    = errors.New("phase has no checkpoint")
)
