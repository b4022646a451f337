package domain

import (
	"errors"
	"fmt"
)

// ErrIncompleteRecord is returned when an operation needs a phase group that has not been written yet.
var ErrIncompleteRecord = errors.New("incident record incomplete")

// RequirePopulated returns ErrIncompleteRecord naming the first missing group, or nil.
func (i *Incident) RequirePopulated(phases ...Phase) error {
	if i == nil {
		return fmt.Errorf("%w: no incident", ErrIncompleteRecord)
	}
	for _, p := range phases {
		if !i.Populated(p) {
			return fmt.Errorf("%w: %s not populated", ErrIncompleteRecord, p)
		}
	}
	return nil
}
