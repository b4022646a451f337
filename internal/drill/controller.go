package drill

import (
	"fmt"
	"time"

	"github.com/bissquit/incident-drill/internal/domain"
)

// entrySteps are run once when their phase is entered, so the plan is on the
// record before the responder approves it.
var entrySteps = map[domain.Phase]bool{
	domain.PhaseRemediate: true,
	domain.PhasePrevent:   true,
}

// State is a snapshot of a walkthrough.
type State struct {
	Phase    domain.Phase     `json:"phase"`
	Incident *domain.Incident `json:"incident"`
	Unlocked []domain.Phase   `json:"unlocked"`
}

// Controller is the phase-gated state machine of one walkthrough.
// It is not safe for concurrent use.
type Controller struct {
	current  domain.Phase
	incident *domain.Incident
	unlocked map[domain.Phase]bool
	done     map[domain.Phase]bool
	now      func() time.Time
}

// NewController creates a controller positioned on Overview with Detect unlocked.
// If now is nil, time.Now is used.
func NewController(incident *domain.Incident, now func() time.Time) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{
		current:  domain.PhaseOverview,
		incident: incident,
		unlocked: map[domain.Phase]bool{
			domain.PhaseOverview: true,
			domain.PhaseDetect:   true,
		},
		done: make(map[domain.Phase]bool),
		now:  now,
	}
}

// Current returns the phase the walkthrough is on.
func (c *Controller) Current() domain.Phase {
	return c.current
}

// Incident returns the current record. The returned value is never modified
// by later transitions.
func (c *Controller) Incident() *domain.Incident {
	return c.incident
}

// IsUnlocked checks if navigation to p is permitted.
func (c *Controller) IsUnlocked(p domain.Phase) bool {
	return c.unlocked[p]
}

// Completed checks if the action of p has been triggered. Entering a phase
// whose plan is drafted on entry does not complete it.
func (c *Controller) Completed(p domain.Phase) bool {
	return c.done[p]
}

// State returns the current phase, record and unlocked phases in walkthrough order.
func (c *Controller) State() State {
	unlocked := make([]domain.Phase, 0, len(c.unlocked))
	for _, p := range domain.Phases() {
		if c.unlocked[p] {
			unlocked = append(unlocked, p)
		}
	}
	return State{
		Phase:    c.current,
		Incident: c.incident,
		Unlocked: unlocked,
	}
}

// Navigate moves to any unlocked phase.
func (c *Controller) Navigate(to domain.Phase) error {
	if err := c.checkUnlocked(to); err != nil {
		return err
	}
	return c.commit(to, nil)
}

// Advance moves to the phase directly after the current one.
func (c *Controller) Advance(to domain.Phase) error {
	if !to.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownPhase, to)
	}
	next, ok := c.current.Next()
	if !ok || to != next {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.current, to)
	}
	if err := c.checkUnlocked(to); err != nil {
		return err
	}
	return c.commit(to, nil)
}

// Trigger completes the action of phase p: runs its step, unlocks the next
// phase and enters it. Either all of that happens or none of it does.
func (c *Controller) Trigger(p domain.Phase) error {
	if err := c.checkUnlocked(p); err != nil {
		return err
	}
	next, ok := p.Next()
	if !ok {
		return fmt.Errorf("%w: %s has no action", ErrInvalidTransition, p)
	}

	draft := c.incident.Clone()
	if step, ok := StepFor(p); ok {
		if err := step(draft, c.now()); err != nil {
			return fmt.Errorf("trigger %s: %w", p, err)
		}
	}

	if err := c.commit(next, draft); err != nil {
		return err
	}
	c.unlocked[next] = true
	c.done[p] = true
	return nil
}

// commit enters phase to, running its entry step on draft (or on a copy of
// the current record when draft is nil), and publishes the result.
func (c *Controller) commit(to domain.Phase, draft *domain.Incident) error {
	if entrySteps[to] && !c.populated(draft, to) {
		if draft == nil {
			draft = c.incident.Clone()
		}
		step, _ := StepFor(to)
		if err := step(draft, c.now()); err != nil {
			return fmt.Errorf("enter %s: %w", to, err)
		}
	}

	if draft != nil {
		c.incident = draft
	}
	c.current = to
	return nil
}

func (c *Controller) populated(draft *domain.Incident, p domain.Phase) bool {
	if draft != nil {
		return draft.Populated(p)
	}
	return c.incident.Populated(p)
}

func (c *Controller) checkUnlocked(p domain.Phase) error {
	if !p.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownPhase, p)
	}
	if !c.unlocked[p] {
		return fmt.Errorf("%w: %s", ErrPhaseLocked, p)
	}
	return nil
}
