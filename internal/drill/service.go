package drill

import (
	"context"
	"fmt"
	"time"

	"github.com/bissquit/incident-drill/internal/domain"
	"github.com/bissquit/incident-drill/internal/pkg/ctxlog"
	"github.com/bissquit/incident-drill/internal/report"
	"github.com/google/uuid"
)

// ServiceConfig holds session service settings.
type ServiceConfig struct {
	Policy domain.Policy
	// Clock supplies the report date and session timestamps. Defaults to time.Now.
	Clock func() time.Time
}

// Service manages walkthrough sessions.
type Service struct {
	repo   Repository
	policy domain.Policy
	clock  func() time.Time
}

// NewService creates a new session service.
func NewService(repo Repository, cfg ServiceConfig) *Service {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		repo:   repo,
		policy: cfg.Policy,
		clock:  clock,
	}
}

// Policy returns the policy sessions are evaluated against.
func (s *Service) Policy() domain.Policy {
	return s.policy
}

// Report is a compiled formal report ready for download.
type Report struct {
	FileName string
	Body     string
}

// CreateSession starts a new walkthrough positioned on Overview.
func (s *Service) CreateSession(ctx context.Context) (*SessionState, error) {
	sess := NewSession(uuid.NewString(), s.clock().UTC(), NewController(NewIncident(), s.clock))

	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	ctxlog.FromContext(ctx).Info("session created", "session_id", sess.ID)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot(), nil
}

// GetState returns the current state of a session.
func (s *Service) GetState(ctx context.Context, id string) (*SessionState, error) {
	var state *SessionState
	err := s.withSession(ctx, id, func(sess *Session) error {
		state = sess.snapshot()
		return nil
	})
	return state, err
}

// DeleteSession discards a session and its record.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.lookup(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	ctxlog.FromContext(ctx).Info("session deleted", "session_id", id)
	return nil
}

// Navigate moves a session to any unlocked phase.
func (s *Service) Navigate(ctx context.Context, id string, to domain.Phase) (*SessionState, error) {
	return s.transition(ctx, id, "navigate", to, func(c *Controller) error {
		return c.Navigate(to)
	})
}

// Advance moves a session to the phase directly after its current one.
func (s *Service) Advance(ctx context.Context, id string, to domain.Phase) (*SessionState, error) {
	return s.transition(ctx, id, "advance", to, func(c *Controller) error {
		return c.Advance(to)
	})
}

// Trigger completes the action of phase p in a session.
func (s *Service) Trigger(ctx context.Context, id string, p domain.Phase) (*SessionState, error) {
	return s.transition(ctx, id, "trigger", p, func(c *Controller) error {
		return c.Trigger(p)
	})
}

// PhaseView returns the content of an unlocked phase together with its record notes.
func (s *Service) PhaseView(ctx context.Context, id string, p domain.Phase) (*PhaseView, error) {
	var view PhaseView
	err := s.withSession(ctx, id, func(sess *Session) error {
		if err := sess.ctrl.checkUnlocked(p); err != nil {
			return err
		}
		view = NewPhaseView(p, sess.ctrl, s.policy)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// AnswerCheckpoint evaluates an answer to the checkpoint of an unlocked phase.
func (s *Service) AnswerCheckpoint(ctx context.Context, id string, p domain.Phase, answer bool) (*CheckpointResult, error) {
	var result CheckpointResult
	err := s.withSession(ctx, id, func(sess *Session) error {
		if err := sess.ctrl.checkUnlocked(p); err != nil {
			return err
		}
		r, err := AnswerCheckpoint(p, s.policy, answer)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Report compiles the formal report of a session.
func (s *Service) Report(ctx context.Context, id string) (*Report, error) {
	var inc *domain.Incident
	if err := s.withSession(ctx, id, func(sess *Session) error {
		inc = sess.ctrl.Incident()
		return nil
	}); err != nil {
		return nil, err
	}

	// The record snapshot is immutable, so compiling outside the lock is safe.
	body, err := report.Compile(inc)
	if err != nil {
		recordRejected(err)
		return nil, err
	}
	reportsCompiled.Inc()

	return &Report{FileName: report.FileName(inc), Body: body}, nil
}

// Summary returns the executive summary lines of a session.
func (s *Service) Summary(ctx context.Context, id string) ([]string, error) {
	var inc *domain.Incident
	if err := s.withSession(ctx, id, func(sess *Session) error {
		inc = sess.ctrl.Incident()
		return nil
	}); err != nil {
		return nil, err
	}

	lines, err := report.Summary(inc, s.policy)
	if err != nil {
		recordRejected(err)
		return nil, err
	}
	return lines, nil
}

func (s *Service) transition(ctx context.Context, id, action string, p domain.Phase, apply func(*Controller) error) (*SessionState, error) {
	var state *SessionState
	err := s.withSession(ctx, id, func(sess *Session) error {
		from := sess.ctrl.Current()
		if err := apply(sess.ctrl); err != nil {
			return err
		}
		state = sess.snapshot()

		ctxlog.FromContext(ctx).Info("phase "+action,
			"session_id", sess.ID,
			"phase", p,
			"from", from,
			"to", state.Phase,
		)
		recordTransition(action, string(p))
		return nil
	})
	return state, err
}

// withSession runs fn with the session locked. Errors are counted as rejections.
func (s *Service) withSession(ctx context.Context, id string, fn func(*Session) error) error {
	sess, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := fn(sess); err != nil {
		recordRejected(err)
		ctxlog.FromContext(ctx).Debug("session operation rejected", "session_id", id, "error", err)
		return err
	}
	return nil
}

func (s *Service) lookup(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		recordRejected(ErrSessionNotFound)
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		recordRejected(err)
		return nil, err
	}
	return sess, nil
}
