package drill

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bissquit/incident-drill/internal/domain"
	"github.com/bissquit/incident-drill/internal/pkg/ctxlog"
	"github.com/bissquit/incident-drill/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Empty messages fall back to err.Error(), which names the phase involved.
var errorMappings = []httputil.ErrorMapping{
	{Error: ErrSessionNotFound, Status: http.StatusNotFound, Message: "session not found"},
	{Error: ErrNoCheckpoint, Status: http.StatusNotFound, Message: "phase has no checkpoint"},
	{Error: ErrUnknownPhase, Status: http.StatusBadRequest},
	{Error: ErrPhaseLocked, Status: http.StatusConflict},
	{Error: ErrIncompleteRecord, Status: http.StatusConflict},
	{Error: ErrInvalidTransition, Status: http.StatusUnprocessableEntity},
}

// Handler handles HTTP requests for walkthrough sessions.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new drill handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers session routes. create is applied to session
// creation only, which is the one route that allocates memory.
func (h *Handler) RegisterRoutes(r chi.Router, create ...func(http.Handler) http.Handler) {
	r.Get("/policy", h.GetPolicy)

	r.Route("/sessions", func(r chi.Router) {
		r.With(create...).Post("/", h.CreateSession)

		r.Route("/{id}", func(r chi.Router) {
			r.Use(sessionLogger)

			r.Get("/", h.GetSession)
			r.Delete("/", h.DeleteSession)
			r.Post("/navigate", h.Navigate)
			r.Post("/advance", h.Advance)
			r.Get("/phases/{phase}", h.GetPhase)
			r.Post("/phases/{phase}/trigger", h.Trigger)
			r.Post("/phases/{phase}/checkpoint", h.AnswerCheckpoint)
			r.Get("/report", h.GetReport)
			r.Get("/summary", h.GetSummary)
		})
	})
}

func sessionLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := ctxlog.With(r.Context(), "session_id", chi.URLParam(r, "id"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PhaseRequest is the body of navigate and advance requests.
type PhaseRequest struct {
	Phase string `json:"phase" validate:"required"`
}

// CheckpointRequest is the body of a checkpoint answer.
type CheckpointRequest struct {
	Answer *bool `json:"answer" validate:"required"`
}

// PolicyResponse is the policy as exposed over HTTP.
type PolicyResponse struct {
	domain.Policy
	ContainTargetHours float64 `json:"contain_target_hours"`
}

// GetPolicy handles GET /policy.
func (h *Handler) GetPolicy(w http.ResponseWriter, _ *http.Request) {
	p := h.service.Policy()
	httputil.Success(w, http.StatusOK, PolicyResponse{
		Policy:             p,
		ContainTargetHours: p.ContainTarget.Hours(),
	})
}

// CreateSession handles POST /sessions.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.CreateSession(r.Context())
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusCreated, state)
}

// GetSession handles GET /sessions/{id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.GetState(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, state)
}

// DeleteSession handles DELETE /sessions/{id}.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Navigate handles POST /sessions/{id}/navigate.
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	to, ok := h.decodePhase(w, r)
	if !ok {
		return
	}

	state, err := h.service.Navigate(r.Context(), chi.URLParam(r, "id"), to)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, state)
}

// Advance handles POST /sessions/{id}/advance.
func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	to, ok := h.decodePhase(w, r)
	if !ok {
		return
	}

	state, err := h.service.Advance(r.Context(), chi.URLParam(r, "id"), to)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, state)
}

// GetPhase handles GET /sessions/{id}/phases/{phase}.
func (h *Handler) GetPhase(w http.ResponseWriter, r *http.Request) {
	p, err := phaseParam(r)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	view, err := h.service.PhaseView(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, view)
}

// Trigger handles POST /sessions/{id}/phases/{phase}/trigger.
func (h *Handler) Trigger(w http.ResponseWriter, r *http.Request) {
	p, err := phaseParam(r)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	state, err := h.service.Trigger(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, state)
}

// AnswerCheckpoint handles POST /sessions/{id}/phases/{phase}/checkpoint.
func (h *Handler) AnswerCheckpoint(w http.ResponseWriter, r *http.Request) {
	p, err := phaseParam(r)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	var req CheckpointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	result, err := h.service.AnswerCheckpoint(r.Context(), chi.URLParam(r, "id"), p, *req.Answer)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, result)
}

// GetReport handles GET /sessions/{id}/report.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.service.Report(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Attachment(w, rep.FileName, rep.Body)
}

// GetSummary handles GET /sessions/{id}/summary.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	lines, err := h.service.Summary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, map[string][]string{"lines": lines})
}

func (h *Handler) decodePhase(w http.ResponseWriter, r *http.Request) (domain.Phase, bool) {
	var req PhaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return "", false
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return "", false
	}

	p, ok := domain.ParsePhase(req.Phase)
	if !ok {
		httputil.HandleError(r.Context(), w, fmt.Errorf("%w: %q", ErrUnknownPhase, req.Phase), errorMappings)
		return "", false
	}
	return p, true
}

func phaseParam(r *http.Request) (domain.Phase, error) {
	raw := chi.URLParam(r, "phase")
	p, ok := domain.ParsePhase(raw)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPhase, raw)
	}
	return p, nil
}
