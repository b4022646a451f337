package drill

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bissquit/incident-drill/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope[T any] struct {
	Data  T `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, _ := newTestService()
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		NewHandler(svc).RegisterRoutes(r)
	})
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func createSession(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/v1/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	return decode[SessionState](t, rec).Data.SessionID
}

func TestHandler_SessionLifecycle(t *testing.T) {
	h := newTestRouter(t)
	id := createSession(t, h)
	base := "/api/v1/sessions/" + id

	rec := do(t, h, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.PhaseOverview, decode[SessionState](t, rec).Data.Phase)

	rec = do(t, h, http.MethodPost, base+"/phases/detect/trigger", "")
	require.Equal(t, http.StatusOK, rec.Code)
	state := decode[SessionState](t, rec).Data
	assert.Equal(t, domain.PhaseContain, state.Phase)
	assert.Equal(t, domain.SeverityHigh, state.Incident.Severity)

	rec = do(t, h, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "session not found", decode[any](t, rec).Error.Message)
}

func TestHandler_ErrorStatuses(t *testing.T) {
	h := newTestRouter(t)
	id := createSession(t, h)
	base := "/api/v1/sessions/" + id

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{name: "unknown session", method: http.MethodGet, path: "/api/v1/sessions/unknown", status: http.StatusNotFound},
		{name: "unknown phase in path", method: http.MethodPost, path: base + "/phases/triage/trigger", status: http.StatusBadRequest},
		{name: "unknown phase in body", method: http.MethodPost, path: base + "/navigate", body: `{"phase":"triage"}`, status: http.StatusBadRequest},
		{name: "missing phase", method: http.MethodPost, path: base + "/navigate", body: `{}`, status: http.StatusBadRequest},
		{name: "invalid json", method: http.MethodPost, path: base + "/advance", body: `{`, status: http.StatusBadRequest},
		{name: "locked navigate", method: http.MethodPost, path: base + "/navigate", body: `{"phase":"prevent"}`, status: http.StatusConflict},
		{name: "locked trigger", method: http.MethodPost, path: base + "/phases/contain/trigger", status: http.StatusConflict},
		{name: "locked view", method: http.MethodGet, path: base + "/phases/document", status: http.StatusConflict},
		{name: "non-adjacent advance", method: http.MethodPost, path: base + "/advance", body: `{"phase":"contain"}`, status: http.StatusUnprocessableEntity},
		{name: "incomplete report", method: http.MethodGet, path: base + "/report", status: http.StatusConflict},
		{name: "incomplete summary", method: http.MethodGet, path: base + "/summary", status: http.StatusConflict},
		{name: "missing answer", method: http.MethodPost, path: base + "/phases/detect/checkpoint", body: `{}`, status: http.StatusBadRequest},
		{name: "no checkpoint", method: http.MethodPost, path: base + "/phases/overview/checkpoint", body: `{"answer":true}`, status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestHandler_PhaseNamesAreNormalized(t *testing.T) {
	h := newTestRouter(t)
	id := createSession(t, h)

	rec := do(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/advance", `{"phase":" Detect "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.PhaseDetect, decode[SessionState](t, rec).Data.Phase)
}

func TestHandler_Checkpoint(t *testing.T) {
	h := newTestRouter(t)
	id := createSession(t, h)

	rec := do(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/phases/detect/checkpoint", `{"answer":false}`)
	require.Equal(t, http.StatusOK, rec.Code)

	result := decode[CheckpointResult](t, rec).Data
	assert.False(t, result.Correct)
	assert.Contains(t, result.Explanation, "Recheck the policy")
}

func TestHandler_Report(t *testing.T) {
	h := newTestRouter(t)
	id := createSession(t, h)
	base := "/api/v1/sessions/" + id

	for _, p := range domain.Phases()[1:7] {
		rec := do(t, h, http.MethodPost, base+"/phases/"+string(p)+"/trigger", "")
		require.Equal(t, http.StatusOK, rec.Code, "trigger %s: %s", p, rec.Body.String())
	}

	rec := do(t, h, http.MethodGet, base+"/report", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="incident_report_AI-INC-2024-007.txt"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), strings.Repeat("=", 80)))

	rec = do(t, h, http.MethodGet, base+"/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[map[string][]string](t, rec).Data["lines"], 5)
}

func TestHandler_Policy(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/v1/policy", "")
	require.Equal(t, http.StatusOK, rec.Code)

	data := decode[map[string]any](t, rec).Data
	assert.InDelta(t, 4.0, data["contain_target_hours"], 1e-9)
	assert.InDelta(t, 0.50, data["auc_red"], 1e-9)
	assert.InDelta(t, 1.0, data["model_tier"], 1e-9)
}
