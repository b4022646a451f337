package report_test

import (
	"os"
	"testing"
	"time"

	"github.com/bissquit/incident-drill/internal/domain"
	"github.com/bissquit/incident-drill/internal/drill"
	"github.com/bissquit/incident-drill/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reportDay = time.Date(2024, time.November, 5, 9, 30, 0, 0, time.UTC)

// buildIncident runs the steps of the given phases in order.
func buildIncident(t *testing.T, phases ...domain.Phase) *domain.Incident {
	t.Helper()

	inc := drill.NewIncident()
	for _, p := range phases {
		step, ok := drill.StepFor(p)
		require.True(t, ok, "no step for %s", p)
		require.NoError(t, step(inc, reportDay))
	}
	return inc
}

func throughDocument() []domain.Phase {
	return []domain.Phase{
		domain.PhaseDetect,
		domain.PhaseContain,
		domain.PhaseInvestigate,
		domain.PhaseRemediate,
		domain.PhaseDocument,
	}
}

func readGolden(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return string(b)
}

func TestCompile_FinalReport(t *testing.T) {
	inc := buildIncident(t, append(throughDocument(), domain.PhasePrevent)...)

	got, err := report.Compile(inc)
	require.NoError(t, err)

	assert.Equal(t, readGolden(t, "final_report.golden"), got)
}

func TestCompile_WithoutPrevention(t *testing.T) {
	inc := buildIncident(t, throughDocument()...)

	got, err := report.Compile(inc)
	require.NoError(t, err)

	assert.Equal(t, readGolden(t, "interim_report.golden"), got)
	assert.Contains(t, got, "  - No specific preventive measures documented yet.\n")
	assert.NotContains(t, got, "Governance Update:")
}

func TestCompile_Deterministic(t *testing.T) {
	inc := buildIncident(t, append(throughDocument(), domain.PhasePrevent)...)

	first, err := report.Compile(inc)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := report.Compile(inc.Clone())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCompile_IncompleteRecord(t *testing.T) {
	tests := []struct {
		name    string
		phases  []domain.Phase
		missing string
	}{
		{"empty record", nil, "detect"},
		{"detect only", []domain.Phase{domain.PhaseDetect}, "contain"},
		{"missing document", throughDocument()[:4], "document"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inc := buildIncident(t, tt.phases...)

			got, err := report.Compile(inc)
			require.ErrorIs(t, err, domain.ErrIncompleteRecord)
			assert.Contains(t, err.Error(), tt.missing)
			assert.Empty(t, got)
		})
	}
}

func TestCompile_NilIncident(t *testing.T) {
	_, err := report.Compile(nil)
	assert.ErrorIs(t, err, domain.ErrIncompleteRecord)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "incident_report_AI-INC-2024-007.txt", report.FileName(drill.NewIncident()))
}

func TestSummary(t *testing.T) {
	policy := domain.DefaultPolicy()

	_, err := report.Summary(drill.NewIncident(), policy)
	require.ErrorIs(t, err, domain.ErrIncompleteRecord)

	lines, err := report.Summary(buildIncident(t, domain.PhaseDetect), policy)
	require.NoError(t, err)
	require.Len(t, lines, 5)
	assert.Equal(t, "Incident: AI-INC-2024-007 • Model: Trading RL Agent v1.2 (Tier 1)", lines[0])
	assert.Equal(t, "Performance signal: AUC fell from 0.58 (validated) to 0.42 (live), RED under policy", lines[1])
	assert.Contains(t, lines[2], "Estimated incremental impact: N/A")
	assert.Equal(t, "Root cause (stated): N/A", lines[3])

	lines, err = report.Summary(buildIncident(t, throughDocument()...), policy)
	require.NoError(t, err)
	assert.Contains(t, lines[2], "$2.3M additional losses vs backup strategy over degradation period")
	assert.Contains(t, lines[3], "Market regime shift")
}
