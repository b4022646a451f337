// Package report compiles the formal incident report.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/bissquit/incident-drill/internal/domain"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// RulerWidth is the width of the "=" rulers framing the report.
const RulerWidth = 80

// required lists the groups a report cannot be compiled without.
// Prevent is optional.
var required = []domain.Phase{
	domain.PhaseDetect,
	domain.PhaseContain,
	domain.PhaseInvestigate,
	domain.PhaseRemediate,
	domain.PhaseDocument,
}

var formalReport = template.Must(
	template.New("formal_report.tmpl").
		Funcs(template.FuncMap{
			"ruler":         func() string { return strings.Repeat("=", RulerWidth) },
			"join":          strings.Join,
			"timestamp":     formatTimestamp,
			"firstSentence": firstSentence,
		}).
		ParseFS(templatesFS, "templates/formal_report.tmpl"),
)

// Compile renders the formal report. Identical records produce identical output.
// Returns domain.ErrIncompleteRecord if a required phase group is missing.
func Compile(inc *domain.Incident) (string, error) {
	if err := inc.RequirePopulated(required...); err != nil {
		return "", fmt.Errorf("compile report: %w", err)
	}

	var buf bytes.Buffer
	if err := formalReport.Execute(&buf, inc); err != nil {
		return "", fmt.Errorf("execute report template: %w", err)
	}
	return buf.String(), nil
}

// FileName returns the download name of the report of inc.
func FileName(inc *domain.Incident) string {
	return fmt.Sprintf("incident_report_%s.txt", inc.ID)
}

// Summary returns the executive summary lines shown above the full report.
// Only the Detect group is required; missing later groups render as N/A.
func Summary(inc *domain.Incident, policy domain.Policy) ([]string, error) {
	if err := inc.RequirePopulated(domain.PhaseDetect); err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	impact, root := "N/A", "N/A"
	if inc.Contain != nil {
		impact = inc.Contain.EstimatedImpact
	}
	if inc.Investigate != nil {
		root = inc.Investigate.RootCause
	}

	d := inc.Detect
	return []string{
		fmt.Sprintf("Incident: %s • Model: %s (Tier %d)", inc.ID, inc.Model, inc.Tier),
		fmt.Sprintf("Performance signal: AUC fell from %.2f (validated) to %.2f (live), %s under policy",
			d.AUCBaseline, d.AUCCurrent, policy.ClassifyAUC(d.AUCCurrent)),
		fmt.Sprintf("Containment: kill switch + fallback activated • Estimated incremental impact: %s", impact),
		fmt.Sprintf("Root cause (stated): %s", root),
		"Prevention: tightened monitoring + regime-aware validation + governance update",
	}, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(domain.TimestampLayout)
}

func firstSentence(s string) string {
	before, _, _ := strings.Cut(s, ".")
	return before
}
