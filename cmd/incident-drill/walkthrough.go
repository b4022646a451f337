package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bissquit/incident-drill/internal/domain"
	"github.com/bissquit/incident-drill/internal/drill"
	"github.com/bissquit/incident-drill/internal/report"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// runFlags are shared by commands that run the scenario locally.
type runFlags struct {
	date string
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.date, "date", "", "report date as YYYY-MM-DD (default today)")
}

func (f *runFlags) clock() (func() time.Time, error) {
	if f.date == "" {
		return time.Now, nil
	}
	day, err := time.Parse(domain.DateLayout, f.date)
	if err != nil {
		return nil, fmt.Errorf("invalid --date %q: %w", f.date, err)
	}
	return func() time.Time { return day }, nil
}

func newWalkthroughCmd(opts *options) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "walkthrough",
		Short: "Run every phase in order and print the record and reports",
		Long: `Runs the scenario through one phase controller, printing what each phase adds
to the incident record, the interim report compiled before prevention and the
final report.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			clock, err := flags.clock()
			if err != nil {
				return err
			}
			return runWalkthrough(cmd.OutOrStdout(), opts.cfg.Policy.Domain(), clock)
		},
	}
	flags.register(cmd)
	return cmd
}

func runWalkthrough(w io.Writer, policy domain.Policy, clock func() time.Time) error {
	ctrl := drill.NewController(drill.NewIncident(), clock)
	p := &printer{w: w}

	for _, phase := range domain.Phases()[1:] {
		if phase == domain.PhaseFinalReport {
			break
		}
		if err := ctrl.Trigger(phase); err != nil {
			return err
		}
		inc := ctrl.Incident()
		p.phase(phase, inc, policy)

		if phase == domain.PhaseDocument {
			interim := inc.Clone()
			interim.Prevent = nil
			body, err := report.Compile(interim)
			if err != nil {
				return err
			}
			p.heading(doneStyle, "Generating INITIAL Incident Report (before prevention phase):")
			p.line(body)
		}
	}

	body, err := report.Compile(ctrl.Incident())
	if err != nil {
		return err
	}
	p.heading(doneStyle, "Generating FINAL Incident Report with all phases completed:")
	p.line(body)

	p.heading(phaseStyle, "Executive summary")
	lines, err := report.Summary(ctrl.Incident(), policy)
	if err != nil {
		return err
	}
	for _, l := range lines {
		p.line("  - " + l)
	}

	p.line("")
	p.line("Incident response simulation completed.")
	return p.err
}

// printer writes to w and remembers the first error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(s string) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintln(p.w, s)
}

func (p *printer) heading(style lipgloss.Style, s string) {
	p.line("")
	p.line(style.Render(s))
}

func (p *printer) list(items []string) {
	for _, it := range items {
		p.line("  - " + it)
	}
}

func (p *printer) phase(phase domain.Phase, inc *domain.Incident, policy domain.Policy) {
	switch phase {
	case domain.PhaseDetect:
		d := inc.Detect
		p.line(alertStyle.Render("*** CRITICAL AI MODEL ALERT DETECTED ***"))
		p.line("Incident ID: " + inc.ID)
		p.line("Model: " + inc.Model)
		p.line("Severity: " + string(inc.Severity))
		p.line(fmt.Sprintf("Date Detected: %s at %s", d.DateDetected(), d.AlertTimestamp.Format("15:04:05")))
		p.line("Trigger: " + d.Trigger)
		p.line(fmt.Sprintf("Baseline AUC: %.2f", d.AUCBaseline))
		p.line(fmt.Sprintf("Current AUC: %.2f", d.AUCCurrent))
		p.line("Notified: " + strings.Join(d.Notified, ", "))

	case domain.PhaseContain:
		c := inc.Contain
		p.heading(phaseStyle, "--- PHASE: CONTAIN ---")
		p.line("Action: " + c.Action)
		p.line("Timestamp: " + c.Timestamp.Format(domain.TimestampLayout))
		p.line(fmt.Sprintf("Time to Contain: %s (Target: < %s)", c.TimeToContain, domain.Elapsed(policy.ContainTarget)))
		p.line("Fallback Strategy: " + c.Fallback)
		p.line("Estimated Client Impact: " + c.EstimatedImpact)

	case domain.PhaseInvestigate:
		i := inc.Investigate
		p.heading(phaseStyle, "--- PHASE: INVESTIGATE ---")
		p.line("Root Cause: " + i.RootCause)
		p.line("Tools Used:")
		p.list(i.ToolsUsed)
		p.line("Timeline: " + i.Timeline)
		p.line("Reason for Delayed Alert: " + i.WhyDelayed)
		p.line("Quantified Financial Impact (from Investigate): " + i.ClientImpact.FinancialImpact)

	case domain.PhaseRemediate:
		r := inc.Remediate
		p.heading(phaseStyle, "--- PHASE: REMEDIATE ---")
		p.line("Proposed Remediation Actions:")
		p.list(r.Actions)
		p.line("Revalidation Requirements: " + r.Revalidation)
		p.line("Estimated Timeline for Fixes: " + r.EstimatedTimeline + " (Target: < 30 days)")

	case domain.PhaseDocument:
		d := inc.Document
		p.heading(phaseStyle, "--- PHASE: DOCUMENT ---")
		p.line("Report Date: " + d.ReportDate)
		p.line("Presented To: " + strings.Join(d.PresentedTo, ", "))

	case domain.PhasePrevent:
		pr := inc.Prevent
		p.heading(phaseStyle, "--- PHASE: PREVENT ---")
		p.line("Proposed Control Enhancements:")
		p.list(pr.ControlEnhancements)
		p.line("Governance Update: " + pr.GovernanceUpdate)
	}

	for _, note := range drill.PhaseNotes(phase, inc, policy) {
		p.line(noteStyle.Render("Note: " + note))
	}
}
