package domain

import (
	"fmt"
	"strings"
	"time"
)

// Severity represents the declared severity of an incident.
type Severity string

// Severity levels.
const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// IsValid checks if the severity is valid.
func (s Severity) IsValid() bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh || s == SeverityCritical
}

// Incident is the record built up while walking through the response phases.
// Each phase group stays nil until the step that produces it has run.
type Incident struct {
	ID       string   `json:"incident_id"`
	Model    string   `json:"model"`
	Tier     int      `json:"tier"`
	Severity Severity `json:"severity,omitempty"`

	Detect      *DetectRecord      `json:"detect,omitempty"`
	Contain     *ContainRecord     `json:"contain,omitempty"`
	Investigate *InvestigateRecord `json:"investigate,omitempty"`
	Remediate   *RemediateRecord   `json:"remediate,omitempty"`
	Document    *DocumentRecord    `json:"document,omitempty"`
	Prevent     *PreventRecord     `json:"prevent,omitempty"`
}

// Clone returns a copy of the incident.
// Phase groups are shared: once written they are never modified.
func (i *Incident) Clone() *Incident {
	c := *i
	return &c
}

// Populated reports whether the group produced by the given phase has been written.
// Overview and FinalReport produce no group and always report true.
func (i *Incident) Populated(p Phase) bool {
	switch p {
	case PhaseDetect:
		return i.Detect != nil
	case PhaseContain:
		return i.Contain != nil
	case PhaseInvestigate:
		return i.Investigate != nil
	case PhaseRemediate:
		return i.Remediate != nil
	case PhaseDocument:
		return i.Document != nil
	case PhasePrevent:
		return i.Prevent != nil
	}
	return true
}

// DetectRecord holds the alert as raised by monitoring.
type DetectRecord struct {
	Trigger        string    `json:"trigger"`
	DetectedBy     string    `json:"detected_by"`
	AUCBaseline    float64   `json:"auc_baseline"`
	AUCCurrent     float64   `json:"auc_current"`
	AlertTimestamp time.Time `json:"alert_timestamp"`
	Notified       []string  `json:"notified"`
}

// AUCDelta returns the change from the baseline to the live AUC.
func (d *DetectRecord) AUCDelta() float64 {
	return d.AUCCurrent - d.AUCBaseline
}

// DateDetected returns the alert date as YYYY-MM-DD.
func (d *DetectRecord) DateDetected() string {
	return d.AlertTimestamp.Format(DateLayout)
}

// ContainRecord holds the containment action and its timing.
type ContainRecord struct {
	Action            string    `json:"action"`
	Timestamp         time.Time `json:"timestamp"`
	TimeToContain     Elapsed   `json:"time_to_contain"`
	Fallback          string    `json:"fallback"`
	PositionsReviewed string    `json:"positions_reviewed"`
	EstimatedImpact   string    `json:"estimated_client_impact"`
}

// InvestigateRecord holds the root cause analysis.
type InvestigateRecord struct {
	RootCause    string       `json:"root_cause"`
	PSI          float64      `json:"psi"`
	ToolsUsed    []string     `json:"tools_used"`
	Timeline     string       `json:"timeline"`
	WhyDelayed   string       `json:"why_delayed"`
	ClientImpact ClientImpact `json:"client_impact"`
}

// ClientImpact summarizes who was affected and at what cost.
type ClientImpact struct {
	DecisionsAffected string `json:"total_decisions_affected"`
	UnfairDenials     string `json:"estimated_unfair_denials"`
	GroupsAffected    string `json:"groups_affected"`
	FinancialImpact   string `json:"financial_impact"`
}

// RemediateRecord holds the remediation plan.
type RemediateRecord struct {
	Actions           []string `json:"actions"`
	Revalidation      string   `json:"revalidation"`
	EstimatedTimeline string   `json:"estimated_timeline"`
}

// DocumentRecord holds the formal report metadata.
type DocumentRecord struct {
	ReportDate             string   `json:"report_date"`
	PresentedTo            []string `json:"presented_to"`
	ClientNotification     string   `json:"client_notification"`
	RegulatoryNotification string   `json:"regulatory_notification"`
}

// PreventRecord holds the control enhancements proposed after the incident.
type PreventRecord struct {
	ControlEnhancements []string `json:"control_enhancements"`
	GovernanceUpdate    string   `json:"governance_update"`
}

// Layouts used when rendering incident timestamps.
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

// Elapsed is a duration rendered as "2h 15m".
type Elapsed time.Duration

// Duration returns e as a time.Duration.
func (e Elapsed) Duration() time.Duration {
	return time.Duration(e)
}

func (e Elapsed) String() string {
	d := time.Duration(e)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60

	if hours > 0 {
		if minutes > 0 {
			return fmt.Sprintf("%dh %dm", hours, minutes)
		}
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dm", minutes)
}

// MarshalText encodes e using String.
func (e Elapsed) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText decodes the form produced by MarshalText.
func (e *Elapsed) UnmarshalText(text []byte) error {
	d, err := time.ParseDuration(strings.ReplaceAll(string(text), " ", ""))
	if err != nil {
		return fmt.Errorf("parse elapsed %q: %w", text, err)
	}
	*e = Elapsed(d)
	return nil
}
