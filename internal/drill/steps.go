package drill

import (
	"fmt"
	"time"

	"github.com/bissquit/incident-drill/internal/domain"
)

// Scenario facts shared by the steps and the phase guidance.
const (
	scenarioIncidentID = "AI-INC-2024-007"
	scenarioModel      = "Trading RL Agent v1.2"
	scenarioTier       = 1

	scenarioTrigger     = "Rolling AUC dropped below 0.70 threshold"
	scenarioAUCBaseline = 0.58
	scenarioAUCCurrent  = 0.42
	scenarioPSI         = 0.42

	scenarioTimeToContain   = 2*time.Hour + 15*time.Minute
	scenarioFinancialImpact = "$2.3M additional losses vs backup strategy over degradation period"

	// Cumulative P&L over the degradation window, in $M.
	scenarioObservedPnL = -3.1
	scenarioFallbackPnL = -0.8
)

var scenarioAlertTimestamp = time.Date(2024, time.November, 1, 6, 15, 0, 0, time.UTC)

// Step writes the record group owned by one phase.
// A step is a no-op when its group is already populated.
type Step func(inc *domain.Incident, now time.Time) error

// NewIncident returns the incident as known before any phase has run.
func NewIncident() *domain.Incident {
	return &domain.Incident{
		ID:    scenarioIncidentID,
		Model: scenarioModel,
		Tier:  scenarioTier,
	}
}

// StepFor returns the step producing the group of phase p.
// Overview and FinalReport have no step.
func StepFor(p domain.Phase) (Step, bool) {
	switch p {
	case domain.PhaseDetect:
		return Detect, true
	case domain.PhaseContain:
		return Contain, true
	case domain.PhaseInvestigate:
		return Investigate, true
	case domain.PhaseRemediate:
		return Remediate, true
	case domain.PhaseDocument:
		return Document, true
	case domain.PhasePrevent:
		return Prevent, true
	}
	return nil, false
}

// Detect records the monitoring alert and the declared severity.
func Detect(inc *domain.Incident, _ time.Time) error {
	if inc.Detect != nil {
		return nil
	}

	inc.Severity = domain.SeverityHigh
	inc.Detect = &domain.DetectRecord{
		Trigger:        scenarioTrigger,
		DetectedBy:     "Monitoring Dashboard (AUC RED alert)",
		AUCBaseline:    scenarioAUCBaseline,
		AUCCurrent:     scenarioAUCCurrent,
		AlertTimestamp: scenarioAlertTimestamp,
		Notified: []string{
			"AI Governance Officer",
			"Head of Trading",
			"Model Risk Management",
		},
	}
	return nil
}

// Contain records the kill switch activation and the fallback strategy.
func Contain(inc *domain.Incident, _ time.Time) error {
	if inc.Contain != nil {
		return nil
	}
	if err := inc.RequirePopulated(domain.PhaseDetect); err != nil {
		return fmt.Errorf("contain: %w", err)
	}

	inc.Contain = &domain.ContainRecord{
		Action:            "Kill switch activated - model frozen",
		Timestamp:         inc.Detect.AlertTimestamp.Add(scenarioTimeToContain),
		TimeToContain:     domain.Elapsed(scenarioTimeToContain),
		Fallback:          "Reverted to rule-based momentum strategy (validated backup)",
		PositionsReviewed: "All open positions from last 5 trading days reviewed by senior trader",
		EstimatedImpact:   scenarioFinancialImpact,
	}
	return nil
}

// Investigate records the root cause analysis.
// The financial impact is carried over from containment, not recomputed.
func Investigate(inc *domain.Incident, _ time.Time) error {
	if inc.Investigate != nil {
		return nil
	}
	if err := inc.RequirePopulated(domain.PhaseContain); err != nil {
		return fmt.Errorf("investigate: %w", err)
	}

	inc.Investigate = &domain.InvestigateRecord{
		RootCause: "Market regime shift: Fed rate cut cycle began in September. " +
			"RL agent trained on rate-hiking regime (2022-2024) learned patterns that reversed in the new easing cycle. " +
			"Momentum signals that worked in tightening became contrarian in easing.",
		PSI: scenarioPSI,
		ToolsUsed: []string{
			"Audit log analysis (D4-T1-C3): confirmed model recommendations were systematically wrong-directional from Oct 15 onward",
			"SHAP analysis (D4-T3-C1): momentum feature SHAP values flipped sign, confirming regime-dependent behavior",
			fmt.Sprintf("Distribution shift test (D4-T1-C1): PSI = %.2f on input features, confirming major population shift", scenarioPSI),
		},
		Timeline:   "Degradation began Oct 15 (rate cut announcement). Dashboard alerted Nov 1 (17 calendar days exposure).",
		WhyDelayed: "Rolling window (90-day) smoothed the AUC drop. A shorter 30-day window would have alerted 10 days earlier.",
		ClientImpact: domain.ClientImpact{
			DecisionsAffected: "N/A (performance incident, financial impact is aggregate)",
			UnfairDenials:     "N/A (performance incident)",
			GroupsAffected:    "N/A (performance incident)",
			FinancialImpact:   inc.Contain.EstimatedImpact,
		},
	}
	return nil
}

// Remediate records the remediation plan.
func Remediate(inc *domain.Incident, _ time.Time) error {
	if inc.Remediate != nil {
		return nil
	}
	if err := inc.RequirePopulated(domain.PhaseInvestigate); err != nil {
		return fmt.Errorf("remediate: %w", err)
	}

	inc.Remediate = &domain.RemediateRecord{
		Actions: []string{
			"Retrain RL agent including 2024 rate-cut data",
			"Add regime-detection layer: if regime indicator flips, auto-switch to conservative mode",
			"Reduce rolling AUC window from 90 to 30 days for faster detection",
			"Add regime-specific backtesting before redeployment",
		},
		Revalidation:      "Full D4-T1-C1 stress test + D4-T1-C2 validation required before reactivation",
		EstimatedTimeline: "30 days to retrain + 15 days for validation",
	}
	return nil
}

// Document records the formal report metadata. The report date comes from now.
func Document(inc *domain.Incident, now time.Time) error {
	if inc.Document != nil {
		return nil
	}
	if err := inc.RequirePopulated(domain.PhaseRemediate); err != nil {
		return fmt.Errorf("document: %w", err)
	}

	inc.Document = &domain.DocumentRecord{
		ReportDate: now.Format(domain.DateLayout),
		PresentedTo: []string{
			"AI Governance Committee",
			"Head of Trading",
			"Model Risk Management",
		},
		ClientNotification: "Affected portfolio clients notified that model-assisted trading was temporarily suspended. " +
			"Performance impact disclosed in quarterly letter.",
		RegulatoryNotification: "Internal documentation only (no regulatory filing required for this incident type under current rules, " +
			"but logged for examination readiness).",
	}
	return nil
}

// Prevent records the proposed control enhancements.
func Prevent(inc *domain.Incident, _ time.Time) error {
	if inc.Prevent != nil {
		return nil
	}
	if err := inc.RequirePopulated(domain.PhaseDocument); err != nil {
		return fmt.Errorf("prevent: %w", err)
	}

	inc.Prevent = &domain.PreventRecord{
		ControlEnhancements: []string{
			"Shorter monitoring window (90 -> 30 day rolling AUC)",
			"Regime-detection trigger added to monitoring dashboard",
			"Mandatory regime-change stress test added to validation protocol",
			"Kill-switch automation: auto-freeze if AUC < 0.50 for 3 consecutive days",
			"Quarterly review of backup strategy adequacy",
		},
		GovernanceUpdate: "Updated tiering: RL trading models now require regime-aware validation as standard for Tier 1 approval",
	}
	return nil
}
