package drill

import (
	"fmt"

	"github.com/bissquit/incident-drill/internal/domain"
)

// Guidance is the static teaching content of a phase.
type Guidance struct {
	Phase               domain.Phase `json:"phase"`
	Title               string       `json:"title"`
	Goal                string       `json:"goal"`
	ActionLabel         string       `json:"action_label,omitempty"`
	DecisionTranslation []string     `json:"decision_translation,omitempty"`
	EvidencePack        []string     `json:"evidence_pack,omitempty"`
	Checkpoint          *Checkpoint  `json:"checkpoint,omitempty"`

	Roadmap        []RoadmapStep   `json:"roadmap,omitempty"`
	Example        string          `json:"example,omitempty"`
	Trend          *AUCTrend       `json:"auc_trend,omitempty"`
	Counterfactual *Counterfactual `json:"counterfactual,omitempty"`
}

// RoadmapStep is one entry of the phase list shown before the walkthrough starts.
type RoadmapStep struct {
	Phase   domain.Phase `json:"phase"`
	Summary string       `json:"summary"`
}

// AUCTrend is the illustrative AUC series leading up to the alert.
type AUCTrend struct {
	Points   []TrendPoint `json:"points"`
	Baseline float64      `json:"baseline"`
	Delta    float64      `json:"delta"`
}

// TrendPoint is one AUC measurement.
type TrendPoint struct {
	Date string  `json:"date"`
	AUC  float64 `json:"auc"`
}

// Counterfactual compares the observed P&L with the fallback path, in $M.
type Counterfactual struct {
	Observed          float64  `json:"observed_pnl"`
	Fallback          float64  `json:"fallback_pnl"`
	IncrementalImpact float64  `json:"incremental_impact"`
	Assumptions       []string `json:"assumptions"`
}

// Checkpoint is a yes/no question checking the responder's reading of the policy.
type Checkpoint struct {
	Question   string `json:"question"`
	TrueLabel  string `json:"true_label"`
	FalseLabel string `json:"false_label"`

	correct          bool
	explainCorrect   string
	explainIncorrect string
}

// CheckpointResult is the outcome of answering a checkpoint.
type CheckpointResult struct {
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation"`
}

// PhaseView is the guidance of a phase combined with what the record says about it.
type PhaseView struct {
	Guidance
	Completed bool     `json:"completed"`
	Notes     []string `json:"notes,omitempty"`
}

// GuidanceFor returns the content shown for phase p under policy.
func GuidanceFor(p domain.Phase, policy domain.Policy) Guidance {
	g := Guidance{Phase: p, Title: p.Title()}

	switch p {
	case domain.PhaseOverview:
		g.Goal = "Work through six phases as the primary incident responder for an AI-assisted trading system " +
			"and produce a Final Report suitable for governance review."
		g.ActionLabel = "Start Simulation"
		g.Roadmap = []RoadmapStep{
			{Phase: domain.PhaseDetect, Summary: "Confirm the signal is real and policy-relevant."},
			{Phase: domain.PhaseContain, Summary: "Stop the bleed; revert to validated fallback."},
			{Phase: domain.PhaseInvestigate, Summary: "Prove cause (regime shift vs data/process break)."},
			{Phase: domain.PhaseRemediate, Summary: "Restore edge without creating new risk."},
			{Phase: domain.PhaseDocument, Summary: "Make it audit-ready."},
			{Phase: domain.PhasePrevent, Summary: "Reduce detection lag and regime risk."},
			{Phase: domain.PhaseFinalReport, Summary: "Deliver the Final Incident Report (board/committee-ready)."},
		}
		g.Example = fmt.Sprintf("AUC falling from ~%.2f to ~%.2f is like going from a modest edge to worse-than-coin-flip discrimination: "+
			"if position sizing stays unchanged, expected P&L can deteriorate quickly.", scenarioAUCBaseline, scenarioAUCCurrent)

	case domain.PhaseDetect:
		g.Title = "Detect: Confirm the Signal Is Real (and Policy-Relevant)"
		g.Goal = "Determine whether the monitoring signal meets escalation/containment policy and whether the metric is interpretable for decisions."
		g.ActionLabel = "Acknowledge Alert & Proceed to Containment"
		g.DecisionTranslation = []string{
			"If Live AUC breaches RED, assume the model's edge is impaired and initiate containment (kill switch / fallback).",
			"If Live AUC is YELLOW but not RED, escalate monitoring frequency and begin drift diagnostics before losses compound.",
		}
		g.EvidencePack = []string{
			"AUC trend chart with thresholds annotated",
			"Baseline vs current window definition (dates, sample size assumptions)",
			"Alert log showing trigger text (and note any documentation mismatch)",
		}
		g.Trend = &AUCTrend{
			Points: []TrendPoint{
				{Date: "2024-10-25", AUC: 0.59},
				{Date: "2024-10-28", AUC: 0.58},
				{Date: "2024-10-31", AUC: 0.55},
				{Date: scenarioAlertTimestamp.Format(domain.DateLayout), AUC: scenarioAUCCurrent},
			},
			Baseline: scenarioAUCBaseline,
			Delta:    scenarioAUCCurrent - scenarioAUCBaseline,
		}
		g.Checkpoint = &Checkpoint{
			Question: fmt.Sprintf("Does Live AUC (%.2f) meet the RED containment threshold (%.2f)?",
				scenarioAUCCurrent, policy.AUCRed),
			TrueLabel:        "Yes, contain now",
			FalseLabel:       "No, just monitor",
			correct:          policy.ClassifyAUC(scenarioAUCCurrent) == domain.AlertLevelRed,
			explainCorrect:   "Live AUC is below the RED threshold, so containment is justified to protect capital.",
			explainIncorrect: "Recheck the policy: compare Live AUC against the RED threshold before deciding.",
		}

	case domain.PhaseContain:
		g.Title = "Contain: Stop the Bleed + Estimate Incremental Loss"
		g.Goal = fmt.Sprintf("Prevent additional harm while investigation runs. For Tier %d systems the containment target is < %s.",
			policy.ModelTier, domain.Elapsed(policy.ContainTarget))
		g.ActionLabel = "Activate Kill Switch & Contain Incident"
		g.DecisionTranslation = []string{
			"If time-to-contain exceeds target, treat it as a control failure and escalate to governance.",
			"If incremental impact is material, prepare client communication and expand exposure review beyond the model itself.",
		}
		g.EvidencePack = []string{
			"Timestamped kill-switch confirmation",
			"Fallback activation proof (order routing / position constraints)",
			"Incremental loss estimate methodology + assumptions",
		}
		g.Counterfactual = &Counterfactual{
			Observed:          scenarioObservedPnL,
			Fallback:          scenarioFallbackPnL,
			IncrementalImpact: scenarioObservedPnL - scenarioFallbackPnL,
			Assumptions: []string{
				"Same capital base, same universe, same risk limits",
				"Same transaction cost model (or explicitly different)",
				"Fallback is validated for similar liquidity/market conditions",
			},
		}

	case domain.PhaseInvestigate:
		g.Title = "Investigate: Prove the Cause (Regime Shift vs Data/Process Error)"
		g.Goal = "Separate facts from interpretation and produce evidence that can withstand skepticism."
		g.ActionLabel = "Complete Investigation & Identify Root Cause"
		g.DecisionTranslation = []string{
			"If PSI is material and feature relationships flip, assume the model's learned relationships are not stable in the new environment.",
			"Do not redeploy purely on recent fit: require regime-aware validation to avoid overfitting the last regime.",
		}
		g.EvidencePack = []string{
			"PSI value + bands + feature contributors (top-5)",
			"Audit log excerpt showing wrong-direction calls (timestamped)",
			"Feature behavior summary (sign flip table / SHAP plot)",
		}
		g.Checkpoint = &Checkpoint{
			Question:         fmt.Sprintf("Does PSI=%.2f fall into the material shift band?", scenarioPSI),
			TrueLabel:        "Yes (material shift)",
			FalseLabel:       "No (normal variation)",
			correct:          policy.ClassifyPSI(scenarioPSI) == domain.PSIBandMaterial,
			explainCorrect:   "PSI above the material threshold implies the input population meaningfully shifted.",
			explainIncorrect: fmt.Sprintf("Recheck the PSI bands: anything above %.2f is a material shift.", policy.PSIWatchMax),
		}

	case domain.PhaseRemediate:
		g.Title = "Remediate: Restore Edge Without Creating a New Risk"
		g.Goal = "Convert diagnosis into controlled change, with explicit revalidation gates."
		g.ActionLabel = "Approve Remediation Plan & Proceed to Documentation"
		g.DecisionTranslation = []string{
			"If validation gates are ambiguous, do not restart automation: governance risk dominates.",
			"If remediation increases turnover materially, reassess net performance and liquidity constraints.",
		}
		g.EvidencePack = []string{
			"Pre-specified go/no-go criteria (metrics + stress tests)",
			"Net-of-cost performance evidence (not just gross backtest)",
			"Regime coverage summary (tests across multiple market environments)",
		}

	case domain.PhaseDocument:
		g.Title = "Document: Make It Audit-Ready"
		g.Goal = "Create a stand-alone narrative that a skeptical reviewer can audit: what happened, what it cost, " +
			"why decisions were reasonable and what changed to prevent recurrence."
		g.ActionLabel = "Generate Formal Report Draft & Proceed to Prevention"
		g.EvidencePack = []string{
			"Monitoring thresholds and window definition (RED/YELLOW + rolling window)",
			"Baseline vs current measurement windows (and why)",
			"Financial impact method + assumptions (counterfactual definition)",
			"Drift/diagnostic rules (PSI bands, evidence)",
			"Decisions, timestamps, sign-offs (who approved what)",
		}

	case domain.PhasePrevent:
		g.Title = "Prevent: Reduce Detection Lag and Regime Risk"
		g.Goal = "Convert lessons into durable controls with explicit trade-offs."
		g.ActionLabel = "Approve Prevention Plan & Finalize Report"
		g.DecisionTranslation = []string{
			"If rules are tightened, define acceptable false-alarm rate (Type I) vs missed-detection risk (Type II).",
			"If kill-switch is automated, specify authority, override conditions, and post-mortem requirements.",
		}
		g.EvidencePack = []string{
			"Revised monitoring policy (thresholds + window + breach logic)",
			"False-alarm backtest of the monitoring rule",
			"Updated validation protocol including regime coverage",
		}

	case domain.PhaseFinalReport:
		g.Title = "Final Report: Board-Ready Summary + Evidence Trail"
		g.Goal = "Deliver a single coherent artifact separating executive summary, evidence and sign-offs."
	}

	return g
}

// Answer evaluates an answer to the checkpoint. answer is true for TrueLabel.
func (c *Checkpoint) Answer(answer bool) CheckpointResult {
	if answer == c.correct {
		return CheckpointResult{Correct: true, Explanation: c.explainCorrect}
	}
	return CheckpointResult{Correct: false, Explanation: c.explainIncorrect}
}

// AnswerCheckpoint evaluates an answer to the checkpoint of phase p.
func AnswerCheckpoint(p domain.Phase, policy domain.Policy, answer bool) (CheckpointResult, error) {
	if !p.IsValid() {
		return CheckpointResult{}, fmt.Errorf("%w: %q", ErrUnknownPhase, p)
	}
	cp := GuidanceFor(p, policy).Checkpoint
	if cp == nil {
		return CheckpointResult{}, fmt.Errorf("%w: %s", ErrNoCheckpoint, p)
	}
	return cp.Answer(answer), nil
}

// NewPhaseView builds the view of phase p from the state of c.
func NewPhaseView(p domain.Phase, c *Controller, policy domain.Policy) PhaseView {
	return PhaseView{
		Guidance:  GuidanceFor(p, policy),
		Completed: c.Completed(p),
		Notes:     PhaseNotes(p, c.Incident(), policy),
	}
}

// PhaseNotes returns what the record says about phase p under policy.
// A phase whose group is not on the record yet has no notes.
func PhaseNotes(p domain.Phase, inc *domain.Incident, policy domain.Policy) []string {
	var notes []string

	switch p {
	case domain.PhaseDetect:
		d := inc.Detect
		if d == nil {
			break
		}
		notes = append(notes, fmt.Sprintf("Live AUC %.2f (%+.2f vs the %.2f baseline) is %s under policy (RED < %.2f, YELLOW < %.2f).",
			d.AUCCurrent, d.AUCDelta(), d.AUCBaseline, policy.ClassifyAUC(d.AUCCurrent), policy.AUCRed, policy.AUCYellow))
		if policy.TriggerMismatch(d.Trigger) {
			notes = append(notes, "The logged trigger quotes a threshold that differs from the approved policy: "+
				"rely on the approved policy and document the inconsistency as a control gap.")
		}

	case domain.PhaseContain:
		if inc.Contain != nil {
			if policy.ContainedWithinTarget(inc.Contain.TimeToContain) {
				notes = append(notes, fmt.Sprintf("Contained in %s, within the %s target.",
					inc.Contain.TimeToContain, domain.Elapsed(policy.ContainTarget)))
			} else {
				notes = append(notes, fmt.Sprintf("Contained in %s, exceeding the %s target: escalate as a control failure.",
					inc.Contain.TimeToContain, domain.Elapsed(policy.ContainTarget)))
			}
		}

	case domain.PhaseInvestigate:
		if i := inc.Investigate; i != nil {
			notes = append(notes, fmt.Sprintf("PSI %.2f falls in the %s band (stable < %.2f, watch <= %.2f).",
				i.PSI, policy.ClassifyPSI(i.PSI), policy.PSIStableMax, policy.PSIWatchMax))
		}

	case domain.PhaseDocument:
		if inc.Document != nil {
			notes = append(notes, "If you claim no filing is required, also document the firm's internal materiality/escalation policy.")
		}
	}

	return notes
}
