package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Phase represents a stage of the incident response walkthrough.
type Phase string

// Phases in walkthrough order.
const (
	PhaseOverview    Phase = "overview"
	PhaseDetect      Phase = "detect"
	PhaseContain     Phase = "contain"
	PhaseInvestigate Phase = "investigate"
	PhaseRemediate   Phase = "remediate"
	PhaseDocument    Phase = "document"
	PhasePrevent     Phase = "prevent"
	PhaseFinalReport Phase = "final_report"
)

var phaseOrder = []Phase{
	PhaseOverview,
	PhaseDetect,
	PhaseContain,
	PhaseInvestigate,
	PhaseRemediate,
	PhaseDocument,
	PhasePrevent,
	PhaseFinalReport,
}

// Phases returns all phases in walkthrough order.
func Phases() []Phase {
	out := make([]Phase, len(phaseOrder))
	copy(out, phaseOrder)
	return out
}

// ParsePhase converts a string to a Phase.
// Accepts the canonical value as well as display names ("Final Report").
func ParsePhase(s string) (Phase, bool) {
	p := Phase(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_"))
	if !p.IsValid() {
		return "", false
	}
	return p, true
}

// IsValid checks if the phase is one of the known phases.
func (p Phase) IsValid() bool {
	return p.Index() >= 0
}

// Index returns the position of the phase in walkthrough order, or -1.
func (p Phase) Index() int {
	for i, q := range phaseOrder {
		if q == p {
			return i
		}
	}
	return -1
}

// Next returns the phase that follows p.
// Returns false for the terminal phase and for unknown phases.
func (p Phase) Next() (Phase, bool) {
	i := p.Index()
	if i < 0 || i == len(phaseOrder)-1 {
		return "", false
	}
	return phaseOrder[i+1], true
}

// IsTerminal checks if no phase follows p.
func (p Phase) IsTerminal() bool {
	return p == PhaseFinalReport
}

// Title returns the display name of the phase, e.g. "Final Report".
func (p Phase) Title() string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(p), "_", " "))
}
