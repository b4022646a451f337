package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhase_Next(t *testing.T) {
	tests := []struct {
		phase  Phase
		next   Phase
		hasNxt bool
	}{
		{PhaseOverview, PhaseDetect, true},
		{PhaseDetect, PhaseContain, true},
		{PhaseContain, PhaseInvestigate, true},
		{PhaseInvestigate, PhaseRemediate, true},
		{PhaseRemediate, PhaseDocument, true},
		{PhaseDocument, PhasePrevent, true},
		{PhasePrevent, PhaseFinalReport, true},
		{PhaseFinalReport, "", false},
		{Phase("bogus"), "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.phase), func(t *testing.T) {
			next, ok := tt.phase.Next()
			assert.Equal(t, tt.hasNxt, ok)
			assert.Equal(t, tt.next, next)
		})
	}
}

func TestPhases_StrictOrder(t *testing.T) {
	phases := Phases()
	assert.Len(t, phases, 8)
	assert.Equal(t, PhaseOverview, phases[0])
	assert.Equal(t, PhaseFinalReport, phases[len(phases)-1])

	for i, p := range phases {
		assert.Equal(t, i, p.Index())
	}

	// Callers get their own copy.
	phases[0] = PhasePrevent
	assert.Equal(t, PhaseOverview, Phases()[0])
}

func TestParsePhase(t *testing.T) {
	tests := []struct {
		in   string
		want Phase
		ok   bool
	}{
		{"detect", PhaseDetect, true},
		{"Detect", PhaseDetect, true},
		{"Final Report", PhaseFinalReport, true},
		{"final_report", PhaseFinalReport, true},
		{" prevent ", PhasePrevent, true},
		{"", "", false},
		{"triage", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParsePhase(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPhase_Title(t *testing.T) {
	assert.Equal(t, "Overview", PhaseOverview.Title())
	assert.Equal(t, "Final Report", PhaseFinalReport.Title())
}

func TestIncident_Populated(t *testing.T) {
	inc := &Incident{ID: "AI-INC-1"}

	assert.True(t, inc.Populated(PhaseOverview))
	assert.True(t, inc.Populated(PhaseFinalReport))
	assert.False(t, inc.Populated(PhaseDetect))

	inc.Detect = &DetectRecord{Trigger: "x"}
	assert.True(t, inc.Populated(PhaseDetect))
	assert.False(t, inc.Populated(PhaseContain))

	clone := inc.Clone()
	clone.Contain = &ContainRecord{Action: "freeze"}
	assert.Nil(t, inc.Contain, "clone must not write through to the original")
	assert.Same(t, inc.Detect, clone.Detect)
}

func TestIncident_RequirePopulated(t *testing.T) {
	var nilInc *Incident
	assert.ErrorIs(t, nilInc.RequirePopulated(PhaseDetect), ErrIncompleteRecord)

	inc := &Incident{Detect: &DetectRecord{}}
	assert.NoError(t, inc.RequirePopulated(PhaseDetect))

	err := inc.RequirePopulated(PhaseDetect, PhaseContain, PhaseInvestigate)
	assert.ErrorIs(t, err, ErrIncompleteRecord)
	assert.Contains(t, err.Error(), "contain")
}
