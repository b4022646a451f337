package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_ClassifyAUC(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name string
		auc  float64
		want AlertLevel
	}{
		{"live auc from alert", 0.42, AlertLevelRed},
		{"just under red", 0.499, AlertLevelRed},
		{"at red", 0.50, AlertLevelYellow},
		{"baseline", 0.58, AlertLevelYellow},
		{"at yellow", 0.60, AlertLevelGreen},
		{"healthy", 0.71, AlertLevelGreen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.ClassifyAUC(tt.auc))
		})
	}
}

func TestPolicy_ClassifyPSI(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, PSIBandStable, p.ClassifyPSI(0.05))
	assert.Equal(t, PSIBandWatch, p.ClassifyPSI(0.10))
	assert.Equal(t, PSIBandWatch, p.ClassifyPSI(0.25))
	assert.Equal(t, PSIBandMaterial, p.ClassifyPSI(0.42))
}

func TestPolicy_ContainedWithinTarget(t *testing.T) {
	p := DefaultPolicy()

	assert.True(t, p.ContainedWithinTarget(Elapsed(2*time.Hour+15*time.Minute)))
	assert.False(t, p.ContainedWithinTarget(Elapsed(4*time.Hour)))
}

func TestPolicy_TriggerMismatch(t *testing.T) {
	p := DefaultPolicy()

	assert.True(t, p.TriggerMismatch("Rolling AUC dropped below 0.70 threshold"))
	assert.False(t, p.TriggerMismatch("Rolling AUC dropped below 0.50 threshold"))
	assert.False(t, p.TriggerMismatch("Rolling AUC collapsed"))
}

func TestPolicy_Validate(t *testing.T) {
	require.NoError(t, DefaultPolicy().Validate())

	p := DefaultPolicy()
	p.AUCRed = 0.7
	assert.Error(t, p.Validate())

	p = DefaultPolicy()
	p.PSIStableMax = 0.3
	assert.Error(t, p.Validate())

	p = DefaultPolicy()
	p.ModelTier = 0
	assert.Error(t, p.Validate())

	p = DefaultPolicy()
	p.ContainTarget = 0
	assert.Error(t, p.Validate())
}

func TestElapsed_String(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{45 * time.Minute, "45m"},
		{2 * time.Hour, "2h"},
		{2*time.Hour + 15*time.Minute, "2h 15m"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Elapsed(tt.d).String())
	}

	b, err := Elapsed(2*time.Hour + 15*time.Minute).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2h 15m", string(b))
}

func TestElapsed_UnmarshalText(t *testing.T) {
	for _, d := range []time.Duration{30 * time.Second, 45 * time.Minute, 4 * time.Hour, 2*time.Hour + 15*time.Minute} {
		b, err := Elapsed(d).MarshalText()
		require.NoError(t, err)

		var got Elapsed
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, d, got.Duration())
	}

	var e Elapsed
	assert.Error(t, e.UnmarshalText([]byte("soon")))
}
