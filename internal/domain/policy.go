package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// AlertLevel is the monitoring band a rolling AUC falls into.
type AlertLevel string

// Alert levels.
const (
	AlertLevelGreen  AlertLevel = "GREEN"
	AlertLevelYellow AlertLevel = "YELLOW"
	AlertLevelRed    AlertLevel = "RED"
)

// PSIBand is the drift interpretation band of a Population Stability Index value.
type PSIBand string

// PSI bands.
const (
	PSIBandStable   PSIBand = "stable"
	PSIBandWatch    PSIBand = "watch"
	PSIBandMaterial PSIBand = "material"
)

// Policy holds the monitoring and containment thresholds the walkthrough is judged against.
type Policy struct {
	ModelTier                    int           `json:"model_tier"`
	AUCRed                       float64       `json:"auc_red"`
	AUCYellow                    float64       `json:"auc_yellow"`
	RollingWindowDaysCurrent     int           `json:"rolling_window_days_current"`
	RollingWindowDaysRecommended int           `json:"rolling_window_days_recommended"`
	ContainTarget                time.Duration `json:"-"`
	PSIStableMax                 float64       `json:"psi_stable_max"`
	PSIWatchMax                  float64       `json:"psi_watch_max"`
}

// DefaultPolicy returns the thresholds used by the lab.
func DefaultPolicy() Policy {
	return Policy{
		ModelTier:                    1,
		AUCRed:                       0.50,
		AUCYellow:                    0.60,
		RollingWindowDaysCurrent:     90,
		RollingWindowDaysRecommended: 30,
		ContainTarget:                4 * time.Hour,
		PSIStableMax:                 0.10,
		PSIWatchMax:                  0.25,
	}
}

// Validate checks that thresholds are ordered and in range.
func (p Policy) Validate() error {
	if p.ModelTier < 1 {
		return fmt.Errorf("model tier must be >= 1, got %d", p.ModelTier)
	}
	if p.AUCRed <= 0 || p.AUCRed > p.AUCYellow || p.AUCYellow > 1 {
		return fmt.Errorf("auc thresholds must satisfy 0 < red <= yellow <= 1, got red=%.2f yellow=%.2f", p.AUCRed, p.AUCYellow)
	}
	if p.PSIStableMax <= 0 || p.PSIStableMax > p.PSIWatchMax {
		return fmt.Errorf("psi bands must satisfy 0 < stable <= watch, got stable=%.2f watch=%.2f", p.PSIStableMax, p.PSIWatchMax)
	}
	if p.ContainTarget <= 0 {
		return fmt.Errorf("contain target must be positive, got %s", p.ContainTarget)
	}
	return nil
}

// ClassifyAUC returns the alert level for a rolling AUC value.
func (p Policy) ClassifyAUC(auc float64) AlertLevel {
	switch {
	case auc < p.AUCRed:
		return AlertLevelRed
	case auc < p.AUCYellow:
		return AlertLevelYellow
	default:
		return AlertLevelGreen
	}
}

// ClassifyPSI returns the drift band for a PSI value.
func (p Policy) ClassifyPSI(psi float64) PSIBand {
	switch {
	case psi < p.PSIStableMax:
		return PSIBandStable
	case psi <= p.PSIWatchMax:
		return PSIBandWatch
	default:
		return PSIBandMaterial
	}
}

// ContainedWithinTarget checks the time to contain against the containment target.
func (p Policy) ContainedWithinTarget(e Elapsed) bool {
	return e.Duration() < p.ContainTarget
}

var thresholdPattern = regexp.MustCompile(`\b0\.\d+\b`)

// TriggerMismatch reports whether a logged trigger quotes a threshold that is
// neither the approved RED nor YELLOW value (stale monitoring configuration).
func (p Policy) TriggerMismatch(trigger string) bool {
	for _, m := range thresholdPattern.FindAllString(trigger, -1) {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil {
			continue
		}
		if v != p.AUCRed && v != p.AUCYellow {
			return true
		}
	}
	return false
}
