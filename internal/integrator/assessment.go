package integrator

import (
	"github.com/codegauge/codegauge/internal/signal"
)

// Contribution is one entry of an assessment's explanation: a signal's
// normalized value, its fused weight, and its resulting contribution to the
// overall score.
type Contribution struct {
	SignalName   string  `json:"signal_name"`
	Value        float64 `json:"value"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// Assessment is the final output of one analysis. Constructed once per call
// and immutable afterward. A nil OverallScore with InsufficientSignal set
// means every category degraded; the analysis still completed.
type Assessment struct {
	UnitID             string             `json:"unit_id"`
	OverallScore       *float64           `json:"overall_score"`
	InsufficientSignal bool               `json:"insufficient_signal,omitempty"`
	NeedsReview        bool               `json:"needs_review"`
	Subscores          map[string]float64 `json:"subscores"`
	Confidence         float64            `json:"confidence"`
	Explanation        []Contribution     `json:"explanation"`
	DegradedSignals    []signal.Degraded  `json:"degraded_signals"`
}
