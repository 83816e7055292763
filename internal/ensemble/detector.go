package ensemble

import (
	"context"
	"math"

	"github.com/codegauge/codegauge/internal/config"
)

// Detector is one unsupervised anomaly scorer over a code embedding. Raw
// scores are detector-specific and unbounded; normalization onto [0,1]
// happens through the detector's configured calibration, not inside the
// detector itself.
type Detector interface {
	Name() string
	Score(ctx context.Context, embedding []float64) (float64, error)
}

// DetectorVote is one detector's output for a single run. Votes are created
// per detection run and never persisted beyond it.
type DetectorVote struct {
	Detector   string  `json:"detector"`
	Raw        float64 `json:"raw"`
	Normalized float64 `json:"normalized"`
	Flag       bool    `json:"flag"`
}

// calibrate maps a raw detector score onto [0,1] using the detector's
// configured calibration
func calibrate(raw float64, cal config.Calibration) float64 {
	switch cal.Method {
	case config.CalibrationMinMax:
		if cal.Max <= cal.Min {
			return 0
		}
		t := (raw - cal.Min) / (cal.Max - cal.Min)
		if t < 0 {
			return 0
		}
		if t > 1 {
			return 1
		}
		return t
	case config.CalibrationSigmoid:
		return 1 / (1 + math.Exp(-cal.Steepness*(raw-cal.Midpoint)))
	default:
		return 0
	}
}
