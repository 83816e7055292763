// Package quality adapts an external learned quality estimator into a signal
// source. It is a thin wrapper: the model itself is not reimplemented here.
package quality

import (
	"log/slog"
	"math"

	"github.com/codegauge/codegauge/internal/providers"
	"github.com/codegauge/codegauge/internal/signal"
)

// Prediction is the adapter's output: either a usable estimate or a degraded
// marker. The raw value is never clamped into range; clamping would hide
// model drift.
type Prediction struct {
	Raw        float64
	Confidence float64
	Degraded   *signal.Degraded
}

// Adapter wraps a learned quality model
type Adapter struct {
	model providers.QualityModel
}

// NewAdapter creates a quality predictor adapter
func NewAdapter(model providers.QualityModel) *Adapter {
	return &Adapter{model: model}
}

// Predict runs the model over an embedding. A failed call or an estimate
// outside the declared [0,1] range is reported as degraded.
func (a *Adapter) Predict(embedding []float64) Prediction {
	raw, confidence, err := a.model.Predict(embedding)
	if err != nil {
		slog.Info("quality model call failed", "error", err)
		return Prediction{Degraded: &signal.Degraded{
			Name:   "predicted_quality",
			Reason: signal.ReasonError,
		}}
	}

	if math.IsNaN(raw) || raw < 0 || raw > 1 {
		slog.Info("quality model output outside declared range", "raw", raw)
		return Prediction{Degraded: &signal.Degraded{
			Name:   "predicted_quality",
			Reason: signal.ReasonOutOfDomain,
		}}
	}

	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return Prediction{Raw: raw, Confidence: confidence}
}
