package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/codegauge/codegauge/internal/errors"
)

// CalibrationMethod selects how a detector's raw score is mapped onto [0,1]
type CalibrationMethod string

const (
	// CalibrationMinMax rescales linearly over the detector's historical
	// score range.
	CalibrationMinMax CalibrationMethod = "minmax"
	// CalibrationSigmoid squashes through a logistic curve with a
	// detector-specific midpoint and steepness.
	CalibrationSigmoid CalibrationMethod = "sigmoid"
)

// Calibration holds the per-detector normalization parameters. These are
// external configuration, not hardcoded into the detectors.
type Calibration struct {
	Method    CalibrationMethod `json:"method"`
	Min       float64           `json:"min,omitempty"`
	Max       float64           `json:"max,omitempty"`
	Midpoint  float64           `json:"midpoint,omitempty"`
	Steepness float64           `json:"steepness,omitempty"`
}

// DetectorConfig configures one ensemble member
type DetectorConfig struct {
	// Weight is the detector's static reliability weight in the fused score
	Weight float64 `json:"weight"`
	// Threshold is applied to the normalized score to derive the vote flag
	Threshold   float64     `json:"threshold"`
	Calibration Calibration `json:"calibration"`
}

// EnsembleConfig configures the anomaly detector ensemble
type EnsembleConfig struct {
	Detectors map[string]DetectorConfig `json:"detectors"`
	// MinQuorum is the minimum number of valid detector scores for a
	// non-degraded verdict
	MinQuorum int `json:"min_quorum"`
	// OverrideScore lets a single very confident fused score flag an anomaly
	// even without majority agreement
	OverrideScore float64 `json:"override_score"`
	// DetectorTimeout bounds each detector's scoring call
	DetectorTimeout time.Duration `json:"detector_timeout"`
}

// Config is the full fusion configuration, validated once at startup and
// injected into the integrator and ensemble rather than read from globals.
type Config struct {
	// CategoryWeights maps category name to its static fusion weight
	CategoryWeights map[string]float64 `json:"category_weights"`
	Ensemble        EnsembleConfig     `json:"ensemble"`
	// BatchConcurrency bounds the batch analysis worker pool
	BatchConcurrency int `json:"batch_concurrency"`
	// NeedsReviewThreshold is the documented band below which a unit needs
	// human review
	NeedsReviewThreshold float64 `json:"needs_review_threshold"`
}

// Default returns the default fusion configuration
func Default() Config {
	return Config{
		CategoryWeights: map[string]float64{
			"structure":         0.25,
			"security":          0.35,
			"anomaly":           0.20,
			"predicted_quality": 0.20,
		},
		Ensemble: EnsembleConfig{
			Detectors: map[string]DetectorConfig{
				"centroid_distance": {
					Weight:    1.0,
					Threshold: 0.6,
					Calibration: Calibration{
						Method:    CalibrationSigmoid,
						Midpoint:  1.5,
						Steepness: 2.0,
					},
				},
				"reconstruction_error": {
					Weight:    1.0,
					Threshold: 0.65,
					Calibration: Calibration{
						Method: CalibrationMinMax,
						Min:    0,
						Max:    4.0,
					},
				},
				"knn_distance": {
					Weight:    0.8,
					Threshold: 0.6,
					Calibration: Calibration{
						Method:    CalibrationSigmoid,
						Midpoint:  2.0,
						Steepness: 1.5,
					},
				},
			},
			MinQuorum:       2,
			OverrideScore:   0.8,
			DetectorTimeout: 2 * time.Second,
		},
		BatchConcurrency:     4,
		NeedsReviewThreshold: 60,
	}
}

// Load reads configuration from a JSON file, falling back to defaults when
// the file does not exist. Missing fields keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return cfg, errors.NewConfigurationError("failed to open config file", err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return cfg, errors.NewConfigurationError("failed to decode config file", err)
	}

	return cfg, nil
}

// Validate fails fast on malformed configuration. This is the only fatal
// error class; everything downstream degrades gracefully instead.
func (c Config) Validate() error {
	total := 0.0
	for name, w := range c.CategoryWeights {
		if w < 0 || math.IsNaN(w) {
			return errors.NewConfigurationError(
				fmt.Sprintf("category %q has invalid weight %v", name, w), nil)
		}
		total += w
	}
	if total <= 0 {
		return errors.NewConfigurationError("category weights must sum to a positive total", nil)
	}

	if len(c.Ensemble.Detectors) == 0 {
		return errors.NewConfigurationError("ensemble requires at least one detector", nil)
	}

	for name, dc := range c.Ensemble.Detectors {
		if dc.Weight <= 0 || math.IsNaN(dc.Weight) {
			return errors.NewConfigurationError(
				fmt.Sprintf("detector %q has invalid weight %v", name, dc.Weight), nil)
		}
		if dc.Threshold < 0 || dc.Threshold > 1 {
			return errors.NewConfigurationError(
				fmt.Sprintf("detector %q threshold %v outside [0,1]", name, dc.Threshold), nil)
		}
		switch dc.Calibration.Method {
		case CalibrationMinMax:
			if dc.Calibration.Max <= dc.Calibration.Min {
				return errors.NewConfigurationError(
					fmt.Sprintf("detector %q min-max calibration requires max > min", name), nil)
			}
		case CalibrationSigmoid:
			if dc.Calibration.Steepness <= 0 {
				return errors.NewConfigurationError(
					fmt.Sprintf("detector %q sigmoid calibration requires positive steepness", name), nil)
			}
		default:
			return errors.NewConfigurationError(
				fmt.Sprintf("detector %q has unknown calibration method %q", name, dc.Calibration.Method), nil)
		}
	}

	if c.Ensemble.MinQuorum < 1 {
		return errors.NewConfigurationError("ensemble quorum must be at least 1", nil)
	}
	if c.Ensemble.OverrideScore <= 0 || c.Ensemble.OverrideScore > 1 {
		return errors.NewConfigurationError("ensemble override score must be in (0,1]", nil)
	}
	if c.Ensemble.DetectorTimeout <= 0 {
		return errors.NewConfigurationError("detector timeout must be positive", nil)
	}
	if c.BatchConcurrency < 1 {
		return errors.NewConfigurationError("batch concurrency must be at least 1", nil)
	}
	if c.NeedsReviewThreshold < 0 || c.NeedsReviewThreshold > 100 {
		return errors.NewConfigurationError("needs-review threshold must be in [0,100]", nil)
	}

	return nil
}
