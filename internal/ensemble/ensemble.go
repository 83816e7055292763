package ensemble

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"

	"github.com/codegauge/codegauge/internal/config"
	"github.com/codegauge/codegauge/internal/signal"
)

// degradedConfidenceCap bounds verdict confidence when quorum is not met
const degradedConfidenceCap = 0.4

// Verdict is the fused result of all detector votes for one code unit.
// Consumed read-only by the integrator.
type Verdict struct {
	FusedScore     float64          `json:"fused_score"`
	AgreementRatio float64          `json:"agreement_ratio"`
	Confidence     float64          `json:"confidence"`
	Anomalous      bool             `json:"anomalous"`
	Degraded       bool             `json:"degraded"`
	ValidVotes     int              `json:"valid_votes"`
	Votes          []DetectorVote   `json:"votes"`
	Failed         []signal.Degraded `json:"failed,omitempty"`
}

// Ensemble fuses N independently configured detectors into one anomaly
// verdict. Detectors are registered at startup; the calibration, threshold,
// and reliability weight for each come from configuration.
type Ensemble struct {
	cfg       config.EnsembleConfig
	detectors []Detector
}

// New creates an ensemble. Every registered detector must have a
// configuration entry; this is validated here so a mismatch fails at startup
// rather than silently skewing votes.
func New(cfg config.EnsembleConfig, detectors ...Detector) (*Ensemble, error) {
	if len(detectors) == 0 {
		return nil, errors.New("ensemble requires at least one detector")
	}
	for _, d := range detectors {
		if _, ok := cfg.Detectors[d.Name()]; !ok {
			return nil, errors.New("no configuration for detector " + d.Name())
		}
	}

	return &Ensemble{cfg: cfg, detectors: detectors}, nil
}

type outcome struct {
	name string
	raw  float64
	err  error
}

// Detect scores the embedding with every detector concurrently and fuses the
// votes. An individual detector failing or timing out is excluded and
// recorded; only zero valid scores yields a fully degraded verdict. Detect
// itself never returns an error.
func (e *Ensemble) Detect(ctx context.Context, embedding []float64) Verdict {
	results := make(chan outcome, len(e.detectors))

	for _, d := range e.detectors {
		go func(d Detector) {
			scoreCtx, cancel := context.WithTimeout(ctx, e.cfg.DetectorTimeout)
			defer cancel()

			done := make(chan outcome, 1)
			go func() {
				raw, err := d.Score(scoreCtx, embedding)
				done <- outcome{name: d.Name(), raw: raw, err: err}
			}()

			select {
			case o := <-done:
				results <- o
			case <-scoreCtx.Done():
				// a slow detector is abandoned, not awaited
				results <- outcome{name: d.Name(), err: scoreCtx.Err()}
			}
		}(d)
	}

	outcomes := make([]outcome, 0, len(e.detectors))
	for range e.detectors {
		outcomes = append(outcomes, <-results)
	}
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].name < outcomes[j].name })

	votes := make([]DetectorVote, 0, len(outcomes))
	failed := make([]signal.Degraded, 0)

	for _, o := range outcomes {
		if o.err != nil {
			reason := signal.ReasonError
			if errors.Is(o.err, context.DeadlineExceeded) {
				reason = signal.ReasonTimeout
			}
			slog.Info("detector excluded from vote", "detector", o.name, "reason", reason, "error", o.err)
			failed = append(failed, signal.Degraded{Name: o.name, Reason: reason})
			continue
		}
		if math.IsNaN(o.raw) || math.IsInf(o.raw, 0) {
			slog.Info("detector excluded from vote", "detector", o.name, "reason", "non-finite score")
			failed = append(failed, signal.Degraded{Name: o.name, Reason: signal.ReasonError})
			continue
		}

		dc := e.cfg.Detectors[o.name]
		normalized := calibrate(o.raw, dc.Calibration)
		votes = append(votes, DetectorVote{
			Detector:   o.name,
			Raw:        o.raw,
			Normalized: normalized,
			Flag:       normalized >= dc.Threshold,
		})
	}

	return e.fuse(votes, failed)
}

func (e *Ensemble) fuse(votes []DetectorVote, failed []signal.Degraded) Verdict {
	verdict := Verdict{
		Votes:      votes,
		Failed:     failed,
		ValidVotes: len(votes),
	}

	if len(votes) == 0 {
		verdict.Degraded = true
		return verdict
	}

	weightSum := 0.0
	scoreSum := 0.0
	flagged := 0
	for _, v := range votes {
		w := e.cfg.Detectors[v.Detector].Weight
		weightSum += w
		scoreSum += w * v.Normalized
		if v.Flag {
			flagged++
		}
	}

	verdict.FusedScore = scoreSum / weightSum
	verdict.AgreementRatio = float64(flagged) / float64(len(votes))

	// Asymmetric consensus: a strong fused score can flag an anomaly even
	// without majority agreement, so one very confident detector is not
	// diluted away by several weak ones.
	verdict.Anomalous = verdict.AgreementRatio >= 0.5 ||
		verdict.FusedScore >= e.cfg.OverrideScore

	// 1.0 when votes are unanimous, 0.5 when evenly split
	verdict.Confidence = 0.5 + math.Abs(verdict.AgreementRatio-0.5)

	if len(votes) < e.cfg.MinQuorum {
		verdict.Degraded = true
		if verdict.Confidence > degradedConfidenceCap {
			verdict.Confidence = degradedConfidenceCap
		}
	}

	return verdict
}
