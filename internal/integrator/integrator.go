// Package integrator is the fusion engine: it collects static and ML signals
// for a code unit, weights and calibrates them per category, and merges them
// into a single explainable assessment.
package integrator

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"

	"github.com/codegauge/codegauge/internal/cache"
	"github.com/codegauge/codegauge/internal/config"
	"github.com/codegauge/codegauge/internal/ensemble"
	"github.com/codegauge/codegauge/internal/monitoring"
	"github.com/codegauge/codegauge/internal/providers"
	"github.com/codegauge/codegauge/internal/quality"
	"github.com/codegauge/codegauge/internal/signal"
	"github.com/codegauge/codegauge/internal/types"
)

// Deps are the signal sources the integrator fuses. All of them are external
// collaborators consumed through their contracts.
type Deps struct {
	Structure providers.StructureProvider
	Security  providers.SecurityScanner
	Embedder  providers.Embedder
	Quality   *quality.Adapter
	Ensemble  *ensemble.Ensemble
}

// Integrator orchestrates comprehensive analysis. It is stateless across
// calls: no shared mutable state exists between analyses of different units.
type Integrator struct {
	cfg     config.Config
	adapter *signal.Adapter
	deps    Deps
	store   *cache.Store
	metrics *monitoring.Metrics
}

// New creates an integrator. Configuration is validated here; malformed
// configuration is the only fatal condition and fails fast at startup.
func New(cfg config.Config, adapter *signal.Adapter, deps Deps) (*Integrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if adapter == nil {
		return nil, errors.New("integrator requires a signal adapter")
	}
	if deps.Structure == nil || deps.Security == nil || deps.Embedder == nil ||
		deps.Quality == nil || deps.Ensemble == nil {
		return nil, errors.New("integrator requires all signal sources")
	}

	return &Integrator{cfg: cfg, adapter: adapter, deps: deps}, nil
}

// WithCache injects a caller-supplied assessment cache. Without one, every
// call is a fresh fusion over fresh signals.
func (it *Integrator) WithCache(store *cache.Store) *Integrator {
	it.store = store
	return it
}

// WithMetrics injects application metrics
func (it *Integrator) WithMetrics(m *monitoring.Metrics) *Integrator {
	it.metrics = m
	return it
}

// ComprehensiveAnalysis fuses all available signals for one code unit. It
// never fails: every producer error degrades into the assessment's
// degraded_signals instead of propagating.
func (it *Integrator) ComprehensiveAnalysis(ctx context.Context, code string) Assessment {
	unit := types.NewCodeUnit(code)

	if it.store != nil {
		if v, ok := it.store.Get(unit.ID); ok {
			if cached, ok := v.(Assessment); ok {
				if it.metrics != nil {
					it.metrics.IncrementCacheHit()
				}
				return cached
			}
		}
		if it.metrics != nil {
			it.metrics.IncrementCacheMiss()
		}
	}

	raw := make(map[string]signal.Raw)
	extra := make([]signal.Degraded, 0)

	it.collectStatic(unit, raw)
	extra = append(extra, it.collectML(ctx, unit, raw)...)

	signals, degraded := it.adapter.Normalize(raw)
	degraded = mergeDegraded(degraded, extra)

	assessment := it.fuse(unit, signals, degraded)

	if it.metrics != nil {
		it.metrics.IncrementAnalysis()
		it.metrics.AddDegradedSignals(len(assessment.DegradedSignals))
		if assessment.InsufficientSignal {
			it.metrics.IncrementInsufficient()
		}
	}
	if it.store != nil {
		it.store.Set(unit.ID, assessment)
	}

	return assessment
}

// collectStatic gathers structure and security producer outputs. A parse
// error marks every structure metric as unparseable; other producer errors
// leave their outputs absent, which the adapter records as missing.
func (it *Integrator) collectStatic(unit types.CodeUnit, raw map[string]signal.Raw) {
	metrics, err := it.deps.Structure.AnalyzeStructure(unit.Source)
	if err != nil {
		var parseErr *providers.ParseError
		if errors.As(err, &parseErr) {
			slog.Info("structure category degraded", "unit_id", unit.ID, "reason", parseErr.Reason)
			for _, name := range it.adapter.NamesByCategory(signal.CategoryStructure) {
				raw[name] = signal.RawValue(math.NaN())
			}
		} else {
			slog.Info("structure provider failed", "unit_id", unit.ID, "error", err)
		}
	} else {
		for name, v := range metrics {
			raw[name] = signal.RawValue(v)
		}
	}

	findings, err := it.deps.Security.Scan(unit.Source)
	if err != nil {
		slog.Info("security scanner failed", "unit_id", unit.ID, "error", err)
	} else {
		raw["security_severity"] = signal.RawValue(providers.ReduceFindings(findings))
	}
}

// collectML embeds the unit and gathers the ensemble verdict and the learned
// quality estimate. An unavailable embedder leaves both ML outputs absent.
func (it *Integrator) collectML(ctx context.Context, unit types.CodeUnit, raw map[string]signal.Raw) []signal.Degraded {
	extra := make([]signal.Degraded, 0)

	embedding, err := it.deps.Embedder.Embed(unit.Source)
	if err != nil {
		slog.Info("embedding unavailable, ML categories degraded", "unit_id", unit.ID, "error", err)
		return extra
	}

	verdict := it.deps.Ensemble.Detect(ctx, embedding)
	extra = append(extra, verdict.Failed...)
	if it.metrics != nil {
		for range verdict.Failed {
			it.metrics.IncrementDetectorExclusion()
		}
	}
	if verdict.ValidVotes > 0 {
		raw["ensemble_anomaly"] = signal.Raw{
			Value:      verdict.FusedScore,
			Confidence: verdict.Confidence,
		}
		if verdict.Degraded {
			slog.Info("ensemble verdict degraded by quorum failure",
				"unit_id", unit.ID, "valid_votes", verdict.ValidVotes)
		}
	} else {
		// no surviving vote at all: the quorum failure itself is the reason,
		// not a missing producer
		extra = append(extra, signal.Degraded{Name: "ensemble_anomaly", Reason: signal.ReasonQuorum})
	}

	pred := it.deps.Quality.Predict(embedding)
	if pred.Degraded != nil {
		extra = append(extra, *pred.Degraded)
	} else {
		raw["predicted_quality"] = signal.Raw{
			Value:      pred.Raw,
			Confidence: pred.Confidence,
		}
	}

	return extra
}

// fuse computes subscores, renormalized category weights, the overall score,
// confidence, and the ordered explanation.
func (it *Integrator) fuse(unit types.CodeUnit, signals []signal.Signal, degraded []signal.Degraded) Assessment {
	a := Assessment{
		UnitID:          unit.ID,
		Subscores:       make(map[string]float64),
		Explanation:     make([]Contribution, 0, len(signals)),
		DegradedSignals: degraded,
	}

	byCategory := make(map[string][]signal.Signal)
	for _, s := range signals {
		byCategory[s.Category] = append(byCategory[s.Category], s)
	}

	categories := make([]string, 0, len(it.cfg.CategoryWeights))
	for name := range it.cfg.CategoryWeights {
		categories = append(categories, name)
	}
	sort.Strings(categories)

	// a missing category is excluded and the rest renormalized; the score is
	// never computed over an artificially zeroed category
	available := make([]string, 0, len(categories))
	weightTotal := 0.0
	for _, cat := range categories {
		if len(byCategory[cat]) > 0 {
			available = append(available, cat)
			weightTotal += it.cfg.CategoryWeights[cat]
		}
	}

	if len(available) == 0 || weightTotal <= 0 {
		slog.Info("insufficient signal, all categories degraded", "unit_id", unit.ID)
		a.InsufficientSignal = true
		a.NeedsReview = true
		return a
	}

	overall := 0.0
	confidence := 0.0
	for _, cat := range available {
		catWeight := it.cfg.CategoryWeights[cat] / weightTotal
		sigs := byCategory[cat]

		confTotal := 0.0
		for _, s := range sigs {
			confTotal += s.Confidence
		}

		sub := 0.0
		for _, s := range sigs {
			// zero-confidence signals within a category fall back to equal
			// weighting rather than dividing by zero
			share := 1.0 / float64(len(sigs))
			if confTotal > 0 {
				share = s.Confidence / confTotal
			}

			sub += share * s.Value

			sigWeight := catWeight * share
			a.Explanation = append(a.Explanation, Contribution{
				SignalName:   s.Name,
				Value:        s.Value,
				Weight:       sigWeight,
				Contribution: sigWeight * s.Value * 100,
			})
			confidence += sigWeight * s.Confidence
		}

		a.Subscores[cat] = sub * 100
		overall += catWeight * sub
	}

	score := overall * 100
	a.OverallScore = &score
	a.NeedsReview = score < it.cfg.NeedsReviewThreshold

	// linear penalty for degraded categories
	a.Confidence = confidence * float64(len(available)) / float64(len(categories))

	// dominant factors first; callers rely on this ordering
	sort.SliceStable(a.Explanation, func(i, j int) bool {
		ci, cj := math.Abs(a.Explanation[i].Contribution), math.Abs(a.Explanation[j].Contribution)
		if ci != cj {
			return ci > cj
		}
		return a.Explanation[i].SignalName < a.Explanation[j].SignalName
	})

	return a
}

// mergeDegraded combines adapter degraded entries with producer-specific
// ones. A specific reason (error, out_of_domain from the quality adapter,
// detector failures) replaces the adapter's generic missing entry for the
// same name. Output is sorted for deterministic assessments.
func mergeDegraded(base, extra []signal.Degraded) []signal.Degraded {
	byName := make(map[string]string, len(base)+len(extra))
	for _, d := range base {
		byName[d.Name] = d.Reason
	}
	for _, d := range extra {
		byName[d.Name] = d.Reason
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	merged := make([]signal.Degraded, 0, len(names))
	for _, name := range names {
		merged = append(merged, signal.Degraded{Name: name, Reason: byName[name]})
	}
	return merged
}
