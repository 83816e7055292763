package signal

import (
	"math"
	"sort"
)

// Rule is one registered normalization rule: the declared input domain of a
// producer and the monotonic transform that maps it onto the unit scale.
type Rule struct {
	Category   string
	Kind       SourceKind
	Domain     Scale
	Transform  Transform
	Confidence float64
}

// Adapter normalizes heterogeneous producer outputs into Signals. It is a
// pure transformation: no side effects, and it never fabricates a default
// value for a producer that failed.
type Adapter struct {
	rules map[string]Rule
}

// NewAdapter creates an empty adapter
func NewAdapter() *Adapter {
	return &Adapter{rules: make(map[string]Rule)}
}

// Register adds a normalization rule for the named producer output
func (a *Adapter) Register(name string, rule Rule) {
	a.rules[name] = rule
}

// Names returns the registered producer names in deterministic order
func (a *Adapter) Names() []string {
	names := make([]string, 0, len(a.rules))
	for name := range a.rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NamesByCategory returns the registered producer names for one category in
// deterministic order
func (a *Adapter) NamesByCategory(category string) []string {
	names := make([]string, 0)
	for name, rule := range a.rules {
		if rule.Category == category {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Normalize converts raw producer outputs into Signals. Every registered
// producer either yields exactly one Signal or one Degraded entry:
// absent from raw -> missing, non-finite -> parse_error, outside the declared
// domain -> out_of_domain (discarded, never clamped).
func (a *Adapter) Normalize(raw map[string]Raw) ([]Signal, []Degraded) {
	signals := make([]Signal, 0, len(a.rules))
	degraded := make([]Degraded, 0)

	for _, name := range a.Names() {
		rule := a.rules[name]

		r, ok := raw[name]
		if !ok {
			degraded = append(degraded, Degraded{Name: name, Reason: ReasonMissing})
			continue
		}

		if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
			degraded = append(degraded, Degraded{Name: name, Reason: ReasonParseError})
			continue
		}

		if rule.Domain.Bounded && (r.Value < rule.Domain.Min || r.Value > rule.Domain.Max) {
			degraded = append(degraded, Degraded{Name: name, Reason: ReasonOutOfDomain})
			continue
		}
		if !rule.Domain.Bounded && r.Value < rule.Domain.Min {
			degraded = append(degraded, Degraded{Name: name, Reason: ReasonOutOfDomain})
			continue
		}

		confidence := rule.Confidence
		if r.Confidence >= 0 {
			confidence = r.Confidence
		}

		signals = append(signals, Signal{
			Name:       name,
			Value:      rule.Transform(r.Value),
			Scale:      UnitScale,
			Confidence: confidence,
			Kind:       rule.Kind,
			Category:   rule.Category,
		})
	}

	return signals, degraded
}

// DefaultAdapter returns an adapter with rules for the reference providers'
// metric set. Static metrics squash their open-ended ranges through logistic
// curves; ML outputs pass through on their native [0,1] scale.
func DefaultAdapter() *Adapter {
	a := NewAdapter()

	// Structure category, including the complexity metrics
	a.Register("cyclomatic_complexity", Rule{
		Category:   CategoryStructure,
		Kind:       KindStatic,
		Domain:     Scale{Min: 1, Bounded: false},
		Transform:  Complement(Logistic(15, 0.15)),
		Confidence: 0.9,
	})
	a.Register("max_nesting_depth", Rule{
		Category:   CategoryStructure,
		Kind:       KindStatic,
		Domain:     Scale{Min: 0, Bounded: false},
		Transform:  Complement(Logistic(5, 0.8)),
		Confidence: 0.85,
	})
	a.Register("avg_function_length", Rule{
		Category:   CategoryStructure,
		Kind:       KindStatic,
		Domain:     Scale{Min: 0, Bounded: false},
		Transform:  Complement(Logistic(40, 0.08)),
		Confidence: 0.8,
	})
	a.Register("max_argument_count", Rule{
		Category:   CategoryStructure,
		Kind:       KindStatic,
		Domain:     Scale{Min: 0, Bounded: false},
		Transform:  Complement(Logistic(5, 0.9)),
		Confidence: 0.75,
	})
	a.Register("comment_density", Rule{
		Category:   CategoryStructure,
		Kind:       KindStatic,
		Domain:     Scale{Min: 0, Max: 1, Bounded: true},
		Transform:  Identity(),
		Confidence: 0.6,
	})

	// Security category: one bounded reduction of scanner findings
	a.Register("security_severity", Rule{
		Category:   CategorySecurity,
		Kind:       KindStatic,
		Domain:     Scale{Min: 0, Bounded: false},
		Transform:  Complement(Logistic(3, 0.6)),
		Confidence: 0.9,
	})

	// ML categories: native [0,1], quality-oriented. The ensemble's fused
	// score is anomaly-oriented so it enters through Complement.
	a.Register("ensemble_anomaly", Rule{
		Category:   CategoryAnomaly,
		Kind:       KindMLAnomaly,
		Domain:     Scale{Min: 0, Max: 1, Bounded: true},
		Transform:  Complement(Identity()),
		Confidence: 0.7,
	})
	a.Register("predicted_quality", Rule{
		Category:   CategoryPredictedQuality,
		Kind:       KindMLQuality,
		Domain:     Scale{Min: 0, Max: 1, Bounded: true},
		Transform:  Identity(),
		Confidence: 0.7,
	})

	return a
}
