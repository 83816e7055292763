package signal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAdapter() *Adapter {
	a := NewAdapter()
	a.Register("bounded_metric", Rule{
		Category:   CategoryStructure,
		Kind:       KindStatic,
		Domain:     Scale{Min: 0, Max: 1, Bounded: true},
		Transform:  Identity(),
		Confidence: 0.8,
	})
	a.Register("open_metric", Rule{
		Category:   CategoryStructure,
		Kind:       KindStatic,
		Domain:     Scale{Min: 0, Bounded: false},
		Transform:  Complement(Logistic(10, 0.5)),
		Confidence: 0.9,
	})
	return a
}

func TestNormalizeHappyPath(t *testing.T) {
	a := testAdapter()

	signals, degraded := a.Normalize(map[string]Raw{
		"bounded_metric": RawValue(0.6),
		"open_metric":    RawValue(10),
	})

	require.Len(t, signals, 2)
	assert.Empty(t, degraded)

	for _, s := range signals {
		assert.GreaterOrEqual(t, s.Value, 0.0)
		assert.LessOrEqual(t, s.Value, 1.0)
		assert.Equal(t, UnitScale, s.Scale)
	}

	assert.Equal(t, "bounded_metric", signals[0].Name)
	assert.Equal(t, 0.6, signals[0].Value)
	assert.Equal(t, 0.8, signals[0].Confidence)

	// at the logistic midpoint the complement lands on 0.5
	assert.InDelta(t, 0.5, signals[1].Value, 1e-9)
}

func TestNormalizeDegradedReasons(t *testing.T) {
	tests := []struct {
		name       string
		raw        map[string]Raw
		wantName   string
		wantReason string
	}{
		{
			name:       "absent producer output",
			raw:        map[string]Raw{"open_metric": RawValue(3)},
			wantName:   "bounded_metric",
			wantReason: ReasonMissing,
		},
		{
			name: "NaN value",
			raw: map[string]Raw{
				"bounded_metric": RawValue(math.NaN()),
				"open_metric":    RawValue(3),
			},
			wantName:   "bounded_metric",
			wantReason: ReasonParseError,
		},
		{
			name: "infinite value",
			raw: map[string]Raw{
				"bounded_metric": RawValue(math.Inf(1)),
				"open_metric":    RawValue(3),
			},
			wantName:   "bounded_metric",
			wantReason: ReasonParseError,
		},
		{
			name: "above bounded domain",
			raw: map[string]Raw{
				"bounded_metric": RawValue(1.5),
				"open_metric":    RawValue(3),
			},
			wantName:   "bounded_metric",
			wantReason: ReasonOutOfDomain,
		},
		{
			name: "below open domain minimum",
			raw: map[string]Raw{
				"bounded_metric": RawValue(0.5),
				"open_metric":    RawValue(-1),
			},
			wantName:   "open_metric",
			wantReason: ReasonOutOfDomain,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testAdapter()

			signals, degraded := a.Normalize(tt.raw)

			require.Len(t, degraded, 1)
			assert.Equal(t, tt.wantName, degraded[0].Name)
			assert.Equal(t, tt.wantReason, degraded[0].Reason)

			// the out-of-range value is discarded, never clamped into a signal
			assert.Len(t, signals, 1)
			assert.NotEqual(t, tt.wantName, signals[0].Name)
		})
	}
}

func TestNormalizeProducerConfidenceOverridesDefault(t *testing.T) {
	a := testAdapter()

	signals, degraded := a.Normalize(map[string]Raw{
		"bounded_metric": {Value: 0.5, Confidence: 0.3},
		"open_metric":    RawValue(3),
	})

	require.Empty(t, degraded)
	require.Len(t, signals, 2)
	assert.Equal(t, 0.3, signals[0].Confidence)
	assert.Equal(t, 0.9, signals[1].Confidence)
}

func TestNamesByCategory(t *testing.T) {
	a := DefaultAdapter()

	structure := a.NamesByCategory(CategoryStructure)
	assert.Equal(t, []string{
		"avg_function_length",
		"comment_density",
		"cyclomatic_complexity",
		"max_argument_count",
		"max_nesting_depth",
	}, structure)

	assert.Equal(t, []string{"ensemble_anomaly"}, a.NamesByCategory(CategoryAnomaly))
	assert.Empty(t, a.NamesByCategory("unknown"))
}

func TestDefaultAdapterEveryRuleYieldsSignalOrDegraded(t *testing.T) {
	a := DefaultAdapter()

	signals, degraded := a.Normalize(map[string]Raw{
		"cyclomatic_complexity": RawValue(5),
		"comment_density":       RawValue(0.2),
	})

	assert.Equal(t, len(a.Names()), len(signals)+len(degraded))
}

func TestTransforms(t *testing.T) {
	t.Run("identity", func(t *testing.T) {
		assert.Equal(t, 0.42, Identity()(0.42))
	})

	t.Run("logistic midpoint and monotonicity", func(t *testing.T) {
		f := Logistic(15, 0.15)
		assert.InDelta(t, 0.5, f(15), 1e-9)
		assert.Less(t, f(5), f(15))
		assert.Less(t, f(15), f(40))
		assert.GreaterOrEqual(t, f(-1000), 0.0)
		assert.LessOrEqual(t, f(1000), 1.0)
	})

	t.Run("linear clips at edges", func(t *testing.T) {
		f := Linear(0, 4)
		assert.Equal(t, 0.0, f(-1))
		assert.InDelta(t, 0.5, f(2), 1e-9)
		assert.Equal(t, 1.0, f(5))
	})

	t.Run("linear with degenerate range", func(t *testing.T) {
		assert.Equal(t, 0.0, Linear(2, 2)(3))
	})

	t.Run("complement flips orientation", func(t *testing.T) {
		f := Complement(Identity())
		assert.InDelta(t, 0.7, f(0.3), 1e-9)

		g := Complement(Logistic(5, 1))
		assert.Greater(t, g(0), g(10))
	})
}
