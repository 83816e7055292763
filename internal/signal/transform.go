package signal

import "math"

// Transform maps a raw producer value onto [0,1] monotonically
type Transform func(float64) float64

// Identity passes a native [0,1] value through unchanged
func Identity() Transform {
	return func(x float64) float64 { return x }
}

// Logistic squashes an unbounded metric through a logistic curve centered at
// midpoint. Steepness controls how fast the curve saturates.
func Logistic(midpoint, steepness float64) Transform {
	return func(x float64) float64 {
		return 1 / (1 + math.Exp(-steepness*(x-midpoint)))
	}
}

// Linear rescales over a known range and clips at the edges
func Linear(min, max float64) Transform {
	return func(x float64) float64 {
		if max <= min {
			return 0
		}
		t := (x - min) / (max - min)
		if t < 0 {
			return 0
		}
		if t > 1 {
			return 1
		}
		return t
	}
}

// Complement flips a transform so that large raw values map near zero. Used
// for metrics where growth means worse quality, e.g. cyclomatic complexity.
func Complement(t Transform) Transform {
	return func(x float64) float64 { return 1 - t(x) }
}
