package math3d

import "math"

// Epsilon is the tolerance below which lengths and areas are treated as zero.
const Epsilon = 1e-9

// Clamp limits v to the range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp returns a + (b-a)*t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Remap maps v from [lo, hi] onto [0, 1], clamping the result.
// A degenerate range yields 0.
func Remap(v, lo, hi float64) float64 {
	if hi-lo == 0 {
		return 0
	}
	return Clamp((v-lo)/(hi-lo), 0, 1)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
