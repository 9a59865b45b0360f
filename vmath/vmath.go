// Package vmath provides float64 scalar and 2D vector helpers for the
// simulation core. The client does not need bit-exact determinism, so plain
// floating point is used throughout.
package vmath

import "math"

// Abs returns the absolute value of x
func Abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// Sign returns -1, 0, or 1 depending on the sign of x
func Sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// Clamp limits v to the inclusive range [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp linearly interpolates from a to b by t in [0,1]
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// SmoothFactor returns the frame-rate-independent blend factor
// 1 - e^(-rate*dt). Applying pos += (target-pos)*SmoothFactor(rate, dt)
// converges without overshoot for any dt and any positive rate.
func SmoothFactor(rate, dt float64) float64 {
	if rate <= 0 || dt <= 0 {
		return 0
	}
	return 1 - math.Exp(-rate*dt)
}

// MoveToward advances cur toward target by at most maxDelta, without
// overshooting
func MoveToward(cur, target, maxDelta float64) float64 {
	d := target - cur
	if Abs(d) <= maxDelta {
		return target
	}
	return cur + Sign(d)*maxDelta
}

// IsFinite reports whether v is neither NaN nor infinite
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
