package vmath

import "math"

// Magnitude returns the length of the vector (x, y)
func Magnitude(x, y float64) float64 {
	return math.Hypot(x, y)
}

// MagnitudeSq returns squared magnitude without the sqrt
func MagnitudeSq(x, y float64) float64 {
	return x*x + y*y
}

// Distance returns the Euclidean distance between two points
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

// Normalize2D returns the unit vector of (x, y), zero-safe
func Normalize2D(x, y float64) (nx, ny float64) {
	mag := Magnitude(x, y)
	if mag == 0 {
		return 0, 0
	}
	return x / mag, y / mag
}

// ClampMagnitude limits vector to maxMag while preserving direction.
// Returns the vector unchanged if magnitude <= maxMag
func ClampMagnitude(x, y, maxMag float64) (cx, cy float64) {
	mag := Magnitude(x, y)
	if mag <= maxMag || mag == 0 {
		return x, y
	}
	scale := maxMag / mag
	return x * scale, y * scale
}

// DotProduct returns x1*x2 + y1*y2
func DotProduct(x1, y1, x2, y2 float64) float64 {
	return x1*x2 + y1*y2
}

// AngleOf returns the heading of the vector (x, y) in radians
func AngleOf(x, y float64) float64 {
	return math.Atan2(y, x)
}

// Heading returns the unit vector pointing along an angle in radians
func Heading(a float64) (x, y float64) {
	return math.Cos(a), math.Sin(a)
}

// WrapAngle normalizes an angle to (-pi, pi]
func WrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
