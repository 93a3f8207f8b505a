package interp

import "math"

// Linear interpolates between x0 and x1 at frac in [0, 1].
func Linear(frac, x0, x1 float64) float64 {
	return x0 + frac*(x1-x0)
}

// Linear32 interpolates between x0 and x1 at frac in [0, 1].
func Linear32(frac, x0, x1 float32) float32 {
	return x0 + frac*(x1-x0)
}

// Split returns the integer part of pos (rounded towards -Inf) and the
// remaining fraction in [0, 1).
func Split(pos float64) (int, float64) {
	i := math.Floor(pos)
	return int(i), pos - i
}
