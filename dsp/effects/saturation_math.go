//go:build !fastmath

package effects

import "math"

// satTanh computes tanh(x) using standard library math.
func satTanh(x float64) float64 {
	return math.Tanh(x)
}

// satExp computes e^x using standard library math.
func satExp(x float64) float64 {
	return math.Exp(x)
}
