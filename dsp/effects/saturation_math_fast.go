//go:build fastmath

package effects

import (
	"github.com/meko-christian/algo-approx"
)

// satTanhLimit bounds the argument of the tanh approximation; beyond it the
// result is 1 to float32 precision.
const satTanhLimit = 20.0

// satTanh computes tanh(x) from a fast exponential.
// Uses the identity: tanh(x) = 1 - 2/(e^(2x) + 1)
func satTanh(x float64) float64 {
	if x > satTanhLimit {
		return 1
	}
	if x < -satTanhLimit {
		return -1
	}
	return 1 - 2/(approx.FastExp(2*x)+1)
}

// satExp computes e^x using fast approximation.
func satExp(x float64) float64 {
	if x < -2*satTanhLimit {
		return 0
	}
	return approx.FastExp(x)
}
