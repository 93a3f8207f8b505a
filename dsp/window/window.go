// Package window provides the amplitude shapes applied over a grain's
// lifetime and the analysis window used by the measure packages.
package window

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Shape identifies a grain envelope.
type Shape int

const (
	// ShapeRaisedCosine is the Hann-style window 0.5 - 0.5*cos(2*pi*t/n).
	ShapeRaisedCosine Shape = iota
	// ShapeLinear is a piecewise-linear attack/decay with a breakpoint.
	ShapeLinear
	// ShapeExponential is an exponential attack/decay with a breakpoint.
	ShapeExponential
)

// DefaultCurve is the rate coefficient used for both segments of the
// exponential envelope.
const DefaultCurve = -5.0

// minCurve is the magnitude below which the exponential envelope
// degenerates and the linear one is used instead.
const minCurve = 0.01

var shapeNames = [...]string{"raised-cosine", "linear", "exponential"}

// String returns the shape name.
func (s Shape) String() string {
	if s < 0 || int(s) >= len(shapeNames) {
		return fmt.Sprintf("Shape(%d)", int(s))
	}
	return shapeNames[s]
}

// Valid reports whether s is a known shape.
func (s Shape) Valid() bool {
	return s >= ShapeRaisedCosine && s <= ShapeExponential
}

// ParseShape returns the shape with the given name.
func ParseShape(name string) (Shape, error) {
	for i, n := range shapeNames {
		if n == name {
			return Shape(i), nil
		}
	}
	return 0, fmt.Errorf("unknown envelope shape: %q", name)
}

// RaisedCosine returns 0.5 - 0.5*cos(2*pi*t/n). It is 0 at t=0 and t=n and
// 1 at t=n/2. Non-positive n yields 0.
func RaisedCosine(n, t int) float64 {
	if n <= 0 {
		return 0
	}
	return 0.5 - 0.5*math.Cos(2*math.Pi*float64(t)/float64(n))
}

// AD is a linear attack/decay over normalized time t in [0, 1] peaking at
// the breakpoint m.
func AD(t, m float64) float64 {
	t = clampUnit(t)
	switch {
	case m <= 0:
		return 1 - t
	case m >= 1:
		return t
	case t <= m:
		return t / m
	default:
		return (t - 1) / (m - 1)
	}
}

// Exponential is an exponential attack/decay over normalized time t in
// [0, 1] peaking at the breakpoint m with rate coefficients c1 (attack) and
// c2 (decay). Both segments evaluate to 1 at t = m. If either coefficient
// is within 0.01 of zero the curve falls back to AD.
func Exponential(t, m, c1, c2 float64) float64 {
	if math.Abs(c1) <= minCurve || math.Abs(c2) <= minCurve || m <= 0 || m >= 1 {
		return AD(t, m)
	}

	t = clampUnit(t)
	if t <= m {
		return (math.Exp(-c1*t) - 1) / (math.Exp(-c1*m) - 1)
	}
	return (math.Exp(c2*(t-1)) - 1) / (math.Exp(c2*(m-1)) - 1)
}

// Envelope evaluates the exponential envelope with DefaultCurve at step t
// of n.
func Envelope(n, t int, m float64) float64 {
	if n <= 0 {
		return 0
	}
	return Exponential(float64(t)/float64(n), m, DefaultCurve, DefaultCurve)
}

// Eval evaluates shape at step t of a grain n steps long. m is the
// breakpoint used by the attack/decay shapes.
func Eval(shape Shape, n, t int, m float64) float64 {
	switch shape {
	case ShapeLinear:
		if n <= 0 {
			return 0
		}
		return AD(float64(t)/float64(n), m)
	case ShapeExponential:
		return Envelope(n, t, m)
	default:
		return RaisedCosine(n, t)
	}
}

// Generate returns n coefficients of shape. The raised cosine is generated
// in periodic form, suitable for FFT framing.
func Generate(shape Shape, n int, m float64) []float64 {
	if n <= 0 {
		return nil
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = Eval(shape, n, i, m)
	}

	return out
}

// Apply multiplies buf in place by the selected shape.
func Apply(shape Shape, buf []float64, m float64) {
	if len(buf) == 0 {
		return
	}

	coeffs := Generate(shape, len(buf), m)
	vecmath.MulBlockInPlace(buf, coeffs)
}

// CoherentGain returns sum(w[n]) / N, the DC response of the window.
func CoherentGain(coeffs []float64) float64 {
	if len(coeffs) == 0 {
		return 0
	}

	sum := 0.0
	for _, c := range coeffs {
		sum += c
	}

	return sum / float64(len(coeffs))
}

func clampUnit(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
