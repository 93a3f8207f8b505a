// Package interp provides the interpolation primitives used by the
// fractional delay line.
//
//   - [Linear]:   2-point linear interpolation on float64
//   - [Linear32]: the same on float32 samples
//   - [Split]:    splits a fractional position into integer index and fraction
package interp
