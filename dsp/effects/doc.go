// Package effects provides the processors that sit behind the granular
// engine.
//
//   - Saturater: Tape, Tube and Transistor waveshaping with unity small-signal gain.
//   - StereoDelay: Two independent fractional delay lines with saturated feedback.
//
// All effects are designed for real-time processing with zero-allocation
// hot paths and support both single-frame and buffer-based processing.
package effects
