package granular

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-grain/dsp/core"
	"github.com/cwbudde/algo-grain/dsp/window"
)

const (
	// MinGrainLength is the shortest accepted grain, in source frames.
	MinGrainLength = 16
	// MaxGrainLength is ten seconds of source at 48 kHz.
	MaxGrainLength = 480000
	// MaxGrainSpread bounds the random start offset, in source frames.
	MaxGrainSpread = MaxGrainLength

	// MinDensity and MaxDensity bound the timer spawn rate in Hz.
	MinDensity = 0.1
	MaxDensity = 48.0

	maxGain = 2.0

	defaultGrainLength = 44000
	defaultGain        = 0.7
	defaultDensity     = 1.0
	defaultBreakpoint  = 0.5
)

// ScanMode is an optional scan toggle carried by Params.
type ScanMode int

const (
	// ScanKeep leaves the current scan state unchanged.
	ScanKeep ScanMode = iota
	// ScanOn advances Start by one frame per output frame while gated.
	ScanOn
	// ScanOff freezes Start.
	ScanOff
)

func (s ScanMode) String() string {
	switch s {
	case ScanKeep:
		return "keep"
	case ScanOn:
		return "on"
	case ScanOff:
		return "off"
	default:
		return fmt.Sprintf("ScanMode(%d)", int(s))
	}
}

// Params is the grain parameter set published to the engine.
type Params struct {
	// GrainLength is the grain duration in source frames.
	GrainLength int
	// GrainSpread is the maximum random offset added to Start, in frames.
	GrainSpread int
	// PanSpread is the maximum random pan magnitude in [0, 1].
	PanSpread float32
	// Gain is the overall output gain in [0, 2].
	Gain float32
	// Start is the base read offset into the sample buffer.
	Start int
	// Density is the timer spawn rate in Hz. In sequencer mode it is the
	// sequencer trigger rate.
	Density float64
	// Scan optionally switches start scanning on or off.
	Scan ScanMode
	// Source names a file to load. Empty or unchanged keeps the current
	// buffer.
	Source string
	// Envelope is the grain amplitude shape.
	Envelope window.Shape
	// Breakpoint is the attack/decay split for AD envelopes, in (0, 1).
	Breakpoint float64
}

// DefaultParams returns the engine's startup parameters.
func DefaultParams() Params {
	return Params{
		GrainLength: defaultGrainLength,
		Gain:        defaultGain,
		Density:     defaultDensity,
		Envelope:    window.ShapeRaisedCosine,
		Breakpoint:  defaultBreakpoint,
	}
}

// Validate reports the first out-of-range field.
func (p Params) Validate() error {
	if p.GrainLength < MinGrainLength || p.GrainLength > MaxGrainLength {
		return fmt.Errorf("grain length must be in [%d, %d]: %d", MinGrainLength, MaxGrainLength, p.GrainLength)
	}

	if p.GrainSpread < 0 || p.GrainSpread > MaxGrainSpread {
		return fmt.Errorf("grain spread must be in [0, %d]: %d", MaxGrainSpread, p.GrainSpread)
	}

	if !(p.PanSpread >= 0 && p.PanSpread <= 1) {
		return fmt.Errorf("pan spread must be in [0, 1]: %f", p.PanSpread)
	}

	if !(p.Gain >= 0 && p.Gain <= maxGain) {
		return fmt.Errorf("gain must be in [0, %g]: %f", maxGain, p.Gain)
	}

	if p.Start < 0 {
		return fmt.Errorf("start must be >= 0: %d", p.Start)
	}

	if !(p.Density >= MinDensity && p.Density <= MaxDensity) {
		return fmt.Errorf("density must be in [%g, %g]: %f", MinDensity, MaxDensity, p.Density)
	}

	if p.Scan < ScanKeep || p.Scan > ScanOff {
		return fmt.Errorf("invalid scan mode: %d", p.Scan)
	}

	if !p.Envelope.Valid() {
		return fmt.Errorf("invalid envelope shape: %d", p.Envelope)
	}

	if !(p.Breakpoint > 0 && p.Breakpoint < 1) {
		return fmt.Errorf("envelope breakpoint must be in (0, 1): %f", p.Breakpoint)
	}

	return nil
}

// normalized clamps every field into range. NaN values fall back to the
// defaults. It never fails, so the audio path can accept any message.
func (p Params) normalized() Params {
	def := DefaultParams()

	p.GrainLength = core.ClampInt(p.GrainLength, MinGrainLength, MaxGrainLength)
	p.GrainSpread = core.ClampInt(p.GrainSpread, 0, MaxGrainSpread)
	if p.Start < 0 {
		p.Start = 0
	}

	p.PanSpread = clamp32Or(p.PanSpread, 0, 1, def.PanSpread)
	p.Gain = clamp32Or(p.Gain, 0, maxGain, def.Gain)

	if math.IsNaN(p.Density) {
		p.Density = def.Density
	}
	p.Density = core.Clamp(p.Density, MinDensity, MaxDensity)

	if p.Scan < ScanKeep || p.Scan > ScanOff {
		p.Scan = ScanKeep
	}
	if !p.Envelope.Valid() {
		p.Envelope = def.Envelope
	}
	if !(p.Breakpoint > 0 && p.Breakpoint < 1) {
		p.Breakpoint = def.Breakpoint
	}

	return p
}

func clamp32Or(v, lo, hi, fallback float32) float32 {
	if v != v {
		return fallback
	}
	return core.Clamp32(v, lo, hi)
}
