package effects

import (
	"fmt"
	"math"
)

const (
	// GainFactor stages the input into the useful range of the transfer
	// curves; the output is divided back by it.
	GainFactor = 2.5

	defaultSaturationDrive = 1.0
	minSaturationDrive     = 0.0
	maxSaturationDrive     = 20.0

	tapeBaseWeight   = 0.9
	tapeLevelWeight  = 0.35
	tapeHysteresis   = 0.2
	feedbackSafety   = 0.99
	defaultSatMode   = SaturationTape
	saturationModeNo = 3
)

// SaturationMode selects the transfer curve used by Saturater.
type SaturationMode int

const (
	// SaturationTape is tanh shaping with a level-dependent weight and a
	// one-sample hysteresis term.
	SaturationTape SaturationMode = iota
	// SaturationTube is plain tanh shaping.
	SaturationTube
	// SaturationTransistor is an exponential soft clip.
	SaturationTransistor
)

var saturationModeNames = [saturationModeNo]string{"tape", "tube", "transistor"}

// String returns the mode name.
func (m SaturationMode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("SaturationMode(%d)", int(m))
	}
	return saturationModeNames[m]
}

// Valid reports whether m is a known mode.
func (m SaturationMode) Valid() bool {
	return m >= SaturationTape && m <= SaturationTransistor
}

// Next returns the following mode, wrapping after Transistor.
func (m SaturationMode) Next() SaturationMode {
	return SaturationMode((int(m) + 1) % saturationModeNo)
}

// ParseSaturationMode returns the mode with the given name.
func ParseSaturationMode(name string) (SaturationMode, error) {
	for i, n := range saturationModeNames {
		if n == name {
			return SaturationMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown saturation mode: %q", name)
}

// Saturater is a per-channel nonlinear waveshaper.
//
// Only Tape mode carries state: the previous output sample. Switching to a
// different mode clears it, so re-entering Tape starts from silence.
//
// This processor is real-time safe and not thread-safe.
type Saturater struct {
	drive float64
	prev  float64
	mode  SaturationMode
}

// NewSaturater creates a saturater with drive in [0, 20].
func NewSaturater(drive float64, mode SaturationMode) (*Saturater, error) {
	s := &Saturater{mode: defaultSatMode, drive: defaultSaturationDrive}
	if err := s.SetDrive(drive); err != nil {
		return nil, err
	}
	if err := s.SetMode(mode); err != nil {
		return nil, err
	}
	return s, nil
}

// Drive returns the drive amount.
func (s *Saturater) Drive() float64 { return s.drive }

// Mode returns the current transfer curve.
func (s *Saturater) Mode() SaturationMode { return s.mode }

// SetDrive sets the drive amount in [0, 20].
func (s *Saturater) SetDrive(drive float64) error {
	if drive < minSaturationDrive || drive > maxSaturationDrive || math.IsNaN(drive) || math.IsInf(drive, 0) {
		return fmt.Errorf("saturation drive must be in [%g, %g]: %f", minSaturationDrive, maxSaturationDrive, drive)
	}
	s.drive = drive
	return nil
}

// SetMode switches the transfer curve. Changing to a different mode clears
// the Tape hysteresis memory.
func (s *Saturater) SetMode(mode SaturationMode) error {
	if !mode.Valid() {
		return fmt.Errorf("saturation mode is invalid: %d", mode)
	}
	if mode != s.mode {
		s.prev = 0
	}
	s.mode = mode
	return nil
}

// Reset clears the hysteresis memory.
func (s *Saturater) Reset() {
	s.prev = 0
}

// Process shapes one sample.
func (s *Saturater) Process(sample float32) float32 {
	gained := float64(sample) * GainFactor

	var shaped float64
	switch s.mode {
	case SaturationTube:
		shaped = satTanh(gained * s.drive)
	case SaturationTransistor:
		shaped = sign(gained) * (1 - satExp(-math.Abs(gained)*s.drive))
	default:
		base := satTanh(gained * s.drive)
		weight := tapeBaseWeight + tapeLevelWeight*math.Abs(gained)
		hysteresis := tapeHysteresis * (gained - s.prev)
		s.prev = base*weight + hysteresis
		shaped = s.prev
	}

	return float32(shaped / GainFactor)
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
