// Package delay provides a single-channel circular delay line with a
// fractional, slewed read position.
package delay

import (
	"fmt"

	"github.com/cwbudde/algo-grain/dsp/core"
	"github.com/cwbudde/algo-grain/dsp/interp"
)

// SlewStep is how far, in samples, the current delay time moves towards the
// target on each Advance.
const SlewStep = 0.5

const minTime = 1.0

// Line is a circular delay line read at writePos - currentTime.
//
// The buffer holds at least twice the longest delay it accepts so that the
// read position never overtakes the write position, even while the delay
// time glides. Line is not thread-safe.
type Line struct {
	buffer      []float32
	writePos    int
	currentTime float64
	targetTime  float64
}

// New returns a delay line of size samples with the given delay time in
// samples. Time is clamped to [1, size/2].
func New(time float64, size int) (*Line, error) {
	if size < 2 {
		return nil, fmt.Errorf("delay size must be >= 2: %d", size)
	}
	if !core.Finite(time) {
		return nil, fmt.Errorf("delay time must be finite: %f", time)
	}

	d := &Line{buffer: make([]float32, size)}
	d.SetTime(time)

	return d, nil
}

// Len returns the internal buffer size.
func (d *Line) Len() int {
	return len(d.buffer)
}

// MaxTime returns the longest accepted delay in samples.
func (d *Line) MaxTime() float64 {
	return float64(len(d.buffer) / 2)
}

// Time returns the delay currently used for reads, in samples.
func (d *Line) Time() float64 {
	return d.currentTime
}

// TargetTime returns the delay the line is gliding towards, in samples.
func (d *Line) TargetTime() float64 {
	return d.targetTime
}

// SetTime jumps to time immediately, without gliding.
func (d *Line) SetTime(time float64) {
	t := d.clampTime(time)
	d.currentTime = t
	d.targetTime = t
}

// SetTimeSmooth sets a new target; Advance glides towards it by SlewStep
// samples per call. The glide is heard as a pitch bend on delayed material.
func (d *Line) SetTimeSmooth(time float64) {
	d.targetTime = d.clampTime(time)
}

// Write stores sample at the write position.
func (d *Line) Write(sample float32) {
	d.buffer[d.writePos] = sample
}

// Read returns the sample currentTime samples behind the write position,
// linearly interpolated between the two neighbouring stored samples.
func (d *Line) Read() float32 {
	size := len(d.buffer)
	pos := float64(d.writePos) - d.currentTime

	i0, frac := interp.Split(pos)
	i0 = core.Wrap(i0, size)
	i1 := i0 + 1
	if i1 >= size {
		i1 = 0
	}

	return interp.Linear32(float32(frac), d.buffer[i0], d.buffer[i1])
}

// Advance slews the delay time towards its target and moves the write
// position one sample forward.
func (d *Line) Advance() {
	if d.currentTime != d.targetTime {
		diff := d.targetTime - d.currentTime
		switch {
		case diff > SlewStep:
			d.currentTime += SlewStep
		case diff < -SlewStep:
			d.currentTime -= SlewStep
		default:
			d.currentTime = d.targetTime
		}
	}

	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Reset clears line state. The delay time is kept.
func (d *Line) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writePos = 0
	d.currentTime = d.targetTime
}

func (d *Line) clampTime(time float64) float64 {
	if !core.Finite(time) {
		return d.targetTime
	}

	return core.Clamp(time, minTime, d.MaxTime())
}
