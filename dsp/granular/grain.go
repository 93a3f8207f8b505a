package granular

import (
	"github.com/cwbudde/algo-grain/dsp/core"
	"github.com/cwbudde/algo-grain/dsp/window"
)

// DefaultStride is the number of source frames a grain's cursor advances
// per output frame. A stride of 2 plays the source an octave up and halves
// each grain's lifetime.
const DefaultStride = 2

// Grain is a windowed, panned playback cursor over a shared sample buffer.
type Grain struct {
	t          int
	length     int
	start      int
	stride     int
	pan        float32
	shape      window.Shape
	breakpoint float64
	finished   bool
}

// NewGrain returns a raised-cosine grain of length source frames starting
// at start, panned by pan in [-1, 1], advancing by DefaultStride.
func NewGrain(length, start int, pan float32) Grain {
	if pan != pan {
		pan = 0
	}
	return Grain{
		length:     length,
		start:      start,
		stride:     DefaultStride,
		pan:        core.Clamp32(pan, -1, 1),
		shape:      window.ShapeRaisedCosine,
		breakpoint: defaultBreakpoint,
	}
}

// SetStride sets the cursor step; values below 1 are treated as 1.
func (g *Grain) SetStride(stride int) {
	if stride < 1 {
		stride = 1
	}
	g.stride = stride
}

// SetEnvelope selects the amplitude shape and its breakpoint.
func (g *Grain) SetEnvelope(shape window.Shape, breakpoint float64) {
	g.shape = shape
	g.breakpoint = breakpoint
}

// Finished reports whether the cursor has passed the grain length.
func (g *Grain) Finished() bool { return g.finished }

// Cursor returns the current position within the grain.
func (g *Grain) Cursor() int { return g.t }

// Length returns the grain length in source frames.
func (g *Grain) Length() int { return g.length }

// Start returns the offset into the sample buffer.
func (g *Grain) Start() int { return g.start }

// Pan returns the stereo position in [-1, 1].
func (g *Grain) Pan() float32 { return g.pan }

// Read returns the grain's contribution for this frame and advances the
// cursor. The read position wraps around buf, so any start offset is safe.
// A finished grain returns silence and no longer advances.
func (g *Grain) Read(buf []core.StereoFrame) core.StereoFrame {
	if g.finished {
		return core.StereoFrame{}
	}

	var out core.StereoFrame
	if n := len(buf); n > 0 {
		frame := buf[core.Wrap(g.start+g.t, n)]
		w := float32(window.Eval(g.shape, g.length, g.t, g.breakpoint))
		out = core.StereoFrame{
			L: (1 - g.pan) * 0.5 * frame.L * w,
			R: (1 + g.pan) * 0.5 * frame.R * w,
		}
	}

	g.t += g.stride
	if g.t >= g.length {
		g.finished = true
	}

	return out
}
