package resample

import (
	"math"

	"github.com/cwbudde/algo-grain/dsp/core"
)

// Delay returns the filter's group delay in output samples.
func (r *Resampler) Delay() int {
	return int(math.Round(float64(r.taps-1) / (2 * float64(r.down))))
}

// Frames converts a stereo buffer from inRate to outRate. The result is
// time-aligned with the input and holds round(len*outRate/inRate) frames.
// Equal rates return frames unchanged.
func Frames(frames []core.StereoFrame, inRate, outRate int, opts ...Option) ([]core.StereoFrame, error) {
	if inRate <= 0 || outRate <= 0 {
		return nil, ErrInvalidRate
	}
	if inRate == outRate || len(frames) == 0 {
		return frames, nil
	}

	left, err := NewForRates(float64(inRate), float64(outRate), opts...)
	if err != nil {
		return nil, err
	}
	right, err := NewForRates(float64(inRate), float64(outRate), opts...)
	if err != nil {
		return nil, err
	}

	up, down := left.Ratio()
	pad := left.taps/(2*up) + 1

	l := make([]float64, len(frames)+pad)
	r := make([]float64, len(frames)+pad)
	core.Split(l, r, frames)

	outL := left.Process(l)
	outR := right.Process(r)

	delay := left.Delay()
	want := int(math.Round(float64(len(frames)) * float64(up) / float64(down)))
	want = min(want, len(outL)-delay)

	out := make([]core.StereoFrame, max(0, want))
	for i := range out {
		out[i] = core.StereoFrame{
			L: float32(outL[delay+i]),
			R: float32(outR[delay+i]),
		}
	}

	return out, nil
}
