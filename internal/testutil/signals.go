package testutil

import (
	"math"
	"math/rand"

	"github.com/cwbudde/algo-grain/dsp/core"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// MonoFrames copies a mono signal onto both channels of a frame buffer.
func MonoFrames(signal []float64) []core.StereoFrame {
	out := make([]core.StereoFrame, len(signal))
	for i, v := range signal {
		out[i] = core.Mono(float32(v))
	}
	return out
}

// ConstantFrames returns n frames carrying l and r.
func ConstantFrames(n int, l, r float32) []core.StereoFrame {
	out := make([]core.StereoFrame, n)
	for i := range out {
		out[i] = core.StereoFrame{L: l, R: r}
	}
	return out
}

// RampFrames returns n frames whose left channel is i/n and right channel
// is -i/n, so every position in the buffer is distinguishable.
func RampFrames(n int) []core.StereoFrame {
	out := make([]core.StereoFrame, n)
	for i := range out {
		v := float32(i) / float32(n)
		out[i] = core.StereoFrame{L: v, R: -v}
	}
	return out
}
