// Package analysis summarizes rendered stereo audio: per-channel peak and
// RMS levels and the dominant frequency of the mid signal.
package analysis

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-grain/dsp/core"
	"github.com/cwbudde/algo-grain/dsp/window"
)

const (
	defaultFFTSize   = 8192
	defaultLowerFreq = 20.0
)

// ErrEmpty is returned when there is nothing to analyze.
var ErrEmpty = errors.New("analysis: no frames")

// Config holds analysis parameters.
type Config struct {
	SampleRate float64
	// FFTSize is the spectrum length, a power of two. Zero picks the
	// largest power of two up to 8192 that fits the input.
	FFTSize int
	// LowerFreq excludes bins below it from the dominant frequency search.
	LowerFreq float64
}

// Result holds the analysis summary.
type Result struct {
	Frames  int
	Seconds float64

	PeakL float64
	PeakR float64
	RMSL  float64
	RMSR  float64

	// PeakDB and RMSDB are the louder channel's levels in dBFS.
	PeakDB float64
	RMSDB  float64

	// DominantFreq is the center frequency of the strongest bin of the
	// windowed mid signal, and DominantPower its share of total power.
	DominantFreq  float64
	DominantPower float64
}

// Analyze computes levels over all frames and the spectrum over the first
// FFTSize frames.
func Analyze(frames []core.StereoFrame, cfg Config) (Result, error) {
	if len(frames) == 0 {
		return Result{}, ErrEmpty
	}

	if cfg.SampleRate <= 0 || math.IsNaN(cfg.SampleRate) {
		return Result{}, fmt.Errorf("analysis sample rate must be > 0: %f", cfg.SampleRate)
	}

	left := make([]float64, len(frames))
	right := make([]float64, len(frames))
	core.Split(left, right, frames)

	res := Result{
		Frames:  len(frames),
		Seconds: float64(len(frames)) / cfg.SampleRate,
		PeakL:   peak(left),
		PeakR:   peak(right),
		RMSL:    rms(left),
		RMSR:    rms(right),
	}
	res.PeakDB = core.LinearToDB(math.Max(res.PeakL, res.PeakR))
	res.RMSDB = core.LinearToDB(math.Max(res.RMSL, res.RMSR))

	fftSize := cfg.FFTSize
	if fftSize <= 0 {
		fftSize = defaultFFTSize
		for fftSize > len(frames) && fftSize > 2 {
			fftSize /= 2
		}
	}

	if fftSize&(fftSize-1) != 0 || fftSize < 2 {
		return Result{}, fmt.Errorf("analysis FFT size must be a power of two >= 2: %d", fftSize)
	}

	lower := cfg.LowerFreq
	if lower <= 0 {
		lower = defaultLowerFreq
	}

	freq, share, err := dominant(left, right, fftSize, cfg.SampleRate, lower)
	if err != nil {
		return Result{}, err
	}
	res.DominantFreq = freq
	res.DominantPower = share

	return res, nil
}

func dominant(left, right []float64, fftSize int, sampleRate, lowerFreq float64) (float64, float64, error) {
	n := min(fftSize, len(left))

	mid := make([]float64, fftSize)
	for i := 0; i < n; i++ {
		mid[i] = 0.5 * (left[i] + right[i])
	}
	vecmath.MulBlockInPlace(mid[:n], window.Generate(window.ShapeRaisedCosine, n, 0))

	in := make([]complex128, fftSize)
	for i, v := range mid {
		in[i] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return 0, 0, fmt.Errorf("analysis: %w", err)
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return 0, 0, fmt.Errorf("analysis: %w", err)
	}

	bins := fftSize/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for i := range re {
		re[i] = real(out[i])
		im[i] = imag(out[i])
	}

	power := make([]float64, bins)
	vecmath.Power(power, re, im)

	binHz := sampleRate / float64(fftSize)
	lowerBin := core.ClampInt(int(math.Ceil(lowerFreq/binHz)), 1, bins-1)

	best, total := lowerBin, 0.0
	for i := lowerBin; i < bins; i++ {
		total += power[i]
		if power[i] > power[best] {
			best = i
		}
	}

	if total == 0 {
		return 0, 0, nil
	}

	return float64(best) * binHz, power[best] / total, nil
}

func peak(x []float64) float64 {
	p := 0.0
	for _, v := range x {
		p = math.Max(p, math.Abs(v))
	}
	return p
}

func rms(x []float64) float64 {
	sq := make([]float64, len(x))
	vecmath.MulBlock(sq, x, x)

	sum := 0.0
	for _, v := range sq {
		sum += v
	}
	return math.Sqrt(sum / float64(len(x)))
}
