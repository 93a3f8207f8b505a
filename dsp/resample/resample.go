package resample

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrInvalidRatio indicates an invalid up/down ratio.
	ErrInvalidRatio = errors.New("resample: invalid ratio")
	// ErrInvalidRate indicates an invalid input or output sample rate.
	ErrInvalidRate = errors.New("resample: invalid sample rate")
)

// Quality selects the anti-aliasing filter profile.
type Quality int

const (
	QualityFast Quality = iota
	QualityBalanced
	QualityBest
)

// String returns the lower-case mode name.
func (q Quality) String() string {
	switch q {
	case QualityFast:
		return "fast"
	case QualityBalanced:
		return "balanced"
	case QualityBest:
		return "best"
	default:
		return fmt.Sprintf("Quality(%d)", int(q))
	}
}

// ParseQuality maps a mode name to a Quality.
func ParseQuality(s string) (Quality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fast":
		return QualityFast, nil
	case "", "balanced":
		return QualityBalanced, nil
	case "best":
		return QualityBest, nil
	default:
		return QualityBalanced, fmt.Errorf("resample: unknown quality %q", s)
	}
}

type profile struct {
	tapsPerPhase int
	cutoffScale  float64
	kaiserBeta   float64
}

func qualityProfile(q Quality) profile {
	switch q {
	case QualityFast:
		return profile{tapsPerPhase: 16, cutoffScale: 0.88, kaiserBeta: 5.0}
	case QualityBest:
		return profile{tapsPerPhase: 64, cutoffScale: 0.96, kaiserBeta: 9.0}
	default:
		return profile{tapsPerPhase: 32, cutoffScale: 0.92, kaiserBeta: 7.5}
	}
}

type config struct {
	quality      Quality
	tapsPerPhase int
	maxDen       int
}

// Option configures a Resampler.
type Option func(*config)

// WithQuality selects a predefined filter profile.
func WithQuality(q Quality) Option {
	return func(cfg *config) {
		cfg.quality = q
	}
}

// WithTapsPerPhase overrides the filter length per polyphase branch.
func WithTapsPerPhase(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.tapsPerPhase = n
		}
	}
}

// WithMaxDenominator caps the denominator used to approximate a rate ratio.
func WithMaxDenominator(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.maxDen = n
		}
	}
}

func applyOptions(opts []Option) config {
	cfg := config{quality: QualityBalanced, maxDen: 4096}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.tapsPerPhase <= 0 {
		cfg.tapsPerPhase = qualityProfile(cfg.quality).tapsPerPhase
	}
	return cfg
}

// Resampler performs streaming rational sample-rate conversion. It is not
// safe for concurrent use.
type Resampler struct {
	up      int
	down    int
	quality Quality

	phases   [][]float64
	maxPhase int
	taps     int

	phase   int
	next    int // absolute index of the input sample feeding the next output
	totalIn int
	history []float64
	work    []float64
}

// NewRational creates a resampler producing up output samples for every
// down input samples.
func NewRational(up, down int, opts ...Option) (*Resampler, error) {
	if up <= 0 || down <= 0 {
		return nil, ErrInvalidRatio
	}

	g := gcd(up, down)
	up /= g
	down /= g

	cfg := applyOptions(opts)
	phases, err := designPolyphase(up, down, cfg.tapsPerPhase, qualityProfile(cfg.quality))
	if err != nil {
		return nil, err
	}

	maxPhase := 0
	for _, p := range phases {
		maxPhase = max(maxPhase, len(p))
	}

	return &Resampler{
		up:       up,
		down:     down,
		quality:  cfg.quality,
		phases:   phases,
		maxPhase: maxPhase,
		taps:     cfg.tapsPerPhase * up,
		history:  make([]float64, 0, max(0, maxPhase-1)),
	}, nil
}

// NewForRates creates a resampler by approximating outRate/inRate as a
// ratio of small integers.
func NewForRates(inRate, outRate float64, opts ...Option) (*Resampler, error) {
	if !(inRate > 0) || !(outRate > 0) || math.IsInf(inRate, 0) || math.IsInf(outRate, 0) {
		return nil, ErrInvalidRate
	}

	up, down := approximateRatio(outRate/inRate, applyOptions(opts).maxDen)

	return NewRational(up, down, opts...)
}

// Ratio returns the reduced up/down factors.
func (r *Resampler) Ratio() (up, down int) {
	return r.up, r.down
}

// Quality returns the configured filter profile.
func (r *Resampler) Quality() Quality {
	return r.quality
}

// Reset clears the filter history.
func (r *Resampler) Reset() {
	r.phase = 0
	r.next = 0
	r.totalIn = 0
	r.history = r.history[:0]
}

// OutputLen returns how many samples the next Process call yields for
// inputLen new input samples.
func (r *Resampler) OutputLen(inputLen int) int {
	if inputLen <= 0 {
		return 0
	}

	last := r.totalIn + inputLen - 1
	i, phase := r.next, r.phase
	n := 0
	for i <= last {
		n++
		phase += r.down
		i += phase / r.up
		phase %= r.up
	}

	return n
}

// Process converts a block and keeps enough history that consecutive
// calls produce the same output as one call over the concatenated input.
func (r *Resampler) Process(input []float64) []float64 {
	if len(input) == 0 {
		return nil
	}

	out := make([]float64, 0, r.OutputLen(len(input)))

	r.work = append(append(r.work[:0], r.history...), input...)
	base := r.totalIn - len(r.history)
	last := r.totalIn + len(input) - 1

	for r.next <= last {
		var y float64
		for k, c := range r.phases[r.phase] {
			idx := r.next - k
			if idx < base {
				break
			}
			y += c * r.work[idx-base]
		}
		out = append(out, y)

		r.phase += r.down
		r.next += r.phase / r.up
		r.phase %= r.up
	}

	r.totalIn += len(input)

	keep := min(max(0, r.maxPhase-1), len(r.work))
	r.history = append(r.history[:0], r.work[len(r.work)-keep:]...)

	return out
}

// Resample converts input by up/down in one shot.
func Resample(input []float64, up, down int, opts ...Option) ([]float64, error) {
	r, err := NewRational(up, down, opts...)
	if err != nil {
		return nil, err
	}

	return r.Process(input), nil
}
