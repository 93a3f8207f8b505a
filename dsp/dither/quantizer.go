package dither

import (
	"math"
	"math/rand/v2"
)

// Quantizer converts samples in [-1, 1] to signed integers of a fixed bit
// depth. It keeps noise-shaping state, so use one per channel.
type Quantizer struct {
	bitDepth        int
	ditherType      DitherType
	ditherAmplitude float64
	shaper          shaper
	rng             *rand.Rand

	bitMul  float64
	limitLo int
	limitHi int
}

// NewQuantizer creates a Quantizer. The default configuration is 16-bit,
// triangular dither of 1 LSB, no noise shaping.
func NewQuantizer(opts ...Option) (*Quantizer, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	q := &Quantizer{
		bitDepth:        cfg.bitDepth,
		ditherType:      cfg.ditherType,
		ditherAmplitude: cfg.ditherAmplitude,
		shaper:          newShaper(cfg.shaper),
	}

	if cfg.seeded {
		q.rng = rand.New(rand.NewPCG(cfg.seed, cfg.seed^0x9e3779b97f4a7c15))
	} else {
		q.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	q.bitMul = math.Exp2(float64(q.bitDepth-1)) - 0.5
	q.limitLo = -int(math.Round(q.bitMul + 0.5))
	q.limitHi = int(math.Round(q.bitMul - 0.5))

	return q, nil
}

// BitDepth returns the target bit depth.
func (q *Quantizer) BitDepth() int { return q.bitDepth }

// DitherType returns the dither noise type.
func (q *Quantizer) DitherType() DitherType { return q.ditherType }

// ProcessInteger quantizes input to an integer in the bit-depth range.
// Out-of-range input is limited.
func (q *Quantizer) ProcessInteger(input float64) int {
	if math.IsNaN(input) {
		input = 0
	}

	shaped := q.shaper.shape(q.bitMul * input)
	result := max(q.limitLo, min(q.limitHi, q.quantize(shaped)))
	q.shaper.record(float64(result) - shaped)

	return result
}

// Reset clears the noise-shaping history.
func (q *Quantizer) Reset() {
	q.shaper.reset()
}

func (q *Quantizer) quantize(input float64) int {
	switch q.ditherType {
	case DitherRectangular:
		input += q.ditherAmplitude * (q.rng.Float64()*2 - 1)
	case DitherTriangular:
		input += q.ditherAmplitude * (q.rng.Float64() - q.rng.Float64())
	}
	return int(math.Floor(input))
}
