package dither

// Error-feedback coefficient sets. Each pushes quantization noise towards
// high frequencies; higher orders push harder.
var (
	ShapeFirstOrder  = []float64{1}
	ShapeSecondOrder = []float64{2, -1}
)

// shaper subtracts weighted past quantization errors from the input. The
// per-sample cycle is shape, quantize, record.
type shaper struct {
	coeffs  []float64
	history []float64
	pos     int
}

func newShaper(coeffs []float64) shaper {
	c := append([]float64(nil), coeffs...)
	return shaper{coeffs: c, history: make([]float64, len(c))}
}

func (s *shaper) shape(input float64) float64 {
	order := len(s.coeffs)
	if order == 0 {
		return input
	}
	for i := 0; i < order; i++ {
		idx := (order + s.pos - i) % order
		input -= s.coeffs[i] * s.history[idx]
	}
	s.pos = (s.pos + 1) % order
	return input
}

func (s *shaper) record(quantizationError float64) {
	if len(s.coeffs) == 0 {
		return
	}
	s.history[s.pos] = quantizationError
}

func (s *shaper) reset() {
	clear(s.history)
	s.pos = 0
}
