package resample

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-grain/internal/testutil"
)

func TestNewRationalRejectsBadRatio(t *testing.T) {
	for _, tc := range []struct{ up, down int }{{0, 1}, {1, 0}, {-2, 3}} {
		if _, err := NewRational(tc.up, tc.down); !errors.Is(err, ErrInvalidRatio) {
			t.Fatalf("NewRational(%d, %d) error = %v, want ErrInvalidRatio", tc.up, tc.down, err)
		}
	}
}

func TestNewForRatesRejectsBadRate(t *testing.T) {
	for _, tc := range [][2]float64{{0, 48000}, {44100, -1}, {math.NaN(), 48000}, {math.Inf(1), 48000}} {
		if _, err := NewForRates(tc[0], tc[1]); !errors.Is(err, ErrInvalidRate) {
			t.Fatalf("NewForRates(%v, %v) error = %v, want ErrInvalidRate", tc[0], tc[1], err)
		}
	}
}

func TestRatioIsReduced(t *testing.T) {
	r, err := NewRational(320, 294)
	if err != nil {
		t.Fatalf("NewRational() error = %v", err)
	}
	if up, down := r.Ratio(); up != 160 || down != 147 {
		t.Fatalf("ratio = %d/%d, want 160/147", up, down)
	}
}

func TestCommonRatesApproximateExactly(t *testing.T) {
	tests := []struct {
		in, out  float64
		up, down int
	}{
		{44100, 48000, 160, 147},
		{48000, 44100, 147, 160},
		{48000, 96000, 2, 1},
		{96000, 32000, 1, 3},
	}
	for _, tc := range tests {
		r, err := NewForRates(tc.in, tc.out)
		if err != nil {
			t.Fatalf("NewForRates(%v, %v) error = %v", tc.in, tc.out, err)
		}
		if up, down := r.Ratio(); up != tc.up || down != tc.down {
			t.Fatalf("%v->%v ratio = %d/%d, want %d/%d", tc.in, tc.out, up, down, tc.up, tc.down)
		}
	}
}

func TestOutputLenMatchesProcess(t *testing.T) {
	r, err := NewRational(3, 2)
	if err != nil {
		t.Fatalf("NewRational() error = %v", err)
	}
	in := testutil.DeterministicSine(1000, 48000, 1, 257)
	want := r.OutputLen(len(in))
	if got := len(r.Process(in)); got != want {
		t.Fatalf("len(out) = %d, want %d", got, want)
	}
}

func TestStreamingMatchesOneShot(t *testing.T) {
	in := testutil.DeterministicSine(1000, 44100, 1, 2000)

	whole, err := NewRational(160, 147)
	if err != nil {
		t.Fatalf("NewRational() error = %v", err)
	}
	want := whole.Process(in)

	chunked, err := NewRational(160, 147)
	if err != nil {
		t.Fatalf("NewRational() error = %v", err)
	}
	var got []float64
	for start := 0; start < len(in); start += 173 {
		got = append(got, chunked.Process(in[start:min(start+173, len(in))])...)
	}

	testutil.RequireSliceNearlyEqual(t, got, want, 1e-12)
}

func TestImpulseResponseHasUnityDCGain(t *testing.T) {
	out, err := Resample(testutil.Impulse(256, 100), 2, 1)
	if err != nil {
		t.Fatalf("Resample() error = %v", err)
	}
	testutil.RequireFinite(t, out)

	var sum float64
	for _, v := range out {
		sum += v
	}
	// Every prototype tap is hit once; the taps sum to up.
	if math.Abs(sum-2) > 1e-9 {
		t.Fatalf("impulse response sum = %v, want 2", sum)
	}
}

func TestResetRestartsStream(t *testing.T) {
	r, err := NewRational(2, 1, WithQuality(QualityFast))
	if err != nil {
		t.Fatalf("NewRational() error = %v", err)
	}
	in := testutil.DeterministicSine(500, 8000, 1, 64)
	first := r.Process(in)
	r.Reset()
	second := r.Process(in)
	if diff, err := testutil.MaxAbsDiff(first, second); err != nil || diff != 0 {
		t.Fatalf("output differs after Reset: max diff %v, %v", diff, err)
	}
}

func TestQualityProfilesSetFilterLength(t *testing.T) {
	for _, tc := range []struct {
		q    Quality
		taps int
	}{
		{QualityFast, 16},
		{QualityBalanced, 32},
		{QualityBest, 64},
	} {
		r, err := NewRational(2, 1, WithQuality(tc.q))
		if err != nil {
			t.Fatalf("NewRational(%v) error = %v", tc.q, err)
		}
		if got := len(r.phases[0]); got != tc.taps {
			t.Fatalf("%v taps/phase = %d, want %d", tc.q, got, tc.taps)
		}
		if r.Quality() != tc.q {
			t.Fatalf("Quality() = %v, want %v", r.Quality(), tc.q)
		}
	}

	r, err := NewRational(2, 1, WithTapsPerPhase(8))
	if err != nil {
		t.Fatalf("NewRational() error = %v", err)
	}
	if got := len(r.phases[0]); got != 8 {
		t.Fatalf("taps/phase = %d, want 8", got)
	}
}

func TestParseQuality(t *testing.T) {
	for _, q := range []Quality{QualityFast, QualityBalanced, QualityBest} {
		got, err := ParseQuality(q.String())
		if err != nil || got != q {
			t.Fatalf("ParseQuality(%q) = %v, %v", q.String(), got, err)
		}
	}
	if _, err := ParseQuality("ultra"); err == nil {
		t.Fatal("expected error for unknown quality")
	}
}
