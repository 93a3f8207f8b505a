package delay

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-grain/internal/testutil"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

// --- construction and validation ---

func TestNewValidation(t *testing.T) {
	if _, err := New(1, 0); err == nil {
		t.Fatal("expected error for size=0")
	}

	if _, err := New(1, 1); err == nil {
		t.Fatal("expected error for size=1")
	}

	if _, err := New(math.NaN(), 8); err == nil {
		t.Fatal("expected error for NaN time")
	}
}

func TestNewClampsTime(t *testing.T) {
	d, err := New(100, 16)
	if err != nil {
		t.Fatal(err)
	}

	if d.Time() != 8 || d.TargetTime() != 8 {
		t.Fatalf("time: got %v/%v want 8", d.Time(), d.TargetTime())
	}

	d.SetTime(0)
	if d.Time() != 1 {
		t.Fatalf("time: got %v want 1", d.Time())
	}
}

// --- round trip ---

func TestImpulseRoundTrip(t *testing.T) {
	d, err := New(4, 8)
	if err != nil {
		t.Fatal(err)
	}

	d.Write(1)
	d.Advance()

	for i := 1; i <= 4; i++ {
		got := d.Read()
		if i < 4 && got != 0 {
			t.Fatalf("after %d advances: got %v want 0", i, got)
		}
		if i == 4 {
			if got != 1 {
				t.Fatalf("after 4 advances: got %v want 1", got)
			}
			break
		}
		d.Advance()
	}
}

func run(d *Line, in []float64) []float64 {
	out := make([]float64, len(in))
	for i, x := range in {
		out[i] = float64(d.Read())
		d.Write(float32(x))
		d.Advance()
	}
	return out
}

func TestIntegerDelayShiftsSignal(t *testing.T) {
	d, err := New(7, 64)
	if err != nil {
		t.Fatal(err)
	}

	got := run(d, testutil.Impulse(64, 5))
	testutil.RequireSliceNearlyEqual(t, got, testutil.Impulse(64, 12), 0)
}

func TestGlidingDelayStaysFinite(t *testing.T) {
	d, err := New(3, 256)
	if err != nil {
		t.Fatal(err)
	}
	d.SetTimeSmooth(100.25)

	in := testutil.DeterministicNoise(3, 1, 1024)
	out := run(d, in)
	testutil.RequireFinite(t, out)

	if diff, err := testutil.MaxAbsDiff(out, in); err != nil || diff == 0 {
		t.Fatalf("MaxAbsDiff = %v, %v; delayed output should differ from input", diff, err)
	}
}

func TestFractionalReadInterpolates(t *testing.T) {
	d, err := New(2.5, 8)
	if err != nil {
		t.Fatal(err)
	}

	// Write a ramp 0,1,2,3 and read with a half-sample offset.
	for i := 0; i < 4; i++ {
		d.Write(float32(i))
		d.Advance()
	}

	// writePos = 4, read position = 1.5 between samples 1 and 2.
	if got := d.Read(); !approxEqual(float64(got), 1.5, 1e-6) {
		t.Fatalf("fractional read: got %v want 1.5", got)
	}
}

func TestReadWrapsAroundBuffer(t *testing.T) {
	d, err := New(3, 8)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 20; i++ {
		d.Write(float32(i))
		d.Advance()
	}

	// The last written value was 19; three samples back from the write
	// position is the value written three advances ago.
	if got := d.Read(); got != 17 {
		t.Fatalf("wrapped read: got %v want 17", got)
	}
}

// --- time slewing ---

func TestSetTimeSmoothGlides(t *testing.T) {
	d, err := New(10, 64)
	if err != nil {
		t.Fatal(err)
	}

	d.SetTimeSmooth(12)
	if d.Time() != 10 {
		t.Fatalf("SetTimeSmooth moved current time: %v", d.Time())
	}

	d.Advance()
	if d.Time() != 10.5 {
		t.Fatalf("after one advance: got %v want 10.5", d.Time())
	}

	for i := 0; i < 3; i++ {
		d.Advance()
	}
	if d.Time() != 12 {
		t.Fatalf("after four advances: got %v want 12", d.Time())
	}

	d.Advance()
	if d.Time() != 12 {
		t.Fatalf("overshoot: got %v want 12", d.Time())
	}
}

func TestSetTimeSmoothSnapsWithinOneStep(t *testing.T) {
	d, err := New(10, 64)
	if err != nil {
		t.Fatal(err)
	}

	d.SetTimeSmooth(9.8)
	d.Advance()

	if d.Time() != 9.8 {
		t.Fatalf("got %v want 9.8", d.Time())
	}
}

func TestSetTimeJumps(t *testing.T) {
	d, err := New(10, 64)
	if err != nil {
		t.Fatal(err)
	}

	d.SetTimeSmooth(30)
	d.SetTime(4)

	if d.Time() != 4 || d.TargetTime() != 4 {
		t.Fatalf("SetTime: got %v/%v want 4", d.Time(), d.TargetTime())
	}
}

func TestReset(t *testing.T) {
	d, err := New(2, 8)
	if err != nil {
		t.Fatal(err)
	}

	d.Write(1)
	d.Advance()
	d.Advance()
	d.SetTimeSmooth(4)
	d.Reset()

	if d.Time() != 4 {
		t.Fatalf("Reset did not settle time: %v", d.Time())
	}
	for i := 0; i < d.Len(); i++ {
		if got := d.Read(); got != 0 {
			t.Fatalf("Reset left data: %v", got)
		}
		d.Advance()
	}
}
