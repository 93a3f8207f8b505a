package testutil

import (
	"fmt"
	"math"
	"testing"

	"github.com/cwbudde/algo-grain/dsp/core"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance).
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		diff := math.Abs(got[i] - want[i])
		if diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireFinite fails t if any element is NaN or Inf.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// RequireFramesFinite fails t if any channel of any frame is NaN or Inf.
func RequireFramesFinite(t *testing.T, frames []core.StereoFrame) {
	t.Helper()
	for i, f := range frames {
		if !core.Finite(float64(f.L)) || !core.Finite(float64(f.R)) {
			t.Fatalf("frame %d: non-finite value %+v", i, f)
		}
	}
}

// RequireFrameNearlyEqual fails t if either channel differs by more than eps.
func RequireFrameNearlyEqual(t *testing.T, got, want core.StereoFrame, eps float64) {
	t.Helper()
	if math.Abs(float64(got.L-want.L)) > eps || math.Abs(float64(got.R-want.R)) > eps {
		t.Fatalf("got %+v, want %+v (eps %v)", got, want, eps)
	}
}

// MaxAbsDiff returns the maximum absolute difference between two slices.
// Returns an error if the slices differ in length.
func MaxAbsDiff(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}
	maxDiff := 0.0
	for i := range a {
		d := math.Abs(a[i] - b[i])
		if d > maxDiff {
			maxDiff = d
		}
	}
	return maxDiff, nil
}

// PeakFrames returns the largest absolute sample over both channels.
func PeakFrames(frames []core.StereoFrame) float64 {
	peak := 0.0
	for _, f := range frames {
		peak = math.Max(peak, math.Abs(float64(f.L)))
		peak = math.Max(peak, math.Abs(float64(f.R)))
	}
	return peak
}
