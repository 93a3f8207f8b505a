package core

import "testing"

func TestStereoFrameArithmetic(t *testing.T) {
	f := StereoFrame{L: 0.5, R: -0.25}

	if got := f.Scale(2); got != (StereoFrame{L: 1, R: -0.5}) {
		t.Fatalf("Scale(2) = %+v", got)
	}
	if got := f.Add(StereoFrame{L: 0.5, R: 0.25}); got != (StereoFrame{L: 1, R: 0}) {
		t.Fatalf("Add() = %+v", got)
	}
	if got := Mono(0.3); got.L != 0.3 || got.R != 0.3 {
		t.Fatalf("Mono(0.3) = %+v", got)
	}
	if got := f.Mid(); got != 0.125 {
		t.Fatalf("Mid() = %v, want 0.125", got)
	}
	if !(StereoFrame{}).IsZero() || f.IsZero() {
		t.Fatal("IsZero mismatch")
	}
}

func TestInterleaveAndSplit(t *testing.T) {
	frames := []StereoFrame{{L: 1, R: 2}, {L: 3, R: 4}}

	dst := make([]float32, 4)
	if n := Interleave(dst, frames); n != 4 {
		t.Fatalf("Interleave() = %d, want 4", n)
	}
	want := []float32{1, 2, 3, 4}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}

	short := make([]float32, 3)
	if n := Interleave(short, frames); n != 2 {
		t.Fatalf("Interleave(short) = %d, want 2", n)
	}

	left := make([]float64, 2)
	right := make([]float64, 2)
	if n := Split(left, right, frames); n != 2 {
		t.Fatalf("Split() = %d, want 2", n)
	}
	if left[1] != 3 || right[1] != 4 {
		t.Fatalf("Split() = %v %v", left, right)
	}
}

func TestEnsureFramesReusesCapacity(t *testing.T) {
	buf := make([]StereoFrame, 2, 8)
	got := EnsureFrames(buf, 6)
	if len(got) != 6 || &got[0] != &buf[0] {
		t.Fatal("EnsureFrames did not reuse capacity")
	}
	got[0] = StereoFrame{L: 1}
	ZeroFrames(got)
	if !got[0].IsZero() {
		t.Fatal("ZeroFrames left data")
	}
	if len(EnsureFrames(buf, 0)) != 0 {
		t.Fatal("EnsureFrames(0) must be empty")
	}
}
