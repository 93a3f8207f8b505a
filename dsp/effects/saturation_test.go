package effects

import (
	"math"
	"testing"
)

func TestSaturaterValidation(t *testing.T) {
	if _, err := NewSaturater(-1, SaturationTube); err == nil {
		t.Fatal("expected error for negative drive")
	}

	if _, err := NewSaturater(math.NaN(), SaturationTube); err == nil {
		t.Fatal("expected error for NaN drive")
	}

	if _, err := NewSaturater(1, SaturationMode(7)); err == nil {
		t.Fatal("expected error for invalid mode")
	}
}

func TestSaturaterBounded(t *testing.T) {
	limit := float32(1 / GainFactor)
	inputs := []float32{-1e30, -1000, -3, -1, -0.1, 0, 0.1, 1, 3, 1000, 1e30}

	for _, mode := range []SaturationMode{SaturationTube, SaturationTransistor} {
		for _, drive := range []float64{0, 0.01, 0.5, 1, 2, 20} {
			s, err := NewSaturater(drive, mode)
			if err != nil {
				t.Fatalf("NewSaturater() error = %v", err)
			}

			for _, in := range inputs {
				out := s.Process(in)
				if math.IsNaN(float64(out)) || out > limit || out < -limit {
					t.Fatalf("%v drive=%v in=%g: out=%g exceeds %g", mode, drive, in, out, limit)
				}
			}
		}
	}
}

func TestSaturaterSmallSignalUnityGain(t *testing.T) {
	for _, mode := range []SaturationMode{SaturationTube, SaturationTransistor} {
		s, err := NewSaturater(1, mode)
		if err != nil {
			t.Fatalf("NewSaturater() error = %v", err)
		}

		in := float32(1e-4)
		out := s.Process(in)
		if math.Abs(float64(out-in)) > 1e-6 {
			t.Fatalf("%v: small-signal out=%g, want ~%g", mode, out, in)
		}
	}
}

func TestSaturaterAntisymmetric(t *testing.T) {
	for _, mode := range []SaturationMode{SaturationTube, SaturationTransistor} {
		s, err := NewSaturater(1.5, mode)
		if err != nil {
			t.Fatalf("NewSaturater() error = %v", err)
		}

		for _, in := range []float32{0.05, 0.3, 0.9} {
			if pos, neg := s.Process(in), s.Process(-in); pos != -neg {
				t.Fatalf("%v: f(%g)=%g, f(-%g)=%g", mode, in, pos, in, neg)
			}
		}
	}
}

func TestSaturaterTapeHysteresis(t *testing.T) {
	s, err := NewSaturater(1, SaturationTape)
	if err != nil {
		t.Fatalf("NewSaturater() error = %v", err)
	}

	gained := 0.2 * GainFactor
	want := (math.Tanh(gained)*(0.9+0.35*gained) + 0.2*gained) / GainFactor

	first := s.Process(0.2)
	if math.Abs(float64(first)-want) > 1e-6 {
		t.Fatalf("first tape sample = %v, want %v", first, want)
	}

	// Same input again: hysteresis now sees the previous output.
	second := s.Process(0.2)
	if first == second {
		t.Fatal("tape output did not depend on previous sample")
	}

	s.Reset()
	if again := s.Process(0.2); math.Abs(float64(again-first)) > 1e-7 {
		t.Fatalf("after Reset got %v, want %v", again, first)
	}
}

func TestSaturaterModeSwitchClearsMemory(t *testing.T) {
	s, err := NewSaturater(1, SaturationTape)
	if err != nil {
		t.Fatalf("NewSaturater() error = %v", err)
	}
	fresh, _ := NewSaturater(1, SaturationTape)

	for i := 0; i < 8; i++ {
		s.Process(0.7)
	}

	if err := s.SetMode(SaturationTube); err != nil {
		t.Fatal(err)
	}
	if err := s.SetMode(SaturationTape); err != nil {
		t.Fatal(err)
	}

	if got, want := s.Process(0.3), fresh.Process(0.3); got != want {
		t.Fatalf("tape memory survived mode switch: got %v want %v", got, want)
	}

	// Setting the same mode keeps the memory.
	s.Process(0.7)
	before := *s
	_ = s.SetMode(SaturationTape)
	if s.prev != before.prev {
		t.Fatal("same-mode SetMode cleared memory")
	}
}

func TestSaturationModeNames(t *testing.T) {
	for _, m := range []SaturationMode{SaturationTape, SaturationTube, SaturationTransistor} {
		got, err := ParseSaturationMode(m.String())
		if err != nil || got != m {
			t.Fatalf("ParseSaturationMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseSaturationMode("diode"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
	if SaturationTransistor.Next() != SaturationTape {
		t.Fatal("Next did not wrap")
	}
}
