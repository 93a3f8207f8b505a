package control

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-grain/dsp/effects"
	"github.com/cwbudde/algo-grain/dsp/granular"
	"github.com/cwbudde/algo-grain/dsp/window"
)

func newTestSurface() *Surface {
	return NewSurface(granular.DefaultParams(), effects.DefaultDelayParams(), effects.DefaultFeedbackParams())
}

func TestSurfaceSendsNothingUntilChanged(t *testing.T) {
	s := newTestSurface()
	if s.GrainBox().Pending() || s.GateBox().Pending() || s.DelayBox().Pending() || s.FeedbackBox().Pending() {
		t.Fatal("mailbox pending before any change")
	}
}

func TestSurfaceGateToggle(t *testing.T) {
	s := newTestSurface()

	if !s.GateOn() {
		t.Fatal("surface should start with the gate open")
	}

	if s.ToggleGate() {
		t.Fatal("first toggle should close the gate")
	}
	if got, ok := s.GateBox().TryReceive(); !ok || got {
		t.Fatalf("gate message = %v, %v; want false", got, ok)
	}

	s.ToggleGate()
	if got, _ := s.GateBox().TryReceive(); !got {
		t.Fatal("second toggle should open the gate")
	}
}

func TestSurfaceScanToggleSendsExplicitMode(t *testing.T) {
	s := newTestSurface()

	if !s.ToggleScan() {
		t.Fatal("scan should be on")
	}
	p, _ := s.GrainBox().TryReceive()
	if p.Scan != granular.ScanOn {
		t.Fatalf("scan = %v, want on", p.Scan)
	}

	s.ToggleScan()
	p, _ = s.GrainBox().TryReceive()
	if p.Scan != granular.ScanOff {
		t.Fatalf("scan = %v, want off", p.Scan)
	}
}

func TestSurfaceClampsToInterfaceRanges(t *testing.T) {
	s := newTestSurface()

	s.SetDensity(1000)
	s.SetGrainLength(1)
	s.SetSpread(-10)
	s.SetPanSpread(5)
	s.SetGain(float32(math.NaN()))

	p, ok := s.GrainBox().TryReceive()
	if !ok {
		t.Fatal("no grain message")
	}
	if p.Density != granular.MaxDensity || p.GrainLength != granular.MinGrainLength {
		t.Fatalf("density/length not clamped: %+v", p)
	}
	if p.GrainSpread != 0 || p.PanSpread != 1 || p.Gain != granular.DefaultParams().Gain {
		t.Fatalf("spread/pan/gain not clamped: %+v", p)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("published params invalid: %v", err)
	}

	s.SetSpread(math.MaxInt)
	if p, _ := s.GrainBox().TryReceive(); p.GrainSpread != granular.MaxGrainSpread {
		t.Fatalf("spread = %d, want %d", p.GrainSpread, granular.MaxGrainSpread)
	}

	s.SetFeedback(2)
	s.SetDelayTimes(0, 10)
	d, _ := s.DelayBox().TryReceive()
	if d.Feedback != maxFeedback || d.TimeL != minTime || d.TimeR != maxTime {
		t.Fatalf("delay not clamped: %+v", d)
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("published delay invalid: %v", err)
	}

	s.SetDrive(100)
	f, _ := s.FeedbackBox().TryReceive()
	if f.Drive != maxDrive {
		t.Fatalf("drive = %v, want %v", f.Drive, maxDrive)
	}
}

func TestSurfaceLastWriteWins(t *testing.T) {
	s := newTestSurface()
	s.SetDensity(2)
	s.SetDensity(3)
	s.SetGain(1)

	p, _ := s.GrainBox().TryReceive()
	if p.Density != 3 || p.Gain != 1 {
		t.Fatalf("latest params = %+v, want density 3 and gain 1", p)
	}
	if _, ok := s.GrainBox().TryReceive(); ok {
		t.Fatal("stale message delivered")
	}
}

func TestSurfaceCycles(t *testing.T) {
	s := newTestSurface()

	if got := s.CycleMode(); got != effects.SaturationTube {
		t.Fatalf("mode = %v, want tube", got)
	}

	shapes := []window.Shape{window.ShapeLinear, window.ShapeExponential, window.ShapeRaisedCosine}
	for _, want := range shapes {
		if got := s.CycleEnvelope(); got != want {
			t.Fatalf("envelope = %v, want %v", got, want)
		}
	}
}

func TestSurfacePointsAreCopied(t *testing.T) {
	s := newTestSurface()
	pts := []granular.Point{{X: 0.1, Y: 0.2}}
	s.SetPoints(pts)
	pts[0].X = 9

	sent, ok := s.PointsBox().TryReceive()
	if !ok || len(sent) != 1 || sent[0].X != 0.1 {
		t.Fatalf("sent points = %+v", sent)
	}

	s.AddPoint(granular.Point{X: 0.5, Y: 0.5})
	sent, _ = s.PointsBox().TryReceive()
	if len(sent) != 2 || len(s.Points()) != 2 {
		t.Fatalf("points after add = %+v", sent)
	}

	s.AddPoint(granular.Point{X: float32(math.NaN()), Y: 0.5})
	if s.PointsBox().Pending() || len(s.Points()) != 2 {
		t.Fatal("non-finite point was added")
	}
	s.SetPoints([]granular.Point{{X: 0.3, Y: 0.3}, {X: 0.4, Y: float32(math.Inf(-1))}})
	sent, _ = s.PointsBox().TryReceive()
	if len(sent) != 1 || sent[0].X != 0.3 {
		t.Fatalf("non-finite point published: %+v", sent)
	}

	s.ClearPoints()
	sent, ok = s.PointsBox().TryReceive()
	if !ok || len(sent) != 0 {
		t.Fatalf("clear sent %+v, %v", sent, ok)
	}
}
