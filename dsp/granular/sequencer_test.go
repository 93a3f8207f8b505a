package granular

import (
	"math"
	"math/rand"
	"testing"

	"github.com/cwbudde/algo-grain/dsp/core"
)

func newTestSequencer(t *testing.T, points []Point, box *core.Mailbox[[]Point], opts ...SequencerOption) *Sequencer {
	t.Helper()
	s, err := NewSequencer(100, 10, points, box, opts...)
	if err != nil {
		t.Fatalf("NewSequencer: %v", err)
	}
	return s
}

func TestSequencerEmptySetNeverTriggers(t *testing.T) {
	s := newTestSequencer(t, nil, nil)
	for i := 0; i < 1000; i++ {
		s.Update()
	}
	s.Trigger()
	if s.Pending() != 0 {
		t.Fatalf("pending = %d, want 0", s.Pending())
	}
}

func TestSequencerTriggerRate(t *testing.T) {
	s := newTestSequencer(t, []Point{{X: 0.5, Y: 1}}, nil)

	var fired []int
	for frame := 1; frame <= 30; frame++ {
		s.Update()
		if s.Pending() > 0 {
			fired = append(fired, frame)
			s.Drain(nil)
		}
	}

	want := []int{1, 11, 21}
	if len(fired) != len(want) {
		t.Fatalf("fired at %v, want %v", fired, want)
	}
	for i := range want {
		if fired[i] != want[i] {
			t.Fatalf("fired at %v, want %v", fired, want)
		}
	}
}

func TestSequencerEventMapping(t *testing.T) {
	tests := []struct {
		name      string
		points    []Point
		opts      []SequencerOption
		wantStart float32
		wantPan   float32
	}{
		{"center top", []Point{{X: 0.5, Y: 0.8}}, nil, 1, 0},
		{"left edge", []Point{{X: 0, Y: 0.2}}, nil, 1, -1},
		{"beyond right", []Point{{X: 3, Y: 0.2}}, nil, 1, 1},
		{"flat set", []Point{{X: 0.75, Y: 0}}, nil, 0, 0.5},
		{"canvas right", []Point{{X: 500, Y: 10}}, []SequencerOption{WithCanvasWidth(500)}, 1, 1},
		{"canvas center", []Point{{X: 250, Y: 10}}, []SequencerOption{WithCanvasWidth(500)}, 1, 0},
		{"canvas quarter", []Point{{X: 125, Y: 10}}, []SequencerOption{WithCanvasWidth(500)}, 1, -0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSequencer(t, tt.points, nil, tt.opts...)
			s.Trigger()
			ev := s.Drain(nil)
			if len(ev) != 1 {
				t.Fatalf("events = %d, want 1", len(ev))
			}
			if math.Abs(float64(ev[0].Start-tt.wantStart)) > 1e-6 || math.Abs(float64(ev[0].Pan-tt.wantPan)) > 1e-6 {
				t.Fatalf("event = %+v, want start %v pan %v", ev[0], tt.wantStart, tt.wantPan)
			}
		})
	}
}

func TestSequencerStartRelativeToHighestPoint(t *testing.T) {
	points := []Point{{X: 0.5, Y: 0.2}, {X: 0.5, Y: 0.4}}
	s := newTestSequencer(t, points, nil, WithSequencerRand(rand.New(rand.NewSource(7))))

	seen := map[float32]bool{}
	for i := 0; i < 200; i++ {
		s.Trigger()
		for _, ev := range s.Drain(nil) {
			if ev.Start != 0.5 && ev.Start != 1 {
				t.Fatalf("unexpected start %v", ev.Start)
			}
			seen[ev.Start] = true
		}
	}
	if !seen[0.5] || !seen[1] {
		t.Fatalf("uniform pick missed a point: %v", seen)
	}
}

func TestSequencerSkipsNonFinitePoints(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	points := []Point{{X: nan, Y: 1}, {X: 0.5, Y: inf}, {X: 0.25, Y: 0.5}}
	s := newTestSequencer(t, points, nil)

	if s.maxHeight != 0.5 {
		t.Fatalf("max height = %v, want 0.5", s.maxHeight)
	}

	n := 0
	for i := 0; i < 60; i++ {
		s.Trigger()
		for _, ev := range s.Drain(nil) {
			if ev.Start != 1 || ev.Pan != -0.5 {
				t.Fatalf("event = %+v, want start 1 pan -0.5", ev)
			}
			n++
		}
	}
	if n == 0 {
		t.Fatal("finite point never triggered")
	}

	s.SetPoints([]Point{{X: nan, Y: nan}})
	s.Trigger()
	if s.Pending() != 0 {
		t.Fatal("non-finite point triggered")
	}
}

func TestSequencerReceivesPoints(t *testing.T) {
	box := core.NewMailbox[[]Point]()
	s := newTestSequencer(t, nil, box)

	s.Update()
	if s.Pending() != 0 {
		t.Fatal("triggered with no points")
	}

	box.Send([]Point{{X: 0.5, Y: 2}, {X: 0.5, Y: 1}})
	s.Update()
	if len(s.Points()) != 2 {
		t.Fatalf("points = %d, want 2", len(s.Points()))
	}
	if s.maxHeight != 2 {
		t.Fatalf("max height = %v, want 2", s.maxHeight)
	}
}

func TestSequencerEventCapacity(t *testing.T) {
	s := newTestSequencer(t, []Point{{X: 0.5, Y: 1}}, nil, WithEventCapacity(2))
	for i := 0; i < 5; i++ {
		s.Trigger()
	}
	if s.Pending() != 2 {
		t.Fatalf("pending = %d, want 2", s.Pending())
	}
}

func TestSequencerDrainDoesNotAllocate(t *testing.T) {
	s := newTestSequencer(t, []Point{{X: 0.1, Y: 1}, {X: 0.9, Y: 0.5}}, nil)
	dst := make([]Event, 0, defaultEventCapacity)

	allocs := testing.AllocsPerRun(100, func() {
		s.Update()
		s.Trigger()
		dst = s.Drain(dst[:0])
	})
	if allocs != 0 {
		t.Fatalf("allocs per frame = %v, want 0", allocs)
	}
}

func TestSequencerSetRateShortensCountdown(t *testing.T) {
	s := newTestSequencer(t, []Point{{X: 0.5, Y: 1}}, nil)
	s.Update()
	s.Drain(nil)

	s.SetRate(50)
	fired := 0
	for i := 0; i < 4; i++ {
		s.Update()
		fired += len(s.Drain(nil))
	}
	if fired != 1 {
		t.Fatalf("fired %d times in 4 frames at 50 Hz, want 1", fired)
	}

	s.SetRate(-1)
	if s.Rate() != 50 {
		t.Fatalf("rate = %v after invalid set, want 50", s.Rate())
	}
}

func TestSequencerOptionErrors(t *testing.T) {
	if _, err := NewSequencer(0, 10, nil, nil); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	if _, err := NewSequencer(100, 0, nil, nil); err == nil {
		t.Fatal("expected error for zero rate")
	}
	if _, err := NewSequencer(100, 10, nil, nil, WithBounds(0, 0)); err == nil {
		t.Fatal("expected error for zero half width")
	}
	if _, err := NewSequencer(100, 10, nil, nil, WithEventCapacity(0)); err == nil {
		t.Fatal("expected error for zero capacity")
	}
	if _, err := NewSequencer(100, 10, nil, nil, WithSequencerRand(nil)); err == nil {
		t.Fatal("expected error for nil rand")
	}
}
