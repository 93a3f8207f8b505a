package granular

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-grain/dsp/core"
)

const (
	defaultSequencerCenter    = 0.5
	defaultSequencerHalfWidth = 0.5
	defaultEventCapacity      = 64
	defaultSequencerSeed      = 1
)

// Point is a trigger location. X maps to pan, Y to the start position
// relative to the highest point of the set.
type Point struct {
	X float32
	Y float32
}

// Finite reports whether both coordinates are neither NaN nor infinite.
func (p Point) Finite() bool {
	return core.Finite(float64(p.X)) && core.Finite(float64(p.Y))
}

// Event is one sequencer trigger.
type Event struct {
	// Start is the start position as a fraction of the buffer, in [0, 1].
	Start float32
	// Pan is the stereo position in [-1, 1].
	Pan float32
}

// SequencerOption configures a Sequencer.
type SequencerOption func(*Sequencer) error

// WithBounds sets the horizontal center and half width used to map X to
// pan.
func WithBounds(center, halfWidth float32) SequencerOption {
	return func(s *Sequencer) error {
		if !(halfWidth > 0) || math.IsInf(float64(halfWidth), 0) {
			return fmt.Errorf("sequencer half width must be > 0: %f", halfWidth)
		}
		if center != center || math.IsInf(float64(center), 0) {
			return fmt.Errorf("sequencer center must be finite: %f", center)
		}
		s.center = center
		s.halfWidth = halfWidth
		return nil
	}
}

// WithCanvasWidth maps X over a canvas of the given width, centered at
// width/2.
func WithCanvasWidth(width float32) SequencerOption {
	return WithBounds(width/2, width/2)
}

// WithSequencerRand sets the random source used to pick points.
func WithSequencerRand(rng *rand.Rand) SequencerOption {
	return func(s *Sequencer) error {
		if rng == nil {
			return fmt.Errorf("sequencer rand must not be nil")
		}
		s.rng = rng
		return nil
	}
}

// WithEventCapacity sets how many undrained events are kept. Triggers
// beyond that are dropped.
func WithEventCapacity(n int) SequencerOption {
	return func(s *Sequencer) error {
		if n < 1 {
			return fmt.Errorf("sequencer event capacity must be > 0: %d", n)
		}
		s.events = make([]Event, 0, n)
		return nil
	}
}

// Sequencer turns a set of points into a stream of spawn events at a fixed
// rate. It is driven from the audio goroutine: Update once per frame,
// Drain to collect events. New point sets arrive through a mailbox.
type Sequencer struct {
	points    []Point
	maxHeight float32

	sampleRate float64
	rate       float64
	timer      int

	center    float32
	halfWidth float32

	box    *core.Mailbox[[]Point]
	events []Event
	rng    *rand.Rand
}

// NewSequencer creates a sequencer triggering rate times per second at the
// given sample rate. box may be nil.
func NewSequencer(sampleRate, rate float64, points []Point, box *core.Mailbox[[]Point], opts ...SequencerOption) (*Sequencer, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("sequencer sample rate must be > 0: %f", sampleRate)
	}
	if !(rate > 0) || math.IsInf(rate, 0) {
		return nil, fmt.Errorf("sequencer rate must be > 0: %f", rate)
	}

	s := &Sequencer{
		sampleRate: sampleRate,
		rate:       rate,
		center:     defaultSequencerCenter,
		halfWidth:  defaultSequencerHalfWidth,
		box:        box,
		events:     make([]Event, 0, defaultEventCapacity),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(defaultSequencerSeed))
	}

	s.SetPoints(points)

	return s, nil
}

// SetPoints replaces the point set. The sequencer keeps the slice; the
// caller must not modify it afterwards. Non-finite points are kept but
// never trigger.
func (s *Sequencer) SetPoints(points []Point) {
	s.points = points
	s.maxHeight = 0
	for _, p := range points {
		if p.Finite() && p.Y > s.maxHeight {
			s.maxHeight = p.Y
		}
	}
}

// Points returns the current point set.
func (s *Sequencer) Points() []Point { return s.points }

// SetRate sets the trigger rate in Hz. Non-positive rates are ignored.
// A pending countdown longer than the new interval is shortened.
func (s *Sequencer) SetRate(rate float64) {
	if !(rate > 0) || math.IsInf(rate, 0) {
		return
	}
	s.rate = rate
	if iv := s.interval(); s.timer > iv {
		s.timer = iv
	}
}

// Rate returns the trigger rate in Hz.
func (s *Sequencer) Rate() float64 { return s.rate }

// SetSampleRate updates the frame clock used for the countdown.
func (s *Sequencer) SetSampleRate(sampleRate float64) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return
	}
	s.sampleRate = sampleRate
	if iv := s.interval(); s.timer > iv {
		s.timer = iv
	}
}

// Update advances the sequencer by one frame. It picks up a new point set
// if one was published and triggers when the countdown expires.
func (s *Sequencer) Update() {
	if points, ok := s.box.TryReceive(); ok {
		s.SetPoints(points)
	}

	if s.timer <= 0 {
		s.Trigger()
		s.timer = s.interval()
	}

	s.timer--
}

// Trigger queues one event for a uniformly chosen point. It does nothing
// when the point set is empty, the chosen point is not finite or the event
// queue is full.
func (s *Sequencer) Trigger() {
	if len(s.points) == 0 || len(s.events) == cap(s.events) {
		return
	}

	p := s.points[s.rng.Intn(len(s.points))]
	if !p.Finite() {
		return
	}

	var start float32
	if s.maxHeight > 0 {
		start = core.Clamp32(p.Y/s.maxHeight, 0, 1)
	}

	pan := core.Clamp32((p.X-s.center)/s.halfWidth, -1, 1)

	s.events = append(s.events, Event{Start: start, Pan: pan})
}

// Pending returns the number of undrained events.
func (s *Sequencer) Pending() int { return len(s.events) }

// Drain appends all queued events to dst and clears the queue. With a dst
// of sufficient capacity it does not allocate.
func (s *Sequencer) Drain(dst []Event) []Event {
	dst = append(dst, s.events...)
	s.events = s.events[:0]
	return dst
}

func (s *Sequencer) interval() int {
	n := int(math.Round(s.sampleRate / s.rate))
	if n < 1 {
		n = 1
	}
	return n
}
