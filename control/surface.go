// Package control owns the control-side copy of every engine parameter and
// publishes changes to the audio goroutine through mailboxes.
//
// A Surface is what a user interface drives. Every setter clamps its input
// to the range the interface exposes, updates the resident copy and sends
// the whole parameter struct, so the engine always sees a consistent set.
package control

import (
	"math"
	"sync"

	"github.com/cwbudde/algo-grain/dsp/core"
	"github.com/cwbudde/algo-grain/dsp/effects"
	"github.com/cwbudde/algo-grain/dsp/granular"
	"github.com/cwbudde/algo-grain/dsp/window"
)

const (
	minDrive    = 0.01
	maxDrive    = 2.0
	maxFeedback = 0.999
	minTime     = 0.001
	maxTime     = 5.0
)

// Surface is safe for concurrent use by several control goroutines, for
// example a keyboard reader and a MIDI reader.
type Surface struct {
	mu sync.Mutex

	grain  granular.Params
	delay  effects.DelayParams
	fb     effects.FeedbackParams
	gate   bool
	scan   bool
	points []granular.Point

	grainBox  *core.Mailbox[granular.Params]
	gateBox   *core.Mailbox[bool]
	pointsBox *core.Mailbox[[]granular.Point]
	delayBox  *core.Mailbox[effects.DelayParams]
	fbBox     *core.Mailbox[effects.FeedbackParams]
}

// NewSurface returns a surface holding the given starting values, with the
// gate open. Nothing is sent until the first change.
func NewSurface(grain granular.Params, delay effects.DelayParams, fb effects.FeedbackParams) *Surface {
	return &Surface{
		grain:     grain,
		delay:     delay,
		fb:        fb,
		gate:      true,
		scan:      grain.Scan == granular.ScanOn,
		grainBox:  core.NewMailbox[granular.Params](),
		gateBox:   core.NewMailbox[bool](),
		pointsBox: core.NewMailbox[[]granular.Point](),
		delayBox:  core.NewMailbox[effects.DelayParams](),
		fbBox:     core.NewMailbox[effects.FeedbackParams](),
	}
}

// GrainBox is the mailbox the engine reads grain parameters from.
func (s *Surface) GrainBox() *core.Mailbox[granular.Params] { return s.grainBox }

// GateBox is the mailbox the engine reads the gate from.
func (s *Surface) GateBox() *core.Mailbox[bool] { return s.gateBox }

// PointsBox is the mailbox a sequencer reads trigger points from.
func (s *Surface) PointsBox() *core.Mailbox[[]granular.Point] { return s.pointsBox }

// DelayBox is the mailbox the stereo delay reads its parameters from.
func (s *Surface) DelayBox() *core.Mailbox[effects.DelayParams] { return s.delayBox }

// FeedbackBox is the mailbox the stereo delay reads saturation settings
// from.
func (s *Surface) FeedbackBox() *core.Mailbox[effects.FeedbackParams] { return s.fbBox }

// Grain returns the resident grain parameters.
func (s *Surface) Grain() granular.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grain
}

// Delay returns the resident delay parameters.
func (s *Surface) Delay() effects.DelayParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delay
}

// Feedback returns the resident feedback parameters.
func (s *Surface) Feedback() effects.FeedbackParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fb
}

// GateOn reports the last gate state sent.
func (s *Surface) GateOn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gate
}

// SetGate opens or closes the gate.
func (s *Surface) SetGate(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gate = on
	s.gateBox.Send(on)
}

// ToggleGate flips the gate and returns the new state.
func (s *Surface) ToggleGate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gate = !s.gate
	s.gateBox.Send(s.gate)
	return s.gate
}

// ToggleScan flips start scanning and returns the new state.
func (s *Surface) ToggleScan() bool {
	return s.updateGrain(func(p *granular.Params) {
		s.scan = !s.scan
		if s.scan {
			p.Scan = granular.ScanOn
		} else {
			p.Scan = granular.ScanOff
		}
	}).Scan == granular.ScanOn
}

// SetDensity sets the spawn rate in Hz.
func (s *Surface) SetDensity(hz float64) {
	s.updateGrain(func(p *granular.Params) {
		p.Density = clampFinite(hz, granular.MinDensity, granular.MaxDensity, p.Density)
	})
}

// ScaleDensity multiplies the spawn rate by factor.
func (s *Surface) ScaleDensity(factor float64) {
	s.updateGrain(func(p *granular.Params) {
		p.Density = clampFinite(p.Density*factor, granular.MinDensity, granular.MaxDensity, p.Density)
	})
}

// SetGrainLength sets the grain length in source frames.
func (s *Surface) SetGrainLength(frames int) {
	s.updateGrain(func(p *granular.Params) {
		p.GrainLength = core.ClampInt(frames, granular.MinGrainLength, granular.MaxGrainLength)
	})
}

// ScaleGrainLength multiplies the grain length by factor.
func (s *Surface) ScaleGrainLength(factor float64) {
	s.updateGrain(func(p *granular.Params) {
		n := math.Round(float64(p.GrainLength) * factor)
		if !core.Finite(n) {
			return
		}
		p.GrainLength = int(core.Clamp(n, granular.MinGrainLength, granular.MaxGrainLength))
	})
}

// SetSpread sets the random start offset range in frames.
func (s *Surface) SetSpread(frames int) {
	s.updateGrain(func(p *granular.Params) {
		p.GrainSpread = core.ClampInt(frames, 0, granular.MaxGrainSpread)
	})
}

// SetPanSpread sets the random pan range in [0, 1].
func (s *Surface) SetPanSpread(v float32) {
	s.updateGrain(func(p *granular.Params) {
		p.PanSpread = float32(clampFinite(float64(v), 0, 1, float64(p.PanSpread)))
	})
}

// SetGain sets the output gain in [0, 2].
func (s *Surface) SetGain(v float32) {
	s.updateGrain(func(p *granular.Params) {
		p.Gain = float32(clampFinite(float64(v), 0, 2, float64(p.Gain)))
	})
}

// SetStart sets the base read offset in frames.
func (s *Surface) SetStart(frame int) {
	s.updateGrain(func(p *granular.Params) {
		p.Start = max(frame, 0)
	})
}

// SetSource asks the engine to load another file.
func (s *Surface) SetSource(path string) {
	s.updateGrain(func(p *granular.Params) {
		p.Source = path
	})
}

// CycleEnvelope selects the next grain envelope shape.
func (s *Surface) CycleEnvelope() window.Shape {
	return s.updateGrain(func(p *granular.Params) {
		next := p.Envelope + 1
		if !next.Valid() {
			next = window.ShapeRaisedCosine
		}
		p.Envelope = next
	}).Envelope
}

// SetPoints publishes a new sequencer point set. The slice is copied.
func (s *Surface) SetPoints(points []granular.Point) {
	cp := make([]granular.Point, 0, len(points))
	for _, pt := range points {
		if pt.Finite() {
			cp = append(cp, pt)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = cp
	s.pointsBox.Send(cp)
}

// AddPoint appends one point to the sequencer set.
func (s *Surface) AddPoint(pt granular.Point) {
	if !pt.Finite() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([]granular.Point, len(s.points), len(s.points)+1)
	copy(cp, s.points)
	cp = append(cp, pt)
	s.points = cp
	s.pointsBox.Send(cp)
}

// ClearPoints empties the sequencer set.
func (s *Surface) ClearPoints() {
	s.SetPoints(nil)
}

// Points returns a copy of the resident point set.
func (s *Surface) Points() []granular.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]granular.Point(nil), s.points...)
}

// ToggleBypass flips the delay bypass and returns the new state.
func (s *Surface) ToggleBypass() bool {
	return s.updateDelay(func(p *effects.DelayParams) { p.Bypass = !p.Bypass }).Bypass
}

// TogglePitch flips delay time gliding and returns the new state.
func (s *Surface) TogglePitch() bool {
	return s.updateDelay(func(p *effects.DelayParams) { p.Pitch = !p.Pitch }).Pitch
}

// SetMix sets the delay wet amount in [0, 1].
func (s *Surface) SetMix(v float64) {
	s.updateDelay(func(p *effects.DelayParams) { p.Mix = clampFinite(v, 0, 1, p.Mix) })
}

// SetFeedback sets the delay feedback in [0, 0.999].
func (s *Surface) SetFeedback(v float64) {
	s.updateDelay(func(p *effects.DelayParams) { p.Feedback = clampFinite(v, 0, maxFeedback, p.Feedback) })
}

// SetDelayTimes sets both channel delay times in seconds.
func (s *Surface) SetDelayTimes(left, right float64) {
	s.updateDelay(func(p *effects.DelayParams) {
		p.TimeL = clampFinite(left, minTime, maxTime, p.TimeL)
		p.TimeR = clampFinite(right, minTime, maxTime, p.TimeR)
	})
}

// ToggleSaturate flips the feedback saturation stage and returns the new
// state.
func (s *Surface) ToggleSaturate() bool {
	return s.updateFeedback(func(p *effects.FeedbackParams) { p.Saturate = !p.Saturate }).Saturate
}

// CycleMode selects the next saturation curve.
func (s *Surface) CycleMode() effects.SaturationMode {
	return s.updateFeedback(func(p *effects.FeedbackParams) { p.Mode = p.Mode.Next() }).Mode
}

// SetDrive sets the saturation drive.
func (s *Surface) SetDrive(v float64) {
	s.updateFeedback(func(p *effects.FeedbackParams) { p.Drive = clampFinite(v, minDrive, maxDrive, p.Drive) })
}

func (s *Surface) updateGrain(fn func(*granular.Params)) granular.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.grain)
	s.grainBox.Send(s.grain)
	return s.grain
}

func (s *Surface) updateDelay(fn func(*effects.DelayParams)) effects.DelayParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.delay)
	s.delayBox.Send(s.delay)
	return s.delay
}

func (s *Surface) updateFeedback(fn func(*effects.FeedbackParams)) effects.FeedbackParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.fb)
	s.fbBox.Send(s.fb)
	return s.fb
}

func clampFinite(v, lo, hi, fallback float64) float64 {
	if !core.Finite(v) {
		return fallback
	}
	return core.Clamp(v, lo, hi)
}
