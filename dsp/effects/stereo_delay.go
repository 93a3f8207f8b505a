package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-grain/dsp/core"
	"github.com/cwbudde/algo-grain/dsp/delay"
)

const (
	defaultStereoDelayTimeL    = 2.45625
	defaultStereoDelayTimeR    = 1.53312
	defaultStereoDelayFeedback = 0.2
	defaultStereoDelayMix      = 0.5

	minStereoDelaySeconds  = 0.001
	maxStereoDelaySeconds  = 5.0
	maxStereoDelayFeedback = 0.999
)

// DelayParams configures StereoDelay.
type DelayParams struct {
	// Mix is the wet amount in [0, 1].
	Mix float64
	// Feedback is the amount of wet signal written back, in [0, 0.999].
	Feedback float64
	// TimeL and TimeR are the channel delay times in seconds, in [0.001, 5].
	TimeL float64
	TimeR float64
	// Bypass passes input through untouched.
	Bypass bool
	// Pitch glides delay time changes instead of jumping, which bends the
	// pitch of the material already in the line.
	Pitch bool
}

// DefaultDelayParams returns the delay configuration used by the engine.
func DefaultDelayParams() DelayParams {
	return DelayParams{
		Mix:      defaultStereoDelayMix,
		Feedback: defaultStereoDelayFeedback,
		TimeL:    defaultStereoDelayTimeL,
		TimeR:    defaultStereoDelayTimeR,
	}
}

// Validate reports the first out-of-range field.
func (p DelayParams) Validate() error {
	if p.Mix < 0 || p.Mix > 1 || math.IsNaN(p.Mix) {
		return fmt.Errorf("delay mix must be in [0, 1]: %f", p.Mix)
	}
	if p.Feedback < 0 || p.Feedback > maxStereoDelayFeedback || math.IsNaN(p.Feedback) {
		return fmt.Errorf("delay feedback must be in [0, %g]: %f", maxStereoDelayFeedback, p.Feedback)
	}
	for _, tm := range []float64{p.TimeL, p.TimeR} {
		if tm < minStereoDelaySeconds || tm > maxStereoDelaySeconds || math.IsNaN(tm) {
			return fmt.Errorf("delay time must be in [%g, %g]: %f", minStereoDelaySeconds, maxStereoDelaySeconds, tm)
		}
	}
	return nil
}

func (p DelayParams) normalized() DelayParams {
	def := DefaultDelayParams()
	p.Mix = clampOr(p.Mix, 0, 1, def.Mix)
	p.Feedback = clampOr(p.Feedback, 0, maxStereoDelayFeedback, def.Feedback)
	p.TimeL = clampOr(p.TimeL, minStereoDelaySeconds, maxStereoDelaySeconds, def.TimeL)
	p.TimeR = clampOr(p.TimeR, minStereoDelaySeconds, maxStereoDelaySeconds, def.TimeR)
	return p
}

// FeedbackParams configures the saturation stage in the delay feedback path.
type FeedbackParams struct {
	// Drive scales the staged input before shaping, in [0, 20].
	Drive float64
	// Saturate enables the stage.
	Saturate bool
	// Mode selects the transfer curve.
	Mode SaturationMode
}

// DefaultFeedbackParams returns a disabled Tape stage at unity drive.
func DefaultFeedbackParams() FeedbackParams {
	return FeedbackParams{
		Drive: defaultSaturationDrive,
		Mode:  defaultSatMode,
	}
}

// Validate reports the first out-of-range field.
func (p FeedbackParams) Validate() error {
	if p.Drive < minSaturationDrive || p.Drive > maxSaturationDrive || math.IsNaN(p.Drive) {
		return fmt.Errorf("saturation drive must be in [%g, %g]: %f", minSaturationDrive, maxSaturationDrive, p.Drive)
	}
	if !p.Mode.Valid() {
		return fmt.Errorf("saturation mode is invalid: %d", p.Mode)
	}
	return nil
}

func (p FeedbackParams) normalized() FeedbackParams {
	p.Drive = clampOr(p.Drive, minSaturationDrive, maxSaturationDrive, defaultSaturationDrive)
	if !p.Mode.Valid() {
		p.Mode = defaultSatMode
	}
	return p
}

// StereoDelay is a two-channel feedback delay with an optional saturation
// stage in each feedback path.
//
// Parameters are read from mailboxes at the start of every Process call, so
// a control goroutine can change them while audio runs. Apart from that the
// processor is not thread-safe.
type StereoDelay struct {
	sampleRate float64
	params     DelayParams
	fb         FeedbackParams

	left  *delay.Line
	right *delay.Line
	satL  *Saturater
	satR  *Saturater

	paramBox *core.Mailbox[DelayParams]
	fbBox    *core.Mailbox[FeedbackParams]
}

// NewStereoDelay creates a stereo delay. Either mailbox may be nil, in
// which case the corresponding parameters stay fixed.
func NewStereoDelay(
	sampleRate float64,
	params DelayParams,
	fb FeedbackParams,
	paramBox *core.Mailbox[DelayParams],
	fbBox *core.Mailbox[FeedbackParams],
) (*StereoDelay, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("stereo delay sample rate must be > 0: %f", sampleRate)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := fb.Validate(); err != nil {
		return nil, err
	}

	size := 2 * int(math.Ceil(maxStereoDelaySeconds*sampleRate))

	left, err := delay.New(params.TimeL*sampleRate, size)
	if err != nil {
		return nil, err
	}
	right, err := delay.New(params.TimeR*sampleRate, size)
	if err != nil {
		return nil, err
	}
	satL, err := NewSaturater(fb.Drive, fb.Mode)
	if err != nil {
		return nil, err
	}
	satR, err := NewSaturater(fb.Drive, fb.Mode)
	if err != nil {
		return nil, err
	}

	return &StereoDelay{
		sampleRate: sampleRate,
		params:     params,
		fb:         fb,
		left:       left,
		right:      right,
		satL:       satL,
		satR:       satR,
		paramBox:   paramBox,
		fbBox:      fbBox,
	}, nil
}

// SampleRate returns sample rate in Hz.
func (d *StereoDelay) SampleRate() float64 { return d.sampleRate }

// Params returns the resident delay parameters.
func (d *StereoDelay) Params() DelayParams { return d.params }

// FeedbackParams returns the resident saturation parameters.
func (d *StereoDelay) FeedbackParams() FeedbackParams { return d.fb }

// SetParams applies delay parameters directly, bypassing the mailbox.
func (d *StereoDelay) SetParams(p DelayParams) {
	p = p.normalized()
	d.params = p

	l, r := p.TimeL*d.sampleRate, p.TimeR*d.sampleRate
	if p.Pitch {
		d.left.SetTimeSmooth(l)
		d.right.SetTimeSmooth(r)
		return
	}
	d.left.SetTime(l)
	d.right.SetTime(r)
}

// SetFeedbackParams applies saturation parameters directly, bypassing the
// mailbox.
func (d *StereoDelay) SetFeedbackParams(p FeedbackParams) {
	p = p.normalized()
	d.fb = p

	for _, s := range [...]*Saturater{d.satL, d.satR} {
		s.drive = p.Drive
		_ = s.SetMode(p.Mode)
	}
}

// Process runs one frame through the delay.
func (d *StereoDelay) Process(in core.StereoFrame) core.StereoFrame {
	if p, ok := d.paramBox.TryReceive(); ok {
		d.SetParams(p)
	}
	if p, ok := d.fbBox.TryReceive(); ok {
		d.SetFeedbackParams(p)
	}

	if d.params.Bypass {
		return in
	}

	return core.StereoFrame{
		L: d.processChannel(d.left, d.satL, in.L),
		R: d.processChannel(d.right, d.satR, in.R),
	}
}

// ProcessInPlace runs buf through the delay in place.
func (d *StereoDelay) ProcessInPlace(buf []core.StereoFrame) {
	for i := range buf {
		buf[i] = d.Process(buf[i])
	}
}

// Reset clears delay lines and saturation memory.
func (d *StereoDelay) Reset() {
	d.left.Reset()
	d.right.Reset()
	d.satL.Reset()
	d.satR.Reset()
}

func (d *StereoDelay) processChannel(line *delay.Line, sat *Saturater, dry float32) float32 {
	wet := line.Read()
	if d.fb.Saturate {
		wet = sat.Process(wet) * feedbackSafety
	}

	line.Write(core.FlushDenormals(dry + wet*float32(d.params.Feedback)))
	line.Advance()

	mix := float32(d.params.Mix)

	return dry*(1-mix) + wet*mix
}

func clampOr(v, lo, hi, fallback float64) float64 {
	if math.IsNaN(v) {
		return fallback
	}
	return core.Clamp(v, lo, hi)
}
