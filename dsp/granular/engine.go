package granular

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-grain/dsp/core"
	"github.com/cwbudde/algo-grain/dsp/effects"
	"github.com/cwbudde/algo-grain/source"
)

const (
	defaultMaxGrains  = 64
	defaultSeed       = 1
	defaultSampleRate = 44100
	maxEngineGrains   = 4096
)

// ErrNotInitialized is returned by operations that need a loaded source.
var ErrNotInitialized = errors.New("granular: engine not initialized")

// Option configures an Engine.
type Option func(*engineConfig) error

type engineConfig struct {
	stride     int
	maxGrains  int
	rng        *rand.Rand
	decoder    source.Decoder
	logger     *slog.Logger
	delay      *effects.StereoDelay
	params     Params
	gate       bool
	syncReload bool
	seqOpts    []SequencerOption
}

// WithStride sets how many source frames each grain advances per output
// frame.
func WithStride(stride int) Option {
	return func(cfg *engineConfig) error {
		if stride < 1 {
			return fmt.Errorf("grain stride must be >= 1: %d", stride)
		}
		cfg.stride = stride
		return nil
	}
}

// WithMaxGrains sets the number of grain slots.
func WithMaxGrains(n int) Option {
	return func(cfg *engineConfig) error {
		if n < 1 || n > maxEngineGrains {
			return fmt.Errorf("max grains must be in [1, %d]: %d", maxEngineGrains, n)
		}
		cfg.maxGrains = n
		return nil
	}
}

// WithSeed seeds the engine's random source.
func WithSeed(seed int64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

// WithRand sets the random source used for spread, pan and point picks.
func WithRand(rng *rand.Rand) Option {
	return func(cfg *engineConfig) error {
		if rng == nil {
			return fmt.Errorf("engine rand must not be nil")
		}
		cfg.rng = rng
		return nil
	}
}

// WithDecoder replaces the file decoder.
func WithDecoder(d source.Decoder) Option {
	return func(cfg *engineConfig) error {
		if d == nil {
			return fmt.Errorf("decoder must not be nil")
		}
		cfg.decoder = d
		return nil
	}
}

// WithLogger sets the logger used off the audio path.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *engineConfig) error {
		if logger != nil {
			cfg.logger = logger
		}
		return nil
	}
}

// WithDelay routes the grain sum through d.
func WithDelay(d *effects.StereoDelay) Option {
	return func(cfg *engineConfig) error {
		cfg.delay = d
		return nil
	}
}

// WithParams sets the parameters in effect before the first message.
func WithParams(p Params) Option {
	return func(cfg *engineConfig) error {
		if err := p.Validate(); err != nil {
			return err
		}
		cfg.params = p
		return nil
	}
}

// WithGate sets the initial gate state. The gate starts open.
func WithGate(on bool) Option {
	return func(cfg *engineConfig) error {
		cfg.gate = on
		return nil
	}
}

// WithSyncReload decodes new sources on the processing goroutine instead
// of the background loader. Offline renders use it so that the swap lands
// on a deterministic frame.
func WithSyncReload() Option {
	return func(cfg *engineConfig) error {
		cfg.syncReload = true
		return nil
	}
}

// WithSequencerOptions passes options to the sequencer in sequencer mode.
func WithSequencerOptions(opts ...SequencerOption) Option {
	return func(cfg *engineConfig) error {
		cfg.seqOpts = append(cfg.seqOpts, opts...)
		return nil
	}
}

// Engine is the granular synthesizer. Process and ProcessBlock must be
// called from a single goroutine; control reaches the engine only through
// the mailboxes passed to NewEngine.
type Engine struct {
	path       string
	samples    []core.StereoFrame
	sampleRate int
	ready      bool

	params     Params
	gate       bool
	scan       bool
	spawnTimer int
	stride     int

	pool      grainPool
	sequencer *Sequencer
	events    []Event
	delay     *effects.StereoDelay
	rng       *rand.Rand

	paramBox *core.Mailbox[Params]
	gateBox  *core.Mailbox[bool]

	decoder    source.Decoder
	loader     *Loader
	syncReload bool
	logger     *slog.Logger
}

// NewEngine creates an engine for the source at path. Any mailbox may be
// nil. A non-nil points mailbox selects sequencer mode; otherwise grains
// are spawned by a timer at Params.Density.
func NewEngine(
	path string,
	params *core.Mailbox[Params],
	gate *core.Mailbox[bool],
	points *core.Mailbox[[]Point],
	opts ...Option,
) (*Engine, error) {
	cfg := engineConfig{
		stride:    DefaultStride,
		maxGrains: defaultMaxGrains,
		params:    DefaultParams(),
		gate:      true,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	if cfg.rng == nil {
		cfg.rng = rand.New(rand.NewSource(defaultSeed))
	}
	if cfg.decoder == nil {
		cfg.decoder = source.FileDecoder{Logger: cfg.logger}
	}

	e := &Engine{
		path:       path,
		sampleRate: defaultSampleRate,
		params:     cfg.params,
		gate:       cfg.gate,
		stride:     cfg.stride,
		pool:       newGrainPool(cfg.maxGrains),
		delay:      cfg.delay,
		rng:        cfg.rng,
		paramBox:   params,
		gateBox:    gate,
		decoder:    cfg.decoder,
		syncReload: cfg.syncReload,
		logger:     cfg.logger,
	}
	e.scan = e.params.Scan == ScanOn
	e.spawnTimer = e.spawnInterval()

	if points != nil {
		seqOpts := append([]SequencerOption{WithSequencerRand(cfg.rng)}, cfg.seqOpts...)
		seq, err := NewSequencer(defaultSampleRate, e.params.Density, nil, points, seqOpts...)
		if err != nil {
			return nil, err
		}
		e.sequencer = seq
		e.events = make([]Event, 0, cap(seq.events))
	}

	if !e.syncReload {
		e.loader = NewLoader(e.decoder, e.logger)
	}

	return e, nil
}

// Init decodes the initial source and starts the background loader.
func (e *Engine) Init() error {
	buf, err := e.decoder.Decode(e.path)
	if err != nil {
		return fmt.Errorf("granular: load %s: %w", e.path, err)
	}

	e.ready = false
	e.swapSource(buf)
	e.ready = true
	if e.loader != nil {
		e.loader.SetTargetRate(e.sampleRate)
		e.loader.Start()
	}

	e.logger.Info("engine initialized",
		"path", e.path,
		"sampleRate", e.sampleRate,
		"frames", len(e.samples),
		"grains", e.pool.capacity(),
		"sequencer", e.sequencer != nil,
	)

	return nil
}

// Initialized reports whether Init succeeded.
func (e *Engine) Initialized() bool { return e.ready }

// BufferSize returns the number of frames in the active source.
func (e *Engine) BufferSize() (int, error) {
	if !e.ready {
		return 0, ErrNotInitialized
	}
	return len(e.samples), nil
}

// SampleRate returns the output rate, fixed by the source loaded in Init.
// Later sources are converted to it.
func (e *Engine) SampleRate() (int, error) {
	if !e.ready {
		return 0, ErrNotInitialized
	}
	return e.sampleRate, nil
}

// Path returns the path of the requested source.
func (e *Engine) Path() string { return e.path }

// Params returns the parameters currently in effect.
func (e *Engine) Params() Params { return e.params }

// Gate reports whether spawning is enabled.
func (e *Engine) Gate() bool { return e.gate }

// Scanning reports whether Start advances while gated.
func (e *Engine) Scanning() bool { return e.scan }

// ActiveGrains returns the number of occupied grain slots.
func (e *Engine) ActiveGrains() int { return e.pool.active() }

// DroppedGrains returns how many spawns found no free slot.
func (e *Engine) DroppedGrains() int { return e.pool.dropped }

// SetDelay routes the grain sum through d, or removes the delay when d is
// nil. Call it before processing starts or from the processing goroutine.
func (e *Engine) SetDelay(d *effects.StereoDelay) { e.delay = d }

// Sequencer returns the sequencer, or nil in timer mode.
func (e *Engine) Sequencer() *Sequencer { return e.sequencer }

// Process renders one stereo frame.
func (e *Engine) Process() core.StereoFrame {
	e.receive()

	due := 0
	if e.sequencer != nil {
		e.sequencer.Update()
		e.events = e.sequencer.Drain(e.events[:0])
	} else if e.gate {
		e.spawnTimer--
		if e.spawnTimer <= 0 {
			due = 1
			e.spawnTimer = e.spawnInterval()
		}
	}

	e.pool.compact()

	if e.gate {
		if e.sequencer != nil {
			n := len(e.samples)
			for _, ev := range e.events {
				e.spawn(int(ev.Start*float32(n)), ev.Pan)
			}
		} else if due > 0 {
			e.spawn(e.params.Start, 0)
		}

		if e.scan && len(e.samples) > 0 {
			e.params.Start = (e.params.Start + 1) % len(e.samples)
		}
	}

	active := e.pool.active()
	out := e.pool.sum(e.samples)

	norm := float32(1)
	if active > 1 {
		norm = float32(active)
	}
	out = out.Scale(e.params.Gain / norm)

	if e.delay != nil {
		out = e.delay.Process(out)
	}

	return out
}

// ProcessBlock fills buf with consecutive frames.
func (e *Engine) ProcessBlock(buf []core.StereoFrame) {
	for i := range buf {
		buf[i] = e.Process()
	}
}

// Reset retires every grain and clears the delay tail.
func (e *Engine) Reset() {
	e.pool.reset()
	e.spawnTimer = e.spawnInterval()
	if e.delay != nil {
		e.delay.Reset()
	}
}

// Close stops the background loader.
func (e *Engine) Close() error {
	if e.loader != nil {
		e.loader.Close()
	}
	return nil
}

func (e *Engine) receive() {
	if p, ok := e.paramBox.TryReceive(); ok {
		e.applyParams(p)
	}

	if g, ok := e.gateBox.TryReceive(); ok {
		e.gate = g
	}

	if e.loader != nil {
		if buf, ok := e.loader.TryResult(); ok {
			e.swapSource(buf)
		}
	}
}

func (e *Engine) applyParams(p Params) {
	p = p.normalized()

	switch p.Scan {
	case ScanOn:
		e.scan = true
	case ScanOff:
		e.scan = false
	}

	if p.Source != "" && p.Source != e.path {
		e.requestSource(p.Source)
	}

	e.params = p
	if len(e.samples) > 0 {
		e.params.Start %= len(e.samples)
	}

	if e.sequencer != nil {
		e.sequencer.SetRate(p.Density)
	}
	if iv := e.spawnInterval(); e.spawnTimer > iv {
		e.spawnTimer = iv
	}
}

func (e *Engine) requestSource(path string) {
	e.path = path

	if e.loader != nil {
		e.loader.Request(path)
		return
	}

	buf, err := e.decoder.Decode(path)
	if err == nil && e.ready {
		buf, err = conformRate(buf, e.sampleRate)
	}
	if err != nil {
		e.logger.Error("source load failed, keeping current buffer", "path", path, "error", err)
		return
	}
	e.swapSource(buf)
}

// swapSource replaces the sample buffer. Live grains keep playing and wrap
// against the new length. The first buffer sets the output rate; later ones
// arrive already converted to it.
func (e *Engine) swapSource(buf *source.Buffer) {
	if buf == nil || len(buf.Frames) == 0 {
		return
	}

	e.samples = buf.Frames
	if !e.ready && buf.SampleRate > 0 {
		e.sampleRate = buf.SampleRate
	}
	e.params.Start %= len(e.samples)

	if e.sequencer != nil {
		e.sequencer.SetSampleRate(float64(e.sampleRate))
	}
	if iv := e.spawnInterval(); e.spawnTimer > iv {
		e.spawnTimer = iv
	}
}

func (e *Engine) spawn(start int, pan float32) {
	if e.params.GrainSpread > 0 {
		start += e.rng.Intn(e.params.GrainSpread + 1)
	}
	if e.params.PanSpread > 0 {
		pan += (e.rng.Float32()*2 - 1) * e.params.PanSpread
	}

	g := NewGrain(e.params.GrainLength, start, pan)
	g.SetStride(e.stride)
	g.SetEnvelope(e.params.Envelope, e.params.Breakpoint)
	e.pool.spawn(g)
}

func (e *Engine) spawnInterval() int {
	n := int(math.Round(float64(e.sampleRate) / e.params.Density))
	if n < 1 {
		n = 1
	}
	return n
}
