// Command granulate plays or renders a granular texture from a sound file.
//
// Usage:
//
//	granulate [flags] source.(wav|mp3)
//
// Without -render the texture plays on the default audio output and the
// keyboard controls the engine. With -render the engine runs offline for
// -seconds and writes a 16-bit WAV file. -rate converts the source to a
// fixed output rate at load time.
//
// Examples:
//
//	granulate -density 12 -length 8000 -spread 20000 loop.wav
//	granulate -points "0.2,0.9;0.8,0.4" -density 6 loop.wav
//	granulate -render out.wav -seconds 20 -analyze -saturate -mode tube loop.mp3
//	granulate -midi /dev/snd/midiC1D0 loop.wav
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/cwbudde/algo-grain/dsp/core"
	"github.com/cwbudde/algo-grain/dsp/dither"
	"github.com/cwbudde/algo-grain/dsp/effects"
	"github.com/cwbudde/algo-grain/dsp/granular"
	"github.com/cwbudde/algo-grain/dsp/resample"
	"github.com/cwbudde/algo-grain/dsp/window"
)

type options struct {
	source string

	grain  granular.Params
	delay  effects.DelayParams
	fb     effects.FeedbackParams
	points []granular.Point
	canvas float64

	stride int
	grains int
	seed   int64

	proc    core.ProcessorConfig
	quality resample.Quality

	render  string
	seconds float64
	analyze bool
	dither  []dither.Option
	midi    string
}

func main() {
	density := flag.Float64("density", 1, "grain spawn rate in Hz [0.1, 48]")
	length := flag.Int("length", 44000, "grain length in source frames")
	spread := flag.Int("spread", 0, "random start offset range in frames")
	panSpread := flag.Float64("pan-spread", 0, "random pan range [0, 1]")
	gain := flag.Float64("gain", 0.7, "output gain [0, 2]")
	start := flag.Int("start", 0, "base start offset in frames")
	scan := flag.Bool("scan", false, "advance the start offset while the gate is open")
	envelope := flag.String("envelope", "raised-cosine", "grain envelope: raised-cosine, linear, exponential")
	breakpoint := flag.Float64("breakpoint", 0.5, "attack/decay split for linear and exponential envelopes")
	stride := flag.Int("stride", granular.DefaultStride, "source frames per output frame")
	grains := flag.Int("grains", 64, "grain slots")
	seed := flag.Int64("seed", 1, "random seed, 0 seeds from the clock")

	mix := flag.Float64("mix", 0.5, "delay wet amount [0, 1]")
	feedback := flag.Float64("feedback", 0.2, "delay feedback [0, 0.999]")
	timeL := flag.Float64("time-l", 2.45625, "left delay time in seconds")
	timeR := flag.Float64("time-r", 1.53312, "right delay time in seconds")
	bypass := flag.Bool("bypass", false, "bypass the delay")
	pitch := flag.Bool("pitch", false, "glide delay time changes")
	saturate := flag.Bool("saturate", false, "saturate the delay feedback")
	mode := flag.String("mode", "tape", "saturation mode: tape, tube, transistor")
	drive := flag.Float64("drive", 1, "saturation drive")

	points := flag.String("points", "", `sequencer points "x,y;x,y;..." (enables sequencer mode)`)
	canvas := flag.Float64("canvas", 0, "width of the point canvas, 0 for normalized coordinates")

	rate := flag.Float64("rate", 0, "output sample rate, 0 keeps the source rate")
	qualityName := flag.String("resample", "balanced", "resampling quality: fast, balanced, best")
	block := flag.Int("block", 512, "render block size in frames")
	queue := flag.Int("queue", 4096, "playback backlog in frames")
	render := flag.String("render", "", "render offline to this WAV file")
	seconds := flag.Float64("seconds", 10, "offline render length in seconds")
	analyze := flag.Bool("analyze", false, "print a level and spectrum summary after rendering")
	ditherName := flag.String("dither", "triangular", "render dither: none, rectangular, triangular")
	shaping := flag.Bool("shaping", false, "first-order noise shaping on render")
	midiPath := flag.String("midi", "", "raw MIDI device or file to read control messages from")
	verbose := flag.Bool("v", false, "debug logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: granulate [flags] source.(wav|mp3)\n\n")
		fmt.Fprintf(os.Stderr, "Plays or renders a granular texture from a sound file.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  granulate -density 12 -length 8000 loop.wav\n")
		fmt.Fprintf(os.Stderr, "  granulate -points \"0.2,0.9;0.8,0.4\" loop.wav\n")
		fmt.Fprintf(os.Stderr, "  granulate -render out.wav -seconds 20 -analyze loop.mp3\n")
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	shape, err := window.ParseShape(*envelope)
	if err != nil {
		fatal(logger, err)
	}
	satMode, err := effects.ParseSaturationMode(*mode)
	if err != nil {
		fatal(logger, err)
	}
	ditherType, err := dither.ParseDitherType(*ditherName)
	if err != nil {
		fatal(logger, err)
	}
	quality, err := resample.ParseQuality(*qualityName)
	if err != nil {
		fatal(logger, err)
	}

	opts := options{
		source: flag.Arg(0),
		grain: granular.Params{
			GrainLength: *length,
			GrainSpread: *spread,
			PanSpread:   float32(*panSpread),
			Gain:        float32(*gain),
			Start:       *start,
			Density:     *density,
			Envelope:    shape,
			Breakpoint:  *breakpoint,
		},
		delay: effects.DelayParams{
			Mix:      *mix,
			Feedback: *feedback,
			TimeL:    *timeL,
			TimeR:    *timeR,
			Bypass:   *bypass,
			Pitch:    *pitch,
		},
		fb: effects.FeedbackParams{
			Drive:    *drive,
			Saturate: *saturate,
			Mode:     satMode,
		},
		canvas: *canvas,
		stride: *stride,
		grains: *grains,
		seed:   *seed,
		proc: core.ApplyProcessorOptions(
			core.WithSampleRate(*rate),
			core.WithBlockSize(*block),
			core.WithQueueFrames(*queue),
		),
		quality: quality,
		render:  *render,
		seconds: *seconds,
		analyze: *analyze,
		midi:    *midiPath,
	}
	if *scan {
		opts.grain.Scan = granular.ScanOn
	}
	opts.dither = []dither.Option{dither.WithDitherType(ditherType)}
	if *shaping {
		opts.dither = append(opts.dither, dither.WithShaper(dither.ShapeFirstOrder))
	}
	if opts.seed == 0 {
		opts.seed = time.Now().UnixNano()
	}

	if err := opts.grain.Validate(); err != nil {
		fatal(logger, err)
	}
	if err := opts.delay.Validate(); err != nil {
		fatal(logger, err)
	}
	if err := opts.fb.Validate(); err != nil {
		fatal(logger, err)
	}
	if *points != "" {
		opts.points, err = parsePoints(*points)
		if err != nil {
			fatal(logger, err)
		}
	}
	if opts.seconds <= 0 || math.IsNaN(opts.seconds) {
		fatal(logger, fmt.Errorf("seconds must be > 0: %f", opts.seconds))
	}

	if opts.render != "" {
		err = runOffline(opts, logger)
	} else {
		err = runLive(opts, logger)
	}
	if err != nil {
		fatal(logger, err)
	}
}

func fatal(logger *slog.Logger, err error) {
	logger.Error("granulate failed", "error", err)
	os.Exit(1)
}
