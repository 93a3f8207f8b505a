package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/cwbudde/algo-grain/control"
	"github.com/cwbudde/algo-grain/dsp/core"
	"github.com/cwbudde/algo-grain/dsp/effects"
	"github.com/cwbudde/algo-grain/dsp/granular"
	"github.com/cwbudde/algo-grain/measure/analysis"
	"github.com/cwbudde/algo-grain/playback"
	"github.com/cwbudde/algo-grain/source"
)

// newEngine builds and initializes an engine wired to the surface, with the
// stereo delay attached at the source's sample rate.
func newEngine(opts options, surface *control.Surface, logger *slog.Logger, extra ...granular.Option) (*granular.Engine, int, error) {
	var points *core.Mailbox[[]granular.Point]
	var seqOpts []granular.SequencerOption
	if len(opts.points) > 0 {
		points = surface.PointsBox()
		if opts.canvas > 0 {
			seqOpts = append(seqOpts, granular.WithCanvasWidth(float32(opts.canvas)))
		}
	}

	engineOpts := []granular.Option{
		granular.WithParams(opts.grain),
		granular.WithStride(opts.stride),
		granular.WithMaxGrains(opts.grains),
		granular.WithSeed(opts.seed),
		granular.WithLogger(logger),
		granular.WithDecoder(source.FileDecoder{
			Logger:     logger,
			TargetRate: int(opts.proc.SampleRate),
			Quality:    opts.quality,
		}),
		granular.WithSequencerOptions(seqOpts...),
		granular.WithGate(surface.GateOn()),
	}
	engineOpts = append(engineOpts, extra...)

	engine, err := granular.NewEngine(opts.source, surface.GrainBox(), surface.GateBox(), points, engineOpts...)
	if err != nil {
		return nil, 0, err
	}
	if err := engine.Init(); err != nil {
		engine.Close()
		return nil, 0, err
	}

	sampleRate, err := engine.SampleRate()
	if err != nil {
		engine.Close()
		return nil, 0, err
	}

	delay, err := effects.NewStereoDelay(float64(sampleRate), opts.delay, opts.fb, surface.DelayBox(), surface.FeedbackBox())
	if err != nil {
		engine.Close()
		return nil, 0, err
	}
	engine.SetDelay(delay)

	if len(opts.points) > 0 {
		surface.SetPoints(opts.points)
	}

	return engine, sampleRate, nil
}

func runOffline(opts options, logger *slog.Logger) error {
	surface := control.NewSurface(opts.grain, opts.delay, opts.fb)

	engine, sampleRate, err := newEngine(opts, surface, logger, granular.WithSyncReload(), granular.WithGate(true))
	if err != nil {
		return err
	}
	defer engine.Close()

	frames := make([]core.StereoFrame, int(math.Ceil(opts.seconds*float64(sampleRate))))
	for off := 0; off < len(frames); off += opts.proc.BlockSize {
		end := min(off+opts.proc.BlockSize, len(frames))
		engine.ProcessBlock(frames[off:end])
	}

	if err := source.WriteWAV(opts.render, frames, sampleRate, opts.dither...); err != nil {
		return err
	}
	logger.Info("rendered",
		"path", opts.render,
		"frames", len(frames),
		"sampleRate", sampleRate,
		"droppedGrains", engine.DroppedGrains(),
	)

	if !opts.analyze {
		return nil
	}

	res, err := analysis.Analyze(frames, analysis.Config{SampleRate: float64(sampleRate)})
	if err != nil {
		return err
	}
	printAnalysis(os.Stdout, res)

	return nil
}

func printAnalysis(w io.Writer, res analysis.Result) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Duration\t%.2f s\n", res.Seconds)
	fmt.Fprintf(tw, "Peak L/R\t%.4f / %.4f\n", res.PeakL, res.PeakR)
	fmt.Fprintf(tw, "RMS L/R\t%.4f / %.4f\n", res.RMSL, res.RMSR)
	fmt.Fprintf(tw, "Peak\t%.2f dBFS\n", res.PeakDB)
	fmt.Fprintf(tw, "RMS\t%.2f dBFS\n", res.RMSDB)
	fmt.Fprintf(tw, "Dominant\t%.1f Hz (%.1f%% of power)\n", res.DominantFreq, 100*res.DominantPower)
	tw.Flush()
}

func runLive(opts options, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	surface := control.NewSurface(opts.grain, opts.delay, opts.fb)

	engine, sampleRate, err := newEngine(opts, surface, logger)
	if err != nil {
		return err
	}
	defer engine.Close()

	queue := playback.NewQueue(opts.proc.QueueFrames)
	device, err := playback.OpenDevice(sampleRate, queue)
	if err != nil {
		return err
	}
	defer device.Close()

	var midiIn *os.File
	if opts.midi != "" {
		midiIn, err = os.Open(opts.midi)
		if err != nil {
			return fmt.Errorf("open midi input: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return playback.Produce(ctx, engine, queue, opts.proc.BlockSize, opts.proc.QueueFrames)
	})

	if midiIn != nil {
		g.Go(func() error {
			<-ctx.Done()
			return midiIn.Close()
		})
		g.Go(func() error {
			err := control.ReadMIDI(ctx, midiIn, surface, logger)
			if errors.Is(err, os.ErrClosed) {
				return nil
			}
			return err
		})
	}

	restore, err := startKeyboard(surface, cancel, logger)
	if err != nil {
		return err
	}
	defer restore()

	device.Play()
	logger.Info("playing", "source", opts.source, "sampleRate", sampleRate, "sequencer", len(opts.points) > 0)

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	logger.Info("stopped", "underruns", queue.Underruns(), "droppedGrains", engine.DroppedGrains())
	return err
}

// startKeyboard puts the terminal into raw mode and dispatches key presses
// to the surface until 'q'. Without a terminal the texture plays until
// interrupted.
func startKeyboard(surface *control.Surface, quit context.CancelFunc, logger *slog.Logger) (func(), error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		logger.Warn("stdin is not a terminal, keyboard control disabled")
		return func() {}, nil
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("set raw mode: %w", err)
	}

	fmt.Fprintf(os.Stderr, "%s\r\n", rawLines(control.KeyHelp))

	// The reader exits with the process; a blocked read cannot be
	// interrupted portably.
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				quit()
				return
			}
			if n == 0 {
				continue
			}

			action := surface.HandleKey(buf[0])
			if action == control.ActionQuit {
				quit()
				return
			}
			if action != control.ActionNone {
				fmt.Fprintf(os.Stderr, "%s\r\n", status(surface, action))
			}
		}
	}()

	return func() {
		_ = term.Restore(fd, oldState)
	}, nil
}

func status(s *control.Surface, action control.Action) string {
	p := s.Grain()
	d := s.Delay()
	f := s.Feedback()

	return fmt.Sprintf("%-8s gate=%t density=%.2fHz length=%d spread=%d gain=%.2f env=%s | mix=%.2f fb=%.3f bypass=%t pitch=%t sat=%t/%s",
		action, s.GateOn(), p.Density, p.GrainLength, p.GrainSpread, p.Gain, p.Envelope,
		d.Mix, d.Feedback, d.Bypass, d.Pitch, f.Saturate, f.Mode)
}

// rawLines converts line feeds for a terminal in raw mode.
func rawLines(s string) string {
	out := make([]byte, 0, len(s)+8)
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, '\r')
		}
		out = append(out, s[i])
	}
	return string(out)
}
