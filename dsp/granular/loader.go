package granular

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-grain/dsp/core"
	"github.com/cwbudde/algo-grain/dsp/resample"
	"github.com/cwbudde/algo-grain/source"
)

const defaultLoaderPoll = 5 * time.Millisecond

// Loader decodes source files off the audio goroutine.
//
// Request and TryResult only touch mailboxes, so both are safe to call
// from the audio path. A request made while a decode is running is picked
// up after it finishes; intermediate requests are skipped.
type Loader struct {
	decoder source.Decoder
	logger  *slog.Logger
	poll    time.Duration

	requests *core.Mailbox[string]
	results  *core.Mailbox[*source.Buffer]
	failures atomic.Int64
	rate     atomic.Int64

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// NewLoader returns a stopped loader. A nil logger discards output.
func NewLoader(decoder source.Decoder, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Loader{
		decoder:  decoder,
		logger:   logger,
		poll:     defaultLoaderPoll,
		requests: core.NewMailbox[string](),
		results:  core.NewMailbox[*source.Buffer](),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the decode goroutine. Calling it again has no effect.
func (l *Loader) Start() {
	l.startOnce.Do(func() {
		go l.run()
	})
}

// SetTargetRate makes every later result arrive at sampleRate. Zero
// delivers buffers at their native rate.
func (l *Loader) SetTargetRate(sampleRate int) {
	l.rate.Store(int64(max(sampleRate, 0)))
}

// Request asks for path to be decoded.
func (l *Loader) Request(path string) {
	l.requests.Send(path)
}

// TryResult takes the most recently decoded buffer, if any.
func (l *Loader) TryResult() (*source.Buffer, bool) {
	return l.results.TryReceive()
}

// Failures returns the number of requests that failed to decode.
func (l *Loader) Failures() int64 {
	return l.failures.Load()
}

// Close stops the goroutine and waits for a running decode to finish.
func (l *Loader) Close() {
	l.stopOnce.Do(func() {
		close(l.stop)
	})

	// Start may never have been called.
	l.startOnce.Do(func() {
		close(l.done)
	})
	<-l.done
}

func (l *Loader) run() {
	defer close(l.done)

	ticker := time.NewTicker(l.poll)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
		}

		path, ok := l.requests.TryReceive()
		if !ok {
			continue
		}

		l.logger.Info("loading source", "path", path)
		buf, err := l.decoder.Decode(path)
		if err == nil {
			buf, err = conformRate(buf, int(l.rate.Load()))
		}
		if err != nil {
			l.failures.Add(1)
			l.logger.Error("source load failed, keeping current buffer", "path", path, "error", err)
			continue
		}

		l.results.Send(buf)
	}
}

// conformRate returns buf converted to sampleRate. Buffers already at that
// rate, or a zero rate, pass through.
func conformRate(buf *source.Buffer, sampleRate int) (*source.Buffer, error) {
	if buf == nil || sampleRate <= 0 || buf.SampleRate <= 0 || buf.SampleRate == sampleRate {
		return buf, nil
	}

	frames, err := resample.Frames(buf.Frames, buf.SampleRate, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("resample %s: %w", buf.Path, err)
	}

	return &source.Buffer{Path: buf.Path, Frames: frames, SampleRate: sampleRate}, nil
}
