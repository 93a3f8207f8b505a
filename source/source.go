// Package source decodes audio files into the in-memory frame buffer the
// granular engine plays from, and writes rendered frames back to disk.
package source

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-grain/dsp/core"
	"github.com/cwbudde/algo-grain/dsp/resample"
)

var (
	// ErrUnsupportedFormat is returned for file extensions no decoder handles.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// ErrInvalidFile is returned when a file cannot be parsed as its format.
	ErrInvalidFile = errors.New("invalid audio file")
	// ErrEmptySource is returned when a file decodes to zero frames.
	ErrEmptySource = errors.New("audio source has no frames")
)

// Buffer is a decoded source: stereo frames at their native sample rate.
type Buffer struct {
	Path       string
	Frames     []core.StereoFrame
	SampleRate int
}

// Len returns the number of frames.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Frames)
}

// Duration returns the length in seconds.
func (b *Buffer) Duration() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Frames)) / float64(b.SampleRate)
}

// Decoder turns a path into a frame buffer.
type Decoder interface {
	Decode(path string) (*Buffer, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(path string) (*Buffer, error)

// Decode calls f(path).
func (f DecoderFunc) Decode(path string) (*Buffer, error) {
	return f(path)
}

// FileDecoder decodes .wav and .mp3 files from the local filesystem.
type FileDecoder struct {
	Logger *slog.Logger
	// TargetRate, when positive, converts every decoded source to this
	// sample rate.
	TargetRate int
	Quality    resample.Quality
}

// Decode reads and decodes the file at path. Mono sources are duplicated
// onto both channels; sources with more than two channels keep the first
// two.
func (d FileDecoder) Decode(path string) (*Buffer, error) {
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".wav" && ext != ".mp3" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	logger.Debug("decoding source", "path", path, "format", ext)

	var buf *Buffer
	switch ext {
	case ".wav":
		buf, err = decodeWAV(f)
	default:
		buf, err = decodeMP3(f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(buf.Frames) == 0 {
		return nil, fmt.Errorf("decode %s: %w", path, ErrEmptySource)
	}

	if d.TargetRate > 0 && d.TargetRate != buf.SampleRate {
		native := buf.SampleRate
		buf.Frames, err = resample.Frames(buf.Frames, native, d.TargetRate, resample.WithQuality(d.Quality))
		if err != nil {
			return nil, fmt.Errorf("resample %s: %w", path, err)
		}
		buf.SampleRate = d.TargetRate
		logger.Debug("resampled source", "path", path, "from", native, "to", d.TargetRate, "quality", d.Quality)
	}

	buf.Path = path
	logger.Debug("decoded source",
		"path", path,
		"sampleRate", buf.SampleRate,
		"frames", len(buf.Frames),
		"seconds", buf.Duration(),
	)

	return buf, nil
}

// framesFromInterleaved converts normalized interleaved samples to frames.
func framesFromInterleaved(samples []float32, channels int) []core.StereoFrame {
	if channels <= 0 {
		return nil
	}

	n := len(samples) / channels
	frames := make([]core.StereoFrame, n)
	for i := range frames {
		base := i * channels
		if channels == 1 {
			frames[i] = core.Mono(samples[base])
			continue
		}
		frames[i] = core.StereoFrame{L: samples[base], R: samples[base+1]}
	}

	return frames
}
