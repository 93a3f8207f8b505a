package source

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-grain/dsp/core"
	"github.com/cwbudde/algo-grain/dsp/dither"
)

const (
	wavBitDepth  = 16
	wavPCMFormat = 1
)

func decodeWAV(r io.ReadSeeker) (*Buffer, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, ErrInvalidFile
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, err
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth == 0 {
		return nil, fmt.Errorf("%w: unknown bit depth", ErrInvalidFile)
	}

	channels := pcm.Format.NumChannels
	if channels <= 0 {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidFile, channels)
	}

	scale := 1 / float32(int64(1)<<(bitDepth-1))
	samples := make([]float32, len(pcm.Data))
	for i, v := range pcm.Data {
		samples[i] = float32(v) * scale
	}

	return &Buffer{
		Frames:     framesFromInterleaved(samples, channels),
		SampleRate: pcm.Format.SampleRate,
	}, nil
}

// WriteWAV writes frames to path as 16-bit stereo PCM. Samples are
// quantized with seeded triangular dither unless opts say otherwise; the
// bit depth is always 16.
func WriteWAV(path string, frames []core.StereoFrame, sampleRate int, opts ...dither.Option) error {
	if sampleRate <= 0 {
		return fmt.Errorf("wav sample rate must be > 0: %d", sampleRate)
	}

	left, err := newWAVQuantizer(1, opts)
	if err != nil {
		return err
	}
	right, err := newWAVQuantizer(2, opts)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, wavBitDepth, 2, wavPCMFormat)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 2,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, 2*len(frames)),
		SourceBitDepth: wavBitDepth,
	}
	for i, fr := range frames {
		buf.Data[2*i] = left.ProcessInteger(float64(fr.L))
		buf.Data[2*i+1] = right.ProcessInteger(float64(fr.R))
	}

	if err := enc.Write(buf); err != nil {
		return err
	}

	return enc.Close()
}

func newWAVQuantizer(seed uint64, opts []dither.Option) (*dither.Quantizer, error) {
	all := make([]dither.Option, 0, len(opts)+2)
	all = append(all, dither.WithSeed(seed))
	all = append(all, opts...)
	all = append(all, dither.WithBitDepth(wavBitDepth))
	return dither.NewQuantizer(all...)
}
