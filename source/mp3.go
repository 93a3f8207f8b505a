package source

import (
	"encoding/binary"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

const mp3Channels = 2

// decodeMP3 decodes the whole stream. go-mp3 always yields signed 16-bit
// little-endian stereo.
func decodeMP3(r io.Reader) (*Buffer, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(decoder)
	if err != nil {
		return nil, err
	}

	samples := make([]float32, len(raw)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(raw[2*i:]))
		samples[i] = float32(v) / 32768
	}

	return &Buffer{
		Frames:     framesFromInterleaved(samples, mp3Channels),
		SampleRate: decoder.SampleRate(),
	}, nil
}
