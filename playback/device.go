//go:build !headless

package playback

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

const deviceBufferSize = 20 // milliseconds

// Device plays a Queue on the default output.
type Device struct {
	ctx    *oto.Context
	player *oto.Player
	mu     sync.Mutex
}

// OpenDevice opens the default output at sampleRate and attaches q to it.
// Only one device may be opened per process.
func OpenDevice(sampleRate int, q *Queue) (*Device, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("device sample rate must be > 0: %d", sampleRate)
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   deviceBufferSize * time.Millisecond,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	return &Device{
		ctx:    ctx,
		player: ctx.NewPlayer(q),
	}, nil
}

// Play starts pulling from the queue.
func (d *Device) Play() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.player != nil {
		d.player.Play()
	}
}

// Close stops playback.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.player == nil {
		return nil
	}
	err := d.player.Close()
	d.player = nil
	return err
}
