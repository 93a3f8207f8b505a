package playback

import (
	"encoding/binary"
	"io"
	"math"
	"sync"

	"github.com/cwbudde/algo-grain/dsp/core"
)

const (
	channels       = 2
	bytesPerSample = 4
	bytesPerFrame  = channels * bytesPerSample
)

// Queue is a FIFO of interleaved stereo float32 little-endian samples.
// It is safe for one writer and one reader.
type Queue struct {
	mu        sync.Mutex
	buf       []byte
	closed    bool
	underruns int
}

// NewQueue returns an empty queue with room for capacity frames before it
// has to grow.
func NewQueue(capacity int) *Queue {
	if capacity < 0 {
		capacity = 0
	}
	return &Queue{buf: make([]byte, 0, capacity*bytesPerFrame)}
}

// WriteFrames appends frames to the queue.
func (q *Queue) WriteFrames(frames []core.StereoFrame) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	for _, f := range frames {
		q.buf = binary.LittleEndian.AppendUint32(q.buf, math.Float32bits(f.L))
		q.buf = binary.LittleEndian.AppendUint32(q.buf, math.Float32bits(f.R))
	}
}

// Read fills p with queued samples. When the queue runs dry the remainder
// of p is filled with silence so the device keeps running. After Close,
// Read drains what is left and then returns io.EOF.
func (q *Queue) Read(p []byte) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed && len(q.buf) == 0 {
		return 0, io.EOF
	}

	n := copy(p, q.buf)
	rest := copy(q.buf, q.buf[n:])
	q.buf = q.buf[:rest]

	if n < len(p) && !q.closed {
		clear(p[n:])
		q.underruns++
		n = len(p)
	}

	return n, nil
}

// Buffered returns the number of whole frames waiting to be read.
func (q *Queue) Buffered() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf) / bytesPerFrame
}

// Underruns returns how many reads were padded with silence.
func (q *Queue) Underruns() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.underruns
}

// Close marks the end of the stream. Further writes are ignored.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}
