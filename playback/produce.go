package playback

import (
	"context"
	"fmt"
	"time"

	"github.com/cwbudde/algo-grain/dsp/core"
)

const producerPoll = time.Millisecond

// Renderer fills a block with consecutive frames.
type Renderer interface {
	ProcessBlock(buf []core.StereoFrame)
}

// Produce renders blockSize frames at a time into q while fewer than
// threshold frames are buffered. It returns when ctx is done, with the
// context's error.
func Produce(ctx context.Context, r Renderer, q *Queue, blockSize, threshold int) error {
	if blockSize <= 0 {
		return fmt.Errorf("block size must be > 0: %d", blockSize)
	}
	if threshold < blockSize {
		threshold = blockSize
	}

	block := make([]core.StereoFrame, blockSize)
	ticker := time.NewTicker(producerPoll)
	defer ticker.Stop()

	for {
		for q.Buffered() < threshold {
			if err := ctx.Err(); err != nil {
				return err
			}
			r.ProcessBlock(block)
			q.WriteFrames(block)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
