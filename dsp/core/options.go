package core

// ProcessorConfig defines common block-rendering settings shared by the
// engine host and the playback producer.
type ProcessorConfig struct {
	// SampleRate is the output rate. Zero keeps the source's native rate.
	SampleRate float64
	BlockSize  int
	// QueueFrames is the playback backlog, in frames, below which the
	// producer renders another block.
	QueueFrames int
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns sensible defaults for streaming use.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		BlockSize:   512,
		QueueFrames: 4096,
	}
}

// WithSampleRate sets the output sample rate. Non-positive values keep the
// source's native rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the processing block size.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithQueueFrames sets the playback backlog threshold in frames.
func WithQueueFrames(frames int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if frames > 0 {
			cfg.QueueFrames = frames
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.QueueFrames < cfg.BlockSize {
		cfg.QueueFrames = cfg.BlockSize
	}
	return cfg
}
