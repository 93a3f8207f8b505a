package core

// StereoFrame is one left/right sample pair.
//
// Frames are small values and are copied freely; all operations return a
// new frame instead of mutating the receiver.
type StereoFrame struct {
	L float32
	R float32
}

// Mono returns a frame carrying the same sample on both channels.
func Mono(sample float32) StereoFrame {
	return StereoFrame{L: sample, R: sample}
}

// Scale returns the frame with both channels multiplied by gain.
func (f StereoFrame) Scale(gain float32) StereoFrame {
	return StereoFrame{L: f.L * gain, R: f.R * gain}
}

// Add returns the elementwise sum of f and o.
func (f StereoFrame) Add(o StereoFrame) StereoFrame {
	return StereoFrame{L: f.L + o.L, R: f.R + o.R}
}

// Mid returns the average of both channels.
func (f StereoFrame) Mid() float32 {
	return (f.L + f.R) * 0.5
}

// IsZero reports whether both channels are exactly zero.
func (f StereoFrame) IsZero() bool {
	return f.L == 0 && f.R == 0
}
