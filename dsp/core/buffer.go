package core

// EnsureFrames returns a frame slice with the requested length, reusing buf
// capacity if possible.
func EnsureFrames(buf []StereoFrame, n int) []StereoFrame {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]StereoFrame, n)
}

// ZeroFrames sets all frames in buf to silence.
func ZeroFrames(buf []StereoFrame) {
	for i := range buf {
		buf[i] = StereoFrame{}
	}
}

// Interleave writes frames as L,R,L,R... into dst and returns the number of
// samples written. dst must hold 2*len(frames) values; extra frames are
// dropped.
func Interleave(dst []float32, frames []StereoFrame) int {
	n := len(frames)
	if len(dst)/2 < n {
		n = len(dst) / 2
	}
	for i := 0; i < n; i++ {
		dst[2*i] = frames[i].L
		dst[2*i+1] = frames[i].R
	}
	return 2 * n
}

// Split copies each channel of frames into left and right as float64.
// It returns the number of frames copied.
func Split(left, right []float64, frames []StereoFrame) int {
	n := len(frames)
	if len(left) < n {
		n = len(left)
	}
	if len(right) < n {
		n = len(right)
	}
	for i := 0; i < n; i++ {
		left[i] = float64(frames[i].L)
		right[i] = float64(frames[i].R)
	}
	return n
}
