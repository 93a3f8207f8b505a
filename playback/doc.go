// Package playback moves rendered frames from the engine to an audio
// device.
//
// A producer goroutine renders blocks into a [Queue] whenever its backlog
// drops below a threshold. The device pulls interleaved float32 samples from
// the queue through io.Reader. Underruns are padded with silence and
// counted.
package playback
