// Package resample converts sample rates with a polyphase FIR filter.
//
// Sources are decoded at whatever rate they were recorded with. When the
// render or device rate differs, Frames converts a whole stereo buffer once
// at load time, so the audio path never resamples.
//
//	mode            taps/phase   nominal stopband
//	QualityFast     16           ~55 dB
//	QualityBalanced 32           ~75 dB
//	QualityBest     64           ~90 dB
package resample
