//go:build headless

package playback

import "errors"

// ErrNoDevice is returned by OpenDevice in headless builds.
var ErrNoDevice = errors.New("playback: built without audio output")

// Device is unavailable in headless builds.
type Device struct{}

// OpenDevice always fails in headless builds.
func OpenDevice(sampleRate int, q *Queue) (*Device, error) {
	return nil, ErrNoDevice
}

// Play does nothing.
func (d *Device) Play() {}

// Close does nothing.
func (d *Device) Close() error { return nil }
