// Package granular implements a granular synthesizer over an in-memory
// sample buffer.
//
// An [Engine] owns the decoded source, a fixed pool of [Grain] slots and a
// scheduler. The scheduler is either a timer firing at Params.Density or a
// [Sequencer] that turns externally supplied 2D points into spawn events.
// Each call to [Engine.Process] drains pending control messages, advances
// the scheduler, retires finished grains, spawns new ones while the gate is
// open and sums the windowed, panned output of every live grain.
//
// Control flows in through [core.Mailbox] values: the audio goroutine only
// ever polls them, so a control goroutine can publish [Params], the gate and
// trigger points at any time without blocking playback. Changing the source
// file hands decoding to a background [Loader]; the new buffer is swapped in
// on a later frame.
package granular
