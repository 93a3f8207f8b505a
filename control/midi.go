package control

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"

	"gitlab.com/gomidi/midi/v2"
)

// Controller numbers bound by HandleMIDI.
const (
	CCDensity   = 1  // mod wheel
	CCGain      = 7  // channel volume
	CCPanSpread = 10 // pan
	CCDrive     = 71 // resonance
	CCLength    = 74 // brightness
	CCMix       = 91 // reverb send
	CCFeedback  = 93 // chorus send
)

// HandleMIDI applies one MIDI message. Note on opens the gate, note off
// closes it, and the controllers above sweep their parameter over its full
// range. Messages on any channel are accepted.
func (s *Surface) HandleMIDI(msg midi.Message) Action {
	var ch, key, vel, cc, val uint8

	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		s.SetGate(true)
		return ActionGate
	case msg.GetNoteEnd(&ch, &key):
		s.SetGate(false)
		return ActionGate
	case msg.GetControlChange(&ch, &cc, &val):
		return s.handleCC(cc, val)
	default:
		return ActionNone
	}
}

func (s *Surface) handleCC(cc, val uint8) Action {
	x := float64(val) / 127

	switch cc {
	case CCDensity:
		s.SetDensity(lerp(x, minDensityCC, maxDensityCC))
		return ActionDensity
	case CCGain:
		s.SetGain(float32(2 * x))
		return ActionGain
	case CCPanSpread:
		s.SetPanSpread(float32(x))
		return ActionSpread
	case CCDrive:
		s.SetDrive(lerp(x, minDrive, maxDrive))
		return ActionSaturate
	case CCLength:
		s.SetGrainLength(int(lerp(x, minLengthCC, maxLengthCC)))
		return ActionLength
	case CCMix:
		s.SetMix(x)
		return ActionMix
	case CCFeedback:
		s.SetFeedback(x * maxFeedback)
		return ActionFeedback
	default:
		return ActionNone
	}
}

const (
	minDensityCC = 0.1
	maxDensityCC = 48
	minLengthCC  = 441
	maxLengthCC  = 88200
)

func lerp(x, lo, hi float64) float64 {
	return lo*(1-x) + hi*x
}

// Parser splits a raw MIDI byte stream into channel voice messages. It
// honors running status and skips system messages.
type Parser struct {
	status byte
	data   [2]byte
	n      int
	inSys  bool
}

// Feed consumes one byte. It returns a complete message when b finishes
// one.
func (p *Parser) Feed(b byte) (midi.Message, bool) {
	switch {
	case b >= 0xF8:
		// Realtime bytes may appear anywhere and carry no state.
		return nil, false
	case b >= 0xF0:
		p.status = 0
		p.n = 0
		p.inSys = b == 0xF0
		return nil, false
	case b&0x80 != 0:
		p.status = b
		p.n = 0
		p.inSys = false
		return nil, false
	}

	if p.inSys || p.status == 0 {
		return nil, false
	}

	p.data[p.n] = b
	p.n++
	if p.n < dataLen(p.status) {
		return nil, false
	}

	p.n = 0
	msg := make(midi.Message, 0, 3)
	msg = append(msg, p.status)
	msg = append(msg, p.data[:dataLen(p.status)]...)
	return msg, true
}

func dataLen(status byte) int {
	switch status & 0xF0 {
	case 0xC0, 0xD0:
		return 1
	default:
		return 2
	}
}

// ReadMIDI feeds every message read from r into s until r is exhausted or
// ctx is done. Closing r is the caller's way to unblock a pending read.
func ReadMIDI(ctx context.Context, r io.Reader, s *Surface, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	br := bufio.NewReader(r)
	var p Parser
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		b, err := br.ReadByte()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		msg, ok := p.Feed(b)
		if !ok {
			continue
		}
		if action := s.HandleMIDI(msg); action != ActionNone {
			logger.Debug("midi", "message", msg.String(), "action", action.String())
		}
	}
}
