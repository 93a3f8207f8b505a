package control

import "fmt"

const (
	densityStep  = 1.25
	lengthStep   = 1.25
	spreadStep   = 500
	feedbackStep = 0.05
	mixStep      = 0.05
	gainStep     = 0.05
)

// Action names what a key press did.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionGate
	ActionScan
	ActionDensity
	ActionLength
	ActionSpread
	ActionGain
	ActionEnvelope
	ActionBypass
	ActionPitch
	ActionFeedback
	ActionMix
	ActionSaturate
	ActionMode
	ActionPoints
)

var actionNames = [...]string{
	"none", "quit", "gate", "scan", "density", "length", "spread", "gain",
	"envelope", "bypass", "pitch", "feedback", "mix", "saturate", "mode", "points",
}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return actionNames[a]
}

// KeyHelp lists the keyboard bindings.
const KeyHelp = `space gate    s scan      +/- density    ]/[ grain length
./, spread    g/G gain    e envelope     b bypass
p pitch       f/F feedback x/X mix       d saturate    m mode
c clear points  q quit`

// HandleKey applies the binding for one key press.
func (s *Surface) HandleKey(key byte) Action {
	switch key {
	case 'q', 3: // ctrl-c in raw mode
		return ActionQuit
	case ' ':
		s.ToggleGate()
		return ActionGate
	case 's':
		s.ToggleScan()
		return ActionScan
	case '+', '=':
		s.ScaleDensity(densityStep)
		return ActionDensity
	case '-', '_':
		s.ScaleDensity(1 / densityStep)
		return ActionDensity
	case ']':
		s.ScaleGrainLength(lengthStep)
		return ActionLength
	case '[':
		s.ScaleGrainLength(1 / lengthStep)
		return ActionLength
	case '.':
		s.SetSpread(s.Grain().GrainSpread + spreadStep)
		return ActionSpread
	case ',':
		s.SetSpread(s.Grain().GrainSpread - spreadStep)
		return ActionSpread
	case 'g':
		s.SetGain(s.Grain().Gain + gainStep)
		return ActionGain
	case 'G':
		s.SetGain(s.Grain().Gain - gainStep)
		return ActionGain
	case 'e':
		s.CycleEnvelope()
		return ActionEnvelope
	case 'b':
		s.ToggleBypass()
		return ActionBypass
	case 'p':
		s.TogglePitch()
		return ActionPitch
	case 'f':
		s.SetFeedback(s.Delay().Feedback + feedbackStep)
		return ActionFeedback
	case 'F':
		s.SetFeedback(s.Delay().Feedback - feedbackStep)
		return ActionFeedback
	case 'x':
		s.SetMix(s.Delay().Mix + mixStep)
		return ActionMix
	case 'X':
		s.SetMix(s.Delay().Mix - mixStep)
		return ActionMix
	case 'd':
		s.ToggleSaturate()
		return ActionSaturate
	case 'm':
		s.CycleMode()
		return ActionMode
	case 'c':
		s.ClearPoints()
		return ActionPoints
	default:
		return ActionNone
	}
}
