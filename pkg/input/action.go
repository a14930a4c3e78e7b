package input

// Action is a resolved player command.
type Action int

const (
	ActionNone Action = iota
	ActionLeft
	ActionRight
	ActionRotate
	ActionDrop
	ActionPause
	ActionNewGame
	ActionSave
	ActionLoad
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionRotate:
		return "Rotate"
	case ActionDrop:
		return "Drop"
	case ActionPause:
		return "Pause"
	case ActionNewGame:
		return "NewGame"
	case ActionSave:
		return "Save"
	case ActionLoad:
		return "Load"
	}
	return "Unknown"
}

// Repeatable reports whether holding the input repeats the action.
// Drop is applied once per press.
func (a Action) Repeatable() bool {
	switch a {
	case ActionLeft, ActionRight, ActionRotate:
		return true
	}
	return false
}

// ButtonEvent is one poll of the buttons.
type ButtonEvent struct {
	// Action is the button pressed or held, ActionNone when no button is down
	Action Action
	// Pressed is true when Action comes from a new press rather than a button
	// that is still held
	Pressed bool
}

// ButtonSource reports button presses.
type ButtonSource interface {
	PollButton() ButtonEvent
}

// JoystickSource reports the direction the stick is held in, ActionNone when centered.
type JoystickSource interface {
	PollJoystick() Action
}

// KeySource reports the next decoded key, ActionNone when there is none.
type KeySource interface {
	PollKey() Action
}

// Clearer is implemented by sources that queue events. Clear discards the
// queued events and returns how many there were.
type Clearer interface {
	Clear() int
}
