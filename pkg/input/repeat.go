package input

import "time"

// Repeater decides when a held input is applied. The first observation is applied
// immediately, then nothing until the initial delay has passed, then once per
// repeat interval. Times are in milliseconds.
type Repeater struct {
	initialDelay   int64
	repeatInterval int64

	held      Action
	since     int64
	last      int64
	repeating bool
}

func NewRepeater(initialDelay, repeatInterval time.Duration) *Repeater {
	return &Repeater{
		initialDelay:   initialDelay.Milliseconds(),
		repeatInterval: repeatInterval.Milliseconds(),
	}
}

// Observe records that action is held at now and reports whether it should be
// applied. fresh marks a new press of the same input, which starts over.
func (r *Repeater) Observe(action Action, fresh bool, now int64) bool {
	if action == ActionNone {
		r.Reset()
		return false
	}
	if fresh || action != r.held {
		r.held = action
		r.since = now
		r.last = now
		r.repeating = false
		return true
	}
	if !action.Repeatable() {
		return false
	}
	if !r.repeating {
		if now-r.since < r.initialDelay {
			return false
		}
		r.repeating = true
		r.last = now
		return true
	}
	if now-r.last < r.repeatInterval {
		return false
	}
	r.last = now
	return true
}

// Held returns the input currently being tracked.
func (r *Repeater) Held() Action {
	return r.held
}

// Reset forgets the held input, so the next observation applies immediately.
func (r *Repeater) Reset() {
	r.held = ActionNone
	r.repeating = false
}
