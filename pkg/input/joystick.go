package input

import (
	"math"
	"sync"
)

// ClassifyAxes turns normalized stick axes into a direction. x and y run from
// -1 to 1 with negative y pointing up. The axis pushed furthest wins; a stick
// inside deadZone on both axes is centered. Up rotates and down drops.
func ClassifyAxes(x, y, deadZone float64) Action {
	ax, ay := math.Abs(x), math.Abs(y)
	if ax <= deadZone && ay <= deadZone {
		return ActionNone
	}
	if ax >= ay {
		if x < 0 {
			return ActionLeft
		}
		return ActionRight
	}
	if y < 0 {
		return ActionRotate
	}
	return ActionDrop
}

// NormalizeADC maps a raw reading in [0, full] onto [-1, 1].
func NormalizeADC(value, full int) float64 {
	if full <= 0 {
		return 0
	}
	v := float64(value)/float64(full)*2 - 1
	return math.Max(-1, math.Min(1, v))
}

// Joystick holds the latest stick position written by an input goroutine.
type Joystick struct {
	lock     sync.RWMutex
	x, y     float64
	deadZone float64
}

func NewJoystick(deadZone float64) *Joystick {
	return &Joystick{
		deadZone: deadZone,
	}
}

// SetAxes records the stick position.
func (j *Joystick) SetAxes(x, y float64) {
	j.lock.Lock()
	defer j.lock.Unlock()
	j.x, j.y = x, y
}

func (j *Joystick) PollJoystick() Action {
	j.lock.RLock()
	defer j.lock.RUnlock()
	return ClassifyAxes(j.x, j.y, j.deadZone)
}
