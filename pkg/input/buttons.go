package input

import (
	"sync"

	"github.com/cbodonnell/blockfall/pkg/log"
	"github.com/cbodonnell/blockfall/pkg/queue"
)

// Buttons tracks push buttons. Presses are queued so none are lost between
// polls. A full queue drops new presses. Several physical buttons may share
// an action; the action is held until all of them are released.
type Buttons struct {
	presses queue.Queue
	lock    sync.Mutex
	held    []heldButton
}

type heldButton struct {
	action Action
	count  int
}

// NewButtons returns Buttons queuing presses in q.
func NewButtons(q queue.Queue) *Buttons {
	return &Buttons{
		presses: q,
	}
}

// Press records that the button for action went down.
func (b *Buttons) Press(action Action) {
	b.lock.Lock()
	defer b.lock.Unlock()
	for i := range b.held {
		if b.held[i].action == action {
			b.held[i].count++
			return
		}
	}
	b.held = append(b.held, heldButton{action: action, count: 1})
	if !b.presses.Enqueue(action) {
		log.Trace("Button queue full, dropped %s", action)
	}
}

// Release records that the button for action went up.
func (b *Buttons) Release(action Action) {
	b.lock.Lock()
	defer b.lock.Unlock()
	for i := range b.held {
		if b.held[i].action != action {
			continue
		}
		b.held[i].count--
		if b.held[i].count <= 0 {
			b.held = append(b.held[:i], b.held[i+1:]...)
		}
		return
	}
}

// PollButton returns the oldest queued press or, when none is queued, the most
// recently pressed button still held.
func (b *Buttons) PollButton() ButtonEvent {
	if item, ok := b.presses.Dequeue(); ok {
		if action, ok := item.(Action); ok {
			return ButtonEvent{Action: action, Pressed: true}
		}
		log.Error("Unexpected item in button queue: %T", item)
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	if len(b.held) == 0 {
		return ButtonEvent{}
	}
	return ButtonEvent{Action: b.held[len(b.held)-1].action}
}

// Clear discards queued presses. Buttons still held keep reporting.
func (b *Buttons) Clear() int {
	n := b.presses.Size()
	b.presses.ClearQueue()
	return n
}
