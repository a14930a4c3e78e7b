package input

import (
	"sync"

	"github.com/cbodonnell/blockfall/pkg/log"
	"github.com/cbodonnell/blockfall/pkg/queue"
)

const (
	keyEscape  = 0x1b
	keyBracket = '['
)

// Keymap resolves plain characters to actions.
type Keymap map[rune]Action

// DefaultKeymap is used when no keymap is given.
var DefaultKeymap = Keymap{
	'p': ActionPause,
	'P': ActionPause,
	'n': ActionNewGame,
	'N': ActionNewGame,
	's': ActionSave,
	'S': ActionSave,
	'l': ActionLoad,
	'L': ActionLoad,
}

// Action returns the action bound to r, ActionNone if r is unbound.
func (k Keymap) Action(r rune) Action {
	if a, ok := k[r]; ok {
		return a
	}
	return ActionNone
}

type escapeState int

const (
	escapeNone escapeState = iota
	escapeStarted
	escapeBracket
)

// EscapeDecoder turns a byte stream from a terminal into actions, recognizing
// the cursor key sequences ESC [ A through ESC [ D. A byte other than [ after
// ESC is decoded as a plain character. The byte after ESC [ always ends the
// sequence and is never decoded as a plain character.
type EscapeDecoder struct {
	keymap Keymap
	state  escapeState
}

func NewEscapeDecoder(keymap Keymap) *EscapeDecoder {
	if keymap == nil {
		keymap = DefaultKeymap
	}
	return &EscapeDecoder{
		keymap: keymap,
	}
}

// Feed consumes one byte and returns the action it completes, if any.
func (d *EscapeDecoder) Feed(c byte) Action {
	switch d.state {
	case escapeStarted:
		switch c {
		case keyBracket:
			d.state = escapeBracket
			return ActionNone
		case keyEscape:
			return ActionNone
		}
	case escapeBracket:
		d.state = escapeNone
		switch c {
		case 'A':
			return ActionRotate
		case 'B':
			return ActionDrop
		case 'C':
			return ActionRight
		case 'D':
			return ActionLeft
		}
		return ActionNone
	}
	if c == keyEscape {
		d.state = escapeStarted
		return ActionNone
	}
	d.state = escapeNone
	return d.keymap.Action(rune(c))
}

// Pending reports whether a partial escape sequence is buffered.
func (d *EscapeDecoder) Pending() bool {
	return d.state != escapeNone
}

// Keys queues decoded key actions for the scheduler. Bytes may arrive from a
// serial line in arbitrary chunks.
type Keys struct {
	queue   queue.Queue
	lock    sync.Mutex
	decoder *EscapeDecoder
}

// NewKeys returns Keys queuing actions in q. A nil keymap uses DefaultKeymap.
func NewKeys(q queue.Queue, keymap Keymap) *Keys {
	return &Keys{
		queue:   q,
		decoder: NewEscapeDecoder(keymap),
	}
}

// PushAction queues an already resolved action. It reports false if the queue was full.
func (k *Keys) PushAction(action Action) bool {
	if action == ActionNone {
		return true
	}
	if !k.queue.Enqueue(action) {
		log.Trace("Key queue full, dropped %s", action)
		return false
	}
	return true
}

// PushRune queues the action bound to r. Unbound characters are ignored.
func (k *Keys) PushRune(r rune) bool {
	return k.PushAction(k.decoder.keymap.Action(r))
}

// Write decodes p and queues the resulting actions. It never fails, so Keys can
// be the destination of io.Copy from a terminal.
func (k *Keys) Write(p []byte) (int, error) {
	k.lock.Lock()
	defer k.lock.Unlock()
	for _, c := range p {
		k.PushAction(k.decoder.Feed(c))
	}
	return len(p), nil
}

// Clear discards queued keys. A partial escape sequence stays buffered.
func (k *Keys) Clear() int {
	n := k.queue.Size()
	k.queue.ClearQueue()
	return n
}

func (k *Keys) PollKey() Action {
	item, ok := k.queue.Dequeue()
	if !ok {
		return ActionNone
	}
	action, ok := item.(Action)
	if !ok {
		log.Error("Unexpected item in key queue: %T", item)
		return ActionNone
	}
	return action
}
