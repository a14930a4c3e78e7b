package network

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/cbodonnell/blockfall/pkg/board"
	"github.com/cbodonnell/blockfall/pkg/display"
	"github.com/cbodonnell/blockfall/pkg/log"
	"github.com/cbodonnell/blockfall/pkg/messages"
	"github.com/kamstrup/intmap"
	"nhooyr.io/websocket"
)

const (
	// SubscriberBufferSize represents how many messages may wait for a slow viewer
	SubscriberBufferSize = 64
	// WriteTimeout bounds a single write to a viewer
	WriteTimeout = 5 * time.Second
)

type subscriber struct {
	messages  chan *messages.Message
	closeSlow func()
}

// RenderHub is a render sink that streams the display to websocket viewers.
// Every viewer gets a full frame when it connects and then only changed rows.
// A viewer that falls SubscriberBufferSize messages behind is disconnected.
type RenderHub struct {
	lock        sync.Mutex
	subscribers *intmap.Map[uint32, *subscriber]
	nextID      uint32
	cells       [board.Rows][board.Cols]uint8
	status      *messages.Status
}

func NewRenderHub() *RenderHub {
	return &RenderHub{
		subscribers: intmap.New[uint32, *subscriber](8),
	}
}

// Render implements display.RenderSink. It never blocks.
func (h *RenderHub) Render(cache *display.Cache, bands []display.RowRange) {
	frame := messages.NewFrame(cache, bands)
	msg, err := messages.NewMessage(messages.MessageTypeServerFrame, frame)
	if err != nil {
		log.Error("Failed to create frame message: %v", err)
		return
	}

	h.lock.Lock()
	defer h.lock.Unlock()
	if err := frame.Apply(&h.cells); err != nil {
		log.Error("Failed to apply frame: %v", err)
		return
	}
	h.publish(msg)
}

// PublishStatus sends status to every viewer and to viewers that connect later.
func (h *RenderHub) PublishStatus(status messages.Status) {
	msg, err := messages.NewMessage(messages.MessageTypeServerStatus, status)
	if err != nil {
		log.Error("Failed to create status message: %v", err)
		return
	}

	h.lock.Lock()
	defer h.lock.Unlock()
	h.status = &status
	h.publish(msg)
}

// publish must be called with the lock held
func (h *RenderHub) publish(msg *messages.Message) {
	h.subscribers.ForEach(func(id uint32, s *subscriber) bool {
		select {
		case s.messages <- msg:
		default:
			log.Warn("Viewer %d is too slow, disconnecting", id)
			go s.closeSlow()
		}
		return true
	})
}

// Viewers returns the number of connected viewers.
func (h *RenderHub) Viewers() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.subscribers.Len()
}

// subscribe registers s and queues the current display for it, so no update
// can fall between the full frame and the first partial one.
func (h *RenderHub) subscribe(s *subscriber) (uint32, error) {
	h.lock.Lock()
	defer h.lock.Unlock()

	frame := &messages.Frame{
		Bands: []display.RowRange{display.FullRange},
	}
	for row := 0; row < board.Rows; row++ {
		frame.Rows = append(frame.Rows, messages.FrameRow{Row: row, Cells: h.cells[row]})
	}
	msg, err := messages.NewMessage(messages.MessageTypeServerFrame, frame)
	if err != nil {
		return 0, err
	}
	s.messages <- msg
	if h.status != nil {
		msg, err := messages.NewMessage(messages.MessageTypeServerStatus, h.status)
		if err != nil {
			return 0, err
		}
		s.messages <- msg
	}

	h.nextID++
	h.subscribers.Put(h.nextID, s)
	return h.nextID, nil
}

func (h *RenderHub) unsubscribe(id uint32) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.subscribers.Del(id)
}

// ServeHTTP accepts a viewer and streams to it until it disconnects.
func (h *RenderHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		log.Error("Failed to accept WebSocket connection: %v", err)
		return
	}
	defer conn.CloseNow()

	s := &subscriber{
		messages: make(chan *messages.Message, SubscriberBufferSize),
		closeSlow: func() {
			conn.Close(websocket.StatusPolicyViolation, "connection too slow to keep up with frames")
		},
	}
	id, err := h.subscribe(s)
	if err != nil {
		log.Error("Failed to subscribe viewer: %v", err)
		conn.Close(websocket.StatusInternalError, "")
		return
	}
	defer h.unsubscribe(id)
	log.Debug("Viewer %d connected from %s", id, r.RemoteAddr)

	// viewers only listen; CloseRead handles their close frame
	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			log.Debug("Viewer %d disconnected", id)
			return
		case msg := <-s.messages:
			if err := writeWithTimeout(ctx, conn, msg); err != nil {
				log.Debug("Viewer %d write failed: %v", id, err)
				return
			}
		}
	}
}

func writeWithTimeout(ctx context.Context, conn *websocket.Conn, msg *messages.Message) error {
	ctx, cancel := context.WithTimeout(ctx, WriteTimeout)
	defer cancel()
	return WriteMessageToWS(ctx, conn, msg)
}
