package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cbodonnell/blockfall/pkg/log"
	"github.com/cbodonnell/blockfall/pkg/messages"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// WriteMessageToWS writes a Message to a WebSocket connection
func WriteMessageToWS(ctx context.Context, conn *websocket.Conn, msg *messages.Message) error {
	if err := wsjson.Write(ctx, conn, msg); err != nil {
		return fmt.Errorf("failed to write message to WebSocket connection: %v", err)
	}

	return nil
}

// ReadMessageFromWS reads a Message from a WebSocket connection
func ReadMessageFromWS(ctx context.Context, conn *websocket.Conn) (*messages.Message, error) {
	msg := &messages.Message{}
	if err := wsjson.Read(ctx, conn, msg); err != nil {
		return nil, err
	}

	return msg, nil
}

// ViewerHandlers receive what a render stream sends. Either may be nil.
type ViewerHandlers struct {
	Frame  func(frame *messages.Frame)
	Status func(status *messages.Status)
}

// Watch connects to a render stream and calls the handlers for every message
// until ctx is done or the server closes the stream.
func Watch(ctx context.Context, url string, handlers ViewerHandlers) error {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %v", url, err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")
	log.Debug("Watching %s", url)

	for {
		msg, err := ReadMessageFromWS(ctx, conn)
		if err != nil {
			if ctx.Err() != nil || websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			return fmt.Errorf("failed to read from %s: %v", url, err)
		}

		if err := dispatch(msg, handlers); err != nil {
			log.Warn("Dropping stream message: %v", err)
		}
	}
}

func dispatch(msg *messages.Message, handlers ViewerHandlers) error {
	switch msg.Type {
	case messages.MessageTypeServerFrame:
		frame := &messages.Frame{}
		if err := json.Unmarshal(msg.Payload, frame); err != nil {
			return fmt.Errorf("failed to unmarshal frame: %v", err)
		}
		if handlers.Frame != nil {
			handlers.Frame(frame)
		}
	case messages.MessageTypeServerStatus:
		status := &messages.Status{}
		if err := json.Unmarshal(msg.Payload, status); err != nil {
			return fmt.Errorf("failed to unmarshal status: %v", err)
		}
		if handlers.Status != nil {
			handlers.Status(status)
		}
	default:
		return errors.New("unknown message type " + msg.Type)
	}
	return nil
}
