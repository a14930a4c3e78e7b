package messages

import (
	"encoding/json"
	"fmt"

	"github.com/cbodonnell/blockfall/pkg/board"
	"github.com/cbodonnell/blockfall/pkg/display"
)

// Message types
const (
	MessageTypeServerFrame  = "frame"
	MessageTypeServerStatus = "status"
)

// Message represents a generic message for serialization/deserialization
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewMessage marshals payload into a message of the given type.
func NewMessage(messageType string, payload interface{}) (*Message, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %v", messageType, err)
	}
	return &Message{
		Type:    messageType,
		Payload: b,
	}, nil
}

// FrameRow is one row of the display, indexed by screen x.
type FrameRow struct {
	Row   int               `json:"row"`
	Cells [board.Cols]uint8 `json:"cells"`
}

// Frame carries the rows that changed since the previous frame.
type Frame struct {
	Bands []display.RowRange `json:"bands"`
	Rows  []FrameRow         `json:"rows"`
}

// NewFrame copies the rows covered by bands out of cache.
func NewFrame(cache *display.Cache, bands []display.RowRange) *Frame {
	frame := &Frame{
		Bands: bands,
	}
	for _, band := range bands {
		for row := band.Start; row < band.End; row++ {
			fr := FrameRow{Row: row}
			for x := 0; x < board.Cols; x++ {
				fr.Cells[x] = uint8(cache.Cell(row, x))
			}
			frame.Rows = append(frame.Rows, fr)
		}
	}
	return frame
}

// Apply paints the frame onto cells.
func (f *Frame) Apply(cells *[board.Rows][board.Cols]uint8) error {
	for _, fr := range f.Rows {
		if fr.Row < 0 || fr.Row >= board.Rows {
			return fmt.Errorf("frame row %d out of range", fr.Row)
		}
		cells[fr.Row] = fr.Cells
	}
	return nil
}

// Status is the scoreboard shown next to the board.
type Status struct {
	State       string `json:"state"`
	Score       uint32 `json:"score"`
	HighScore   uint32 `json:"highScore"`
	RowsCleared uint32 `json:"rowsCleared"`
}
