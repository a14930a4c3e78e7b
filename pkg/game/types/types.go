package types

import (
	"strings"

	"github.com/cbodonnell/blockfall/pkg/board"
	"github.com/cbodonnell/blockfall/pkg/game/constants"
	"github.com/google/uuid"
)

// PieceState is the identity and position of a piece.
type PieceState struct {
	Shape    int `json:"shape"`
	Rotation int `json:"rotation"`
	Row      int `json:"row"`
	Column   int `json:"column"`
}

// Snapshot is everything needed to resume a game exactly.
type Snapshot struct {
	// Timestamp is the time in milliseconds at which the snapshot was taken
	Timestamp int64 `json:"timestamp"`
	// Rows holds the settled cells, top row first
	Rows [board.Rows]uint16 `json:"rows"`
	// Cells holds the displayed colors indexed [row][screen x]
	Cells       [board.Rows][board.Cols]uint8 `json:"cells"`
	Current     PieceState                    `json:"current"`
	HasCurrent  bool                          `json:"hasCurrent"`
	Next        PieceState                    `json:"next"`
	Score       uint32                        `json:"score"`
	RowsCleared uint32                        `json:"rowsCleared"`
	GameOver    bool                          `json:"gameOver"`
}

// ScoreEntry is a finished game on the scoreboard.
type ScoreEntry struct {
	ID          uuid.UUID `json:"id"`
	Label       string    `json:"label"`
	Score       uint32    `json:"score"`
	RowsCleared uint32    `json:"rowsCleared"`
	Timestamp   int64     `json:"timestamp"`
}

// NewScoreEntry returns an entry with a fresh ID and a normalized label.
func NewScoreEntry(label string, score, rowsCleared uint32, timestamp int64) ScoreEntry {
	return ScoreEntry{
		ID:          uuid.New(),
		Label:       NormalizeLabel(label),
		Score:       score,
		RowsCleared: rowsCleared,
		Timestamp:   timestamp,
	}
}

// NormalizeLabel upper-cases label, keeps letters and digits and truncates it
// to constants.MaxLabelLength. An empty result becomes constants.DefaultLabel.
func NormalizeLabel(label string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(label) {
		if b.Len() == constants.MaxLabelLength {
			break
		}
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return constants.DefaultLabel
	}
	return b.String()
}
