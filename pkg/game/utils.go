package game

import (
	"fmt"

	"github.com/cbodonnell/blockfall/pkg/blocks"
	"github.com/cbodonnell/blockfall/pkg/board"
	"github.com/cbodonnell/blockfall/pkg/display"
	"github.com/cbodonnell/blockfall/pkg/game/types"
)

func PieceStateFromPiece(p blocks.Piece) types.PieceState {
	return types.PieceState{
		Shape:    p.Shape(),
		Rotation: p.Rotation(),
		Row:      p.Row(),
		Column:   p.Column(),
	}
}

// PieceFromState validates state and returns the piece it describes.
func PieceFromState(state types.PieceState) (blocks.Piece, error) {
	if state.Shape < 0 || state.Shape >= blocks.ShapeCount() {
		return blocks.Piece{}, fmt.Errorf("shape %d out of range", state.Shape)
	}
	if state.Rotation < 0 || state.Rotation >= blocks.Rotations {
		return blocks.Piece{}, fmt.Errorf("rotation %d out of range", state.Rotation)
	}
	p := blocks.NewPiece(state.Shape, state.Rotation, state.Row, state.Column)
	if p.Row() < 0 || p.Bottom() > board.Rows || p.Column() < 0 || p.Column()+p.Width() > board.Cols {
		return blocks.Piece{}, fmt.Errorf("piece %s outside the board", p)
	}
	return p, nil
}

// Snapshot captures the session so Restore can resume it.
func (s *Session) Snapshot(timestamp int64) *types.Snapshot {
	snapshot := &types.Snapshot{
		Timestamp:   timestamp,
		HasCurrent:  s.hasCurrent,
		Next:        PieceStateFromPiece(s.next),
		Score:       s.score,
		RowsCleared: s.rowsCleared,
		GameOver:    s.gameOver,
	}
	if s.hasCurrent {
		snapshot.Current = PieceStateFromPiece(s.current)
	}
	for i, r := range s.board.Rows() {
		snapshot.Rows[i] = uint16(r)
	}
	for row, cells := range s.cache.Cells() {
		for x, c := range cells {
			snapshot.Cells[row][x] = uint8(c)
		}
	}
	return snapshot
}

// Restore replaces the session with snapshot. The session is unchanged when
// the snapshot is inconsistent.
func (s *Session) Restore(snapshot *types.Snapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot is nil")
	}

	var rows [board.Rows]board.Row
	for i, r := range snapshot.Rows {
		if board.Row(r)&^board.FullRow != 0 {
			return fmt.Errorf("row %d has bits outside the board: %#x", i, r)
		}
		rows[i] = board.Row(r)
	}
	restored := board.New()
	restored.SetRows(rows)

	var cells [board.Rows][board.Cols]blocks.Color
	for row := range snapshot.Cells {
		for x, c := range snapshot.Cells[row] {
			if c > uint8(blocks.ColorLightYellow) {
				return fmt.Errorf("cell %d,%d has unknown color %d", row, x, c)
			}
			cells[row][x] = blocks.Color(c)
		}
	}

	next, err := PieceFromState(snapshot.Next)
	if err != nil {
		return fmt.Errorf("failed to restore next piece: %v", err)
	}

	var current blocks.Piece
	if snapshot.HasCurrent {
		current, err = PieceFromState(snapshot.Current)
		if err != nil {
			return fmt.Errorf("failed to restore current piece: %v", err)
		}
		if restored.Collides(current) {
			return fmt.Errorf("current piece %s overlaps the board", current)
		}
	}

	var currentPtr *blocks.Piece
	if snapshot.HasCurrent {
		currentPtr = &current
	}
	check := display.New()
	check.SetCells(cells)
	if !check.Matches(restored, currentPtr) {
		return fmt.Errorf("display cells do not match the board")
	}

	s.board.SetRows(rows)
	s.cache.SetCells(cells)
	s.current = current
	s.hasCurrent = snapshot.HasCurrent
	s.next = next
	s.score = snapshot.Score
	s.rowsCleared = snapshot.RowsCleared
	s.gameOver = snapshot.GameOver
	return nil
}
