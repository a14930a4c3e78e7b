package board

import (
	"fmt"
	"math/bits"

	"github.com/cbodonnell/blockfall/pkg/blocks"
)

const (
	// Rows is the number of rows on the board
	Rows = 16
	// Cols is the number of columns on the board
	Cols = 8
	// FullRow is the mask of a row with every column occupied
	FullRow Row = 1<<Cols - 1
)

// Row is the occupancy of one board row. Bit i is column i, and column 0 is
// the rightmost column on screen.
type Row uint16

// IsFull reports whether every column of the row is occupied.
func (r Row) IsFull() bool {
	return r&FullRow == FullRow
}

// Board is the grid of settled cells. Row 0 is the top.
// Cells are set only by Fix and cleared only by RemoveRow, Compact or Reset.
type Board struct {
	rows [Rows]Row
}

// New returns an empty board.
func New() *Board {
	return &Board{}
}

// Reset clears every cell.
func (b *Board) Reset() {
	b.rows = [Rows]Row{}
}

// Row returns the occupancy of row i.
func (b *Board) Row(i int) Row {
	mustRow(i)
	return b.rows[i]
}

// Rows returns a copy of all rows, top first.
func (b *Board) Rows() [Rows]Row {
	return b.rows
}

// SetRows replaces every row, e.g. when restoring a saved game.
func (b *Board) SetRows(rows [Rows]Row) {
	for i, r := range rows {
		if r&^FullRow != 0 {
			panic(fmt.Sprintf("row %d has bits outside the board: %#x", i, r))
		}
	}
	b.rows = rows
}

// Occupied reports whether the cell at row, column is set.
func (b *Board) Occupied(row, column int) bool {
	mustRow(row)
	if column < 0 || column >= Cols {
		panic(fmt.Sprintf("column %d out of range [0, %d)", column, Cols))
	}
	return b.rows[row]&(1<<column) != 0
}

// CellCount returns the number of occupied cells.
func (b *Board) CellCount() int {
	n := 0
	for _, r := range b.rows {
		n += bits.OnesCount16(uint16(r))
	}
	return n
}

// Collides reports whether any cell of p overlaps a settled cell.
// It panics if p is not inside the board.
func (b *Board) Collides(p blocks.Piece) bool {
	mustContain(p)
	for r := 0; r < p.Height(); r++ {
		if Row(p.RowMask(r))&b.rows[p.Row()+r] != 0 {
			return true
		}
	}
	return false
}

// Fix settles the cells of p into the board.
// It panics if p is not inside the board or overlaps a settled cell.
func (b *Board) Fix(p blocks.Piece) {
	if b.Collides(p) {
		panic(fmt.Sprintf("fixing overlapping piece %s", p))
	}
	for r := 0; r < p.Height(); r++ {
		b.rows[p.Row()+r] |= Row(p.RowMask(r))
	}
}

// FirstFullRow returns the index of the topmost full row, or -1 if there is none.
func (b *Board) FirstFullRow() int {
	for i, r := range b.rows {
		if r.IsFull() {
			return i
		}
	}
	return -1
}

// RemoveRow deletes row i, moving every row above it down by one and
// leaving row 0 empty.
func (b *Board) RemoveRow(i int) {
	mustRow(i)
	for j := i; j > 0; j-- {
		b.rows[j] = b.rows[j-1]
	}
	b.rows[0] = 0
}

// Compact removes full rows until none remain, rescanning from the top after
// every removal. onRemove, if not nil, is called with the index of each removed
// row after the board has shifted. It returns the number of rows removed.
func (b *Board) Compact(onRemove func(row int)) int {
	removed := 0
	for {
		i := b.FirstFullRow()
		if i < 0 {
			return removed
		}
		b.RemoveRow(i)
		removed++
		if onRemove != nil {
			onRemove(i)
		}
	}
}

// String renders the board as it appears on screen, one line per row.
func (b *Board) String() string {
	out := make([]byte, 0, Rows*(Cols+1))
	for _, r := range b.rows {
		for x := 0; x < Cols; x++ {
			if r&(1<<(Cols-1-x)) != 0 {
				out = append(out, '#')
			} else {
				out = append(out, '.')
			}
		}
		out = append(out, '\n')
	}
	return string(out)
}

// ScreenX converts a board column to a screen x coordinate, 0 being the left edge.
func ScreenX(column int) int {
	return Cols - 1 - column
}

func mustRow(i int) {
	if i < 0 || i >= Rows {
		panic(fmt.Sprintf("row %d out of range [0, %d)", i, Rows))
	}
}

func mustContain(p blocks.Piece) {
	if p.Row() < 0 || p.Bottom() > Rows {
		panic(fmt.Sprintf("piece rows [%d, %d) outside the board", p.Row(), p.Bottom()))
	}
	if p.Column() < 0 || p.Column()+p.Width() > Cols {
		panic(fmt.Sprintf("piece columns [%d, %d) outside the board", p.Column(), p.Column()+p.Width()))
	}
}
