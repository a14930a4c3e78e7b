package display

import (
	"fmt"
	"math/bits"

	"github.com/cbodonnell/blockfall/pkg/blocks"
	"github.com/cbodonnell/blockfall/pkg/board"
)

// RowRange is a half-open band of rows [Start, End).
type RowRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (r RowRange) Len() int {
	return r.End - r.Start
}

// FullRange covers every row of the board.
var FullRange = RowRange{Start: 0, End: board.Rows}

// DirtyRows is a set of row indices, bit i for row i.
type DirtyRows uint32

const allRows DirtyRows = 1<<board.Rows - 1

// Add marks rows [start, end) dirty.
func (d *DirtyRows) Add(start, end int) {
	if start < 0 || end > board.Rows || start > end {
		panic(fmt.Sprintf("invalid row range [%d, %d)", start, end))
	}
	for i := start; i < end; i++ {
		*d |= 1 << i
	}
}

func (d DirtyRows) Contains(row int) bool {
	return d&(1<<row) != 0
}

func (d DirtyRows) Empty() bool {
	return d == 0
}

func (d DirtyRows) Count() int {
	return bits.OnesCount32(uint32(d))
}

// Bands returns the maximal runs of dirty rows, top first.
func (d DirtyRows) Bands() []RowRange {
	var bands []RowRange
	for i := 0; i < board.Rows; {
		if !d.Contains(i) {
			i++
			continue
		}
		start := i
		for i < board.Rows && d.Contains(i) {
			i++
		}
		bands = append(bands, RowRange{Start: start, End: i})
	}
	return bands
}

// RenderSink receives the rows that changed since the last flush.
// bands are disjoint, sorted top first and never empty.
type RenderSink interface {
	Render(cache *Cache, bands []RowRange)
}

// Cache holds the color of every visible cell: settled cells plus the falling piece.
// Cells are indexed [row][x] in screen coordinates, x = 0 being the left edge.
type Cache struct {
	cells [board.Rows][board.Cols]blocks.Color
	dirty DirtyRows
}

// New returns an empty cache with every row dirty so the first flush draws the
// whole board.
func New() *Cache {
	return &Cache{
		dirty: allRows,
	}
}

// Reset clears every cell and marks everything dirty.
func (c *Cache) Reset() {
	c.cells = [board.Rows][board.Cols]blocks.Color{}
	c.dirty = allRows
}

// Cell returns the color at row, screen x.
func (c *Cache) Cell(row, x int) blocks.Color {
	return c.cells[row][x]
}

// Cells returns a copy of every cell.
func (c *Cache) Cells() [board.Rows][board.Cols]blocks.Color {
	return c.cells
}

// SetCells replaces every cell and marks everything dirty.
func (c *Cache) SetCells(cells [board.Rows][board.Cols]blocks.Color) {
	c.cells = cells
	c.dirty = allRows
}

// Install paints the cells of p with its color.
func (c *Cache) Install(p blocks.Piece) {
	c.paint(p, p.Color())
}

// Remove clears the cells of p.
func (c *Cache) Remove(p blocks.Piece) {
	c.paint(p, blocks.ColorEmpty)
}

func (c *Cache) paint(p blocks.Piece, color blocks.Color) {
	for r := 0; r < p.Height(); r++ {
		mask := p.RowMask(r)
		row := p.Row() + r
		for column := 0; column < board.Cols; column++ {
			if mask&(1<<column) != 0 {
				c.cells[row][board.ScreenX(column)] = color
			}
		}
	}
	c.dirty.Add(p.Row(), p.Bottom())
}

// RemoveRow mirrors board.RemoveRow: rows above i move down by one and row 0
// becomes empty. Every row is marked dirty.
func (c *Cache) RemoveRow(i int) {
	for j := i; j > 0; j-- {
		c.cells[j] = c.cells[j-1]
	}
	c.cells[0] = [board.Cols]blocks.Color{}
	c.dirty = allRows
}

// MarkDirty marks rows [start, end) as needing a redraw.
func (c *Cache) MarkDirty(start, end int) {
	c.dirty.Add(start, end)
}

// MarkAllDirty requests a full redraw.
func (c *Cache) MarkAllDirty() {
	c.dirty = allRows
}

// Dirty returns the rows changed since the last flush.
func (c *Cache) Dirty() DirtyRows {
	return c.dirty
}

// Flush hands the dirty bands to each sink and clears the dirty set.
// Nothing is sent when no rows changed.
func (c *Cache) Flush(sinks ...RenderSink) {
	if c.dirty.Empty() {
		return
	}
	bands := c.dirty.Bands()
	for _, sink := range sinks {
		sink.Render(c, bands)
	}
	c.dirty = 0
}

// Matches reports whether the cache agrees with the settled cells of b with
// current, if not nil, overlaid. Cells of current must carry its color. The
// board does not record which piece settled a cell, so a settled cell only has
// to carry the color of some shape.
func (c *Cache) Matches(b *board.Board, current *blocks.Piece) bool {
	var overlay [board.Rows][board.Cols]blocks.Color
	if current != nil {
		for r := 0; r < current.Height(); r++ {
			mask := current.RowMask(r)
			for column := 0; column < board.Cols; column++ {
				if mask&(1<<column) != 0 {
					overlay[current.Row()+r][board.ScreenX(column)] = current.Color()
				}
			}
		}
	}
	for row := 0; row < board.Rows; row++ {
		for column := 0; column < board.Cols; column++ {
			x := board.ScreenX(column)
			got := c.cells[row][x]
			switch {
			case overlay[row][x] != blocks.ColorEmpty:
				if got != overlay[row][x] {
					return false
				}
			case b.Occupied(row, column):
				if !isShapeColor(got) {
					return false
				}
			case got != blocks.ColorEmpty:
				return false
			}
		}
	}
	return true
}

func isShapeColor(c blocks.Color) bool {
	for shape := 0; shape < blocks.ShapeCount(); shape++ {
		if blocks.ShapeColor(shape) == c {
			return true
		}
	}
	return false
}
