package blocks

import "fmt"

// Direction is a horizontal move direction as seen on screen.
type Direction int

const (
	DirectionLeft Direction = iota
	DirectionRight
)

func (d Direction) String() string {
	switch d {
	case DirectionLeft:
		return "Left"
	case DirectionRight:
		return "Right"
	}
	return "Unknown"
}

// Rand is the source of randomness used when spawning pieces.
// *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// Piece is a falling piece. Columns are board bit positions: column 0 is the
// rightmost column on screen. Column is where bit 0 of the pattern lands, so the
// piece covers columns [Column, Column+Width).
//
// Width, height, pattern and color are derived from shape and rotation.
type Piece struct {
	shape    int
	rotation int
	row      int
	column   int
}

// NewPiece returns a piece with the given identity and position.
// It panics if shape or rotation are out of range.
func NewPiece(shape, rotation, row, column int) Piece {
	mustShape(shape)
	mustRotation(rotation)
	return Piece{
		shape:    shape,
		rotation: rotation,
		row:      row,
		column:   column,
	}
}

// Spawn returns a new piece at the top of a board cols wide with a uniformly
// random shape, rotation and column. The column is pulled in when the piece
// would hang off the left edge.
func Spawn(rng Rand, cols int) Piece {
	shape := rng.IntN(ShapeCount())
	rotation := rng.IntN(Rotations)
	column := rng.IntN(cols)
	_, width := Dimensions(shape, rotation)
	if column+width-1 >= cols {
		column = cols - width
	}
	return NewPiece(shape, rotation, 0, column)
}

func (p Piece) Shape() int {
	return p.shape
}

func (p Piece) Rotation() int {
	return p.rotation
}

func (p Piece) Row() int {
	return p.row
}

func (p Piece) Column() int {
	return p.column
}

func (p Piece) Height() int {
	h, _ := Dimensions(p.shape, p.rotation)
	return h
}

func (p Piece) Width() int {
	_, w := Dimensions(p.shape, p.rotation)
	return w
}

func (p Piece) Color() Color {
	return ShapeColor(p.shape)
}

func (p Piece) Pattern() Pattern {
	return GetPattern(p.shape, p.rotation)
}

// RowMask returns the board bits covered by piece row r, 0 <= r < Height().
func (p Piece) RowMask(r int) uint16 {
	if r < 0 || r >= p.Height() {
		panic(fmt.Sprintf("piece row %d out of range [0, %d)", r, p.Height()))
	}
	return uint16(p.Pattern()[r]) << p.column
}

// Bottom returns the index one past the last board row the piece covers.
func (p Piece) Bottom() int {
	return p.row + p.Height()
}

// MoveHorizontal shifts the piece one column in dir on a board cols wide.
// It reports false and leaves the piece unchanged if the move would cross an edge.
func (p *Piece) MoveHorizontal(dir Direction, cols int) bool {
	switch dir {
	case DirectionLeft:
		if p.column+p.Width() >= cols {
			return false
		}
		p.column++
	case DirectionRight:
		if p.column <= 0 {
			return false
		}
		p.column--
	default:
		panic(fmt.Sprintf("unknown direction %d", dir))
	}
	return true
}

// MoveDown shifts the piece one row down on a board rows tall.
// It reports false and leaves the piece unchanged at the floor.
func (p *Piece) MoveDown(rows int) bool {
	if p.Bottom() >= rows {
		return false
	}
	p.row++
	return true
}

// Rotate turns the piece 90 degrees clockwise about its top-right cell, keeping
// row and column. It reports false and leaves the piece unchanged if the rotated
// piece would not fit inside a board cols wide and rows tall.
func (p *Piece) Rotate(cols, rows int) bool {
	next := (p.rotation + 1) % Rotations
	height, width := Dimensions(p.shape, next)
	if p.column+width > cols || p.row+height > rows {
		return false
	}
	p.rotation = next
	return true
}

func (p Piece) String() string {
	return fmt.Sprintf("shape=%d rotation=%d row=%d column=%d", p.shape, p.rotation, p.row, p.column)
}
