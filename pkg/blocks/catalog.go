package blocks

import "fmt"

const (
	// Rotations is the number of rotations every shape has
	Rotations = 4
	// MaxHeight is the tallest any rotation of any shape can be
	MaxHeight = 4
)

// Pattern holds the rows of one rotation, top row first.
// Bit 0 of each row is the rightmost column of the piece.
// Rows past the rotation's height are zero.
type Pattern [MaxHeight]uint8

// Shape is an immutable catalog entry.
type Shape struct {
	Color Color
	// Height and Width are the dimensions of rotations 0 and 2.
	// Rotations 1 and 3 swap them.
	Height   int
	Width    int
	Patterns [Rotations]Pattern
}

var catalog = [...]Shape{
	{
		// single cell
		Color:  ColorRed,
		Height: 1,
		Width:  1,
		Patterns: [Rotations]Pattern{
			{0b1},
			{0b1},
			{0b1},
			{0b1},
		},
	},
	{
		// three in a line
		Color:  ColorOrange,
		Height: 3,
		Width:  1,
		Patterns: [Rotations]Pattern{
			{0b1, 0b1, 0b1},
			{0b111},
			{0b1, 0b1, 0b1},
			{0b111},
		},
	},
	{
		// square
		Color:  ColorGreen,
		Height: 2,
		Width:  2,
		Patterns: [Rotations]Pattern{
			{0b11, 0b11},
			{0b11, 0b11},
			{0b11, 0b11},
			{0b11, 0b11},
		},
	},
	{
		// T
		Color:  ColorYellow,
		Height: 2,
		Width:  3,
		Patterns: [Rotations]Pattern{
			{0b010, 0b111},
			{0b10, 0b11, 0b10},
			{0b111, 0b010},
			{0b01, 0b11, 0b01},
		},
	},
	{
		// L
		Color:  ColorLightOrange,
		Height: 2,
		Width:  3,
		Patterns: [Rotations]Pattern{
			{0b001, 0b111},
			{0b10, 0b10, 0b11},
			{0b111, 0b100},
			{0b11, 0b01, 0b01},
		},
	},
	{
		// four in a line
		Color:  ColorLightGreen,
		Height: 4,
		Width:  1,
		Patterns: [Rotations]Pattern{
			{0b1, 0b1, 0b1, 0b1},
			{0b1111},
			{0b1, 0b1, 0b1, 0b1},
			{0b1111},
		},
	},
	{
		// J
		Color:  ColorLightYellow,
		Height: 2,
		Width:  3,
		Patterns: [Rotations]Pattern{
			{0b111, 0b001},
			{0b01, 0b01, 0b11},
			{0b100, 0b111},
			{0b11, 0b10, 0b10},
		},
	},
}

// ShapeCount returns the number of shapes in the catalog.
func ShapeCount() int {
	return len(catalog)
}

func mustShape(shape int) *Shape {
	if shape < 0 || shape >= len(catalog) {
		panic(fmt.Sprintf("shape %d out of range [0, %d)", shape, len(catalog)))
	}
	return &catalog[shape]
}

func mustRotation(rotation int) {
	if rotation < 0 || rotation >= Rotations {
		panic(fmt.Sprintf("rotation %d out of range [0, %d)", rotation, Rotations))
	}
}

// GetShape returns a copy of the catalog entry for shape.
func GetShape(shape int) Shape {
	return *mustShape(shape)
}

// GetPattern returns the row pattern of shape at rotation.
func GetPattern(shape, rotation int) Pattern {
	mustRotation(rotation)
	return mustShape(shape).Patterns[rotation]
}

// Dimensions returns the height and width of shape at rotation.
func Dimensions(shape, rotation int) (height, width int) {
	mustRotation(rotation)
	s := mustShape(shape)
	if rotation%2 == 1 {
		return s.Width, s.Height
	}
	return s.Height, s.Width
}

// ShapeColor returns the color of shape.
func ShapeColor(shape int) Color {
	return mustShape(shape).Color
}

// CellCount returns the number of occupied cells in a pattern.
func (p Pattern) CellCount() int {
	n := 0
	for _, row := range p {
		for ; row != 0; row &= row - 1 {
			n++
		}
	}
	return n
}

// RotateClockwise returns p, of the given height and width, turned 90 degrees
// clockwise about its top-right cell. The result has height width and width height.
func (p Pattern) RotateClockwise(height, width int) Pattern {
	var out Pattern
	for r := 0; r < height; r++ {
		for c := 0; c < width; c++ {
			if p[r]&(1<<c) == 0 {
				continue
			}
			out[width-1-c] |= 1 << r
		}
	}
	return out
}
