package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequenceRand returns its values in order, modulo n.
type sequenceRand struct {
	values []int
	next   int
}

func (s *sequenceRand) IntN(n int) int {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v % n
}

func TestCatalog_rotationsAreConsistent(t *testing.T) {
	require.Equal(t, 7, ShapeCount())

	for shape := 0; shape < ShapeCount(); shape++ {
		cells := GetPattern(shape, 0).CellCount()
		for rotation := 0; rotation < Rotations; rotation++ {
			pattern := GetPattern(shape, rotation)
			height, width := Dimensions(shape, rotation)

			assert.Equal(t, cells, pattern.CellCount(), "shape %d rotation %d cell count", shape, rotation)
			for r := 0; r < MaxHeight; r++ {
				if r >= height {
					assert.Zero(t, pattern[r], "shape %d rotation %d row %d past height", shape, rotation, r)
					continue
				}
				assert.NotZero(t, pattern[r], "shape %d rotation %d row %d is empty", shape, rotation, r)
				assert.Less(t, int(pattern[r]), 1<<width, "shape %d rotation %d row %d wider than %d", shape, rotation, r, width)
			}

			next := GetPattern(shape, (rotation+1)%Rotations)
			assert.Equal(t, next, pattern.RotateClockwise(height, width), "shape %d rotation %d does not turn into the next rotation", shape, rotation)
		}
	}
}

func TestDimensions(t *testing.T) {
	tests := []struct {
		name       string
		shape      int
		rotation   int
		wantHeight int
		wantWidth  int
	}{
		{name: "single cell", shape: 0, rotation: 0, wantHeight: 1, wantWidth: 1},
		{name: "line of three upright", shape: 1, rotation: 0, wantHeight: 3, wantWidth: 1},
		{name: "line of three flat", shape: 1, rotation: 1, wantHeight: 1, wantWidth: 3},
		{name: "T flat", shape: 3, rotation: 2, wantHeight: 2, wantWidth: 3},
		{name: "T upright", shape: 3, rotation: 3, wantHeight: 3, wantWidth: 2},
		{name: "line of four flat", shape: 5, rotation: 1, wantHeight: 1, wantWidth: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			height, width := Dimensions(tt.shape, tt.rotation)
			assert.Equal(t, tt.wantHeight, height)
			assert.Equal(t, tt.wantWidth, width)
		})
	}
}

func TestCatalog_outOfRangePanics(t *testing.T) {
	assert.Panics(t, func() { ShapeColor(7) })
	assert.Panics(t, func() { ShapeColor(-1) })
	assert.Panics(t, func() { GetPattern(0, 4) })
	assert.Panics(t, func() { NewPiece(0, -1, 0, 0) })
}

func TestSpawn(t *testing.T) {
	tests := []struct {
		name         string
		values       []int
		wantShape    int
		wantRotation int
		wantColumn   int
	}{
		{name: "fits where drawn", values: []int{3, 0, 2}, wantShape: 3, wantRotation: 0, wantColumn: 2},
		{name: "clamped at the left edge", values: []int{3, 0, 7}, wantShape: 3, wantRotation: 0, wantColumn: 5},
		{name: "flat line of four clamped", values: []int{5, 1, 6}, wantShape: 5, wantRotation: 1, wantColumn: 4},
		{name: "single cell anywhere", values: []int{0, 2, 7}, wantShape: 0, wantRotation: 2, wantColumn: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Spawn(&sequenceRand{values: tt.values}, 8)
			assert.Equal(t, tt.wantShape, p.Shape())
			assert.Equal(t, tt.wantRotation, p.Rotation())
			assert.Equal(t, tt.wantColumn, p.Column())
			assert.Equal(t, 0, p.Row())
			assert.LessOrEqual(t, p.Column()+p.Width(), 8)
		})
	}
}

func TestPiece_MoveHorizontal(t *testing.T) {
	tests := []struct {
		name       string
		piece      Piece
		dir        Direction
		wantOK     bool
		wantColumn int
	}{
		{name: "left toward lower bits", piece: NewPiece(0, 0, 0, 3), dir: DirectionLeft, wantOK: true, wantColumn: 4},
		{name: "right toward bit zero", piece: NewPiece(0, 0, 0, 3), dir: DirectionRight, wantOK: true, wantColumn: 2},
		{name: "left blocked at screen edge", piece: NewPiece(0, 0, 0, 7), dir: DirectionLeft, wantOK: false, wantColumn: 7},
		{name: "right blocked at screen edge", piece: NewPiece(3, 0, 0, 0), dir: DirectionRight, wantOK: false, wantColumn: 0},
		{name: "wide piece blocked on the left", piece: NewPiece(3, 0, 0, 5), dir: DirectionLeft, wantOK: false, wantColumn: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.piece
			assert.Equal(t, tt.wantOK, p.MoveHorizontal(tt.dir, 8))
			assert.Equal(t, tt.wantColumn, p.Column())
		})
	}
}

func TestPiece_Rotate(t *testing.T) {
	tests := []struct {
		name         string
		piece        Piece
		wantOK       bool
		wantRotation int
		wantWidth    int
		wantHeight   int
	}{
		{name: "T turns upright", piece: NewPiece(3, 0, 0, 0), wantOK: true, wantRotation: 1, wantWidth: 2, wantHeight: 3},
		{name: "upright line of four lies flat at column 0", piece: NewPiece(5, 0, 0, 0), wantOK: true, wantRotation: 1, wantWidth: 4, wantHeight: 1},
		{name: "flat line of four rejected off screen-left", piece: NewPiece(5, 0, 0, 5), wantOK: false, wantRotation: 0, wantWidth: 1, wantHeight: 4},
		{name: "flat line stands up above the floor", piece: NewPiece(5, 1, 12, 0), wantOK: true, wantRotation: 2, wantWidth: 1, wantHeight: 4},
		{name: "flat line rejected below the floor", piece: NewPiece(5, 1, 13, 0), wantOK: false, wantRotation: 1, wantWidth: 4, wantHeight: 1},
		{name: "rotation wraps", piece: NewPiece(4, 3, 0, 0), wantOK: true, wantRotation: 0, wantWidth: 3, wantHeight: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.piece
			row, column := p.Row(), p.Column()
			assert.Equal(t, tt.wantOK, p.Rotate(8, 16))
			assert.Equal(t, tt.wantRotation, p.Rotation())
			assert.Equal(t, tt.wantWidth, p.Width())
			assert.Equal(t, tt.wantHeight, p.Height())
			assert.Equal(t, row, p.Row())
			assert.Equal(t, column, p.Column())
		})
	}
}

func TestPiece_RotateFullTurn(t *testing.T) {
	for shape := 0; shape < ShapeCount(); shape++ {
		for rotation := 0; rotation < Rotations; rotation++ {
			start := NewPiece(shape, rotation, 4, 2)
			p := start
			for i := 0; i < Rotations; i++ {
				require.True(t, p.Rotate(8, 16), "shape %d rotation %d turn %d", shape, rotation, i)
			}
			assert.Equal(t, start.Pattern(), p.Pattern())
			assert.Equal(t, start.Width(), p.Width())
			assert.Equal(t, start.Height(), p.Height())
			assert.Equal(t, start.Row(), p.Row())
			assert.Equal(t, start.Column(), p.Column())
			assert.Equal(t, start, p)
		}
	}
}

func TestPiece_RowMask(t *testing.T) {
	p := NewPiece(3, 0, 0, 2)
	assert.Equal(t, uint16(0b01000), p.RowMask(0))
	assert.Equal(t, uint16(0b11100), p.RowMask(1))
	assert.Panics(t, func() { p.RowMask(2) })
}

func TestPiece_MoveDown(t *testing.T) {
	p := NewPiece(1, 0, 12, 0)
	assert.True(t, p.MoveDown(16))
	assert.Equal(t, 13, p.Row())
	assert.False(t, p.MoveDown(16))
	assert.Equal(t, 13, p.Row())
}
