package board

import (
	"testing"

	"github.com/cbodonnell/blockfall/pkg/blocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoard_Collides(t *testing.T) {
	tests := []struct {
		name  string
		rows  map[int]Row
		piece blocks.Piece
		want  bool
	}{
		{name: "empty board", piece: blocks.NewPiece(3, 0, 0, 0), want: false},
		{name: "overlap on the second piece row", rows: map[int]Row{1: 0b100}, piece: blocks.NewPiece(3, 0, 0, 0), want: true},
		{name: "gap in the pattern", rows: map[int]Row{0: 0b101}, piece: blocks.NewPiece(3, 0, 0, 0), want: false},
		{name: "neighbouring column", rows: map[int]Row{5: 0b1}, piece: blocks.NewPiece(5, 0, 2, 1), want: false},
		{name: "same column", rows: map[int]Row{5: 0b10}, piece: blocks.NewPiece(5, 0, 2, 1), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New()
			var rows [Rows]Row
			for i, r := range tt.rows {
				rows[i] = r
			}
			b.SetRows(rows)
			assert.Equal(t, tt.want, b.Collides(tt.piece))
		})
	}
}

func TestBoard_CollidesOutsidePanics(t *testing.T) {
	b := New()
	assert.Panics(t, func() { b.Collides(blocks.NewPiece(5, 0, 13, 0)) })
	assert.Panics(t, func() { b.Collides(blocks.NewPiece(3, 0, 0, 6)) })
}

func TestBoard_FixAddsCells(t *testing.T) {
	b := New()
	p := blocks.NewPiece(4, 1, 13, 3)
	require.False(t, b.Collides(p))

	b.Fix(p)

	assert.Equal(t, 4, b.CellCount())
	assert.True(t, b.Occupied(13, 4))
	assert.True(t, b.Occupied(15, 3))
	assert.True(t, b.Collides(p))
	assert.Panics(t, func() { b.Fix(p) })
}

func TestBoard_RemoveRow(t *testing.T) {
	b := New()
	var rows [Rows]Row
	rows[0] = 0b1
	rows[1] = 0b10
	rows[2] = FullRow
	rows[3] = 0b100
	b.SetRows(rows)

	b.RemoveRow(2)

	assert.Equal(t, Row(0), b.Row(0))
	assert.Equal(t, Row(0b1), b.Row(1))
	assert.Equal(t, Row(0b10), b.Row(2))
	assert.Equal(t, Row(0b100), b.Row(3))
}

func TestBoard_Compact(t *testing.T) {
	tests := []struct {
		name        string
		rows        map[int]Row
		wantRemoved []int
		wantRows    map[int]Row
	}{
		{
			name:        "nothing full",
			rows:        map[int]Row{15: 0b0111_1111},
			wantRemoved: nil,
			wantRows:    map[int]Row{15: 0b0111_1111},
		},
		{
			name:        "bottom row",
			rows:        map[int]Row{14: 0b1, 15: FullRow},
			wantRemoved: []int{15},
			wantRows:    map[int]Row{15: 0b1},
		},
		{
			name:        "two separated rows rescanned from the top",
			rows:        map[int]Row{3: 0b11, 4: FullRow, 8: 0b1000_0000, 9: FullRow},
			wantRemoved: []int{4, 9},
			wantRows:    map[int]Row{5: 0b11, 9: 0b1000_0000},
		},
		{
			name:        "adjacent rows",
			rows:        map[int]Row{12: 0b1, 13: FullRow, 14: FullRow, 15: 0b10},
			wantRemoved: []int{13, 14},
			wantRows:    map[int]Row{14: 0b1, 15: 0b10},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New()
			var rows [Rows]Row
			for i, r := range tt.rows {
				rows[i] = r
			}
			b.SetRows(rows)

			var removed []int
			n := b.Compact(func(row int) { removed = append(removed, row) })

			assert.Equal(t, len(tt.wantRemoved), n)
			assert.Equal(t, tt.wantRemoved, removed)
			var want [Rows]Row
			for i, r := range tt.wantRows {
				want[i] = r
			}
			assert.Equal(t, want, b.Rows())
			assert.Equal(t, -1, b.FirstFullRow())
		})
	}
}

func TestBoard_SetRowsRejectsWideRows(t *testing.T) {
	var rows [Rows]Row
	rows[0] = 1 << Cols
	assert.Panics(t, func() { New().SetRows(rows) })
}

func TestBoard_String(t *testing.T) {
	b := New()
	b.Fix(blocks.NewPiece(0, 0, 15, 7))
	lines := b.String()
	assert.Equal(t, "#.......\n", lines[len(lines)-9:])
	assert.Equal(t, 0, ScreenX(7))
	assert.Equal(t, 7, ScreenX(0))
}
