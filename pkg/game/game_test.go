package game

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/cbodonnell/blockfall/pkg/blocks"
	"github.com/cbodonnell/blockfall/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRand always spawns a single cell at the screen-left edge.
type fixedRand struct{}

func (fixedRand) IntN(n int) int {
	if n == board.Cols {
		return board.Cols - 1
	}
	return 0
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(NewSessionOptions{Rand: fixedRand{}})
	s.NewGame()
	return s
}

// setRows replaces the settled cells.
func setRows(t *testing.T, s *Session, rows map[int]board.Row) {
	t.Helper()
	var all [board.Rows]board.Row
	for i, r := range rows {
		all[i] = r
	}
	s.board.SetRows(all)
	repaint(s)
}

// placeCurrent swaps the falling piece for p.
func placeCurrent(t *testing.T, s *Session, p blocks.Piece) {
	t.Helper()
	require.False(t, s.board.Collides(p))
	s.current = p
	s.hasCurrent = true
	repaint(s)
}

// repaint rebuilds the cache from the board and the falling piece.
func repaint(s *Session) {
	s.cache.Reset()
	for row := 0; row < board.Rows; row++ {
		for column := 0; column < board.Cols; column++ {
			if s.board.Occupied(row, column) {
				s.cache.Install(blocks.NewPiece(0, 0, row, column))
			}
		}
	}
	if s.hasCurrent {
		s.cache.Install(s.current)
	}
}

func assertCacheMatches(t *testing.T, s *Session) {
	t.Helper()
	current, ok := s.Current()
	if !ok {
		assert.True(t, s.cache.Matches(s.board, nil), "cache does not match board")
		return
	}
	assert.True(t, s.cache.Matches(s.board, &current), "cache does not match board and %s", current)
}

func TestSession_NewGame(t *testing.T) {
	s := newTestSession(t)

	current, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, 0, current.Row())
	assert.Equal(t, 7, current.Column())
	assert.Equal(t, uint32(0), s.Score())
	assert.False(t, s.GameOver())
	assert.Equal(t, blocks.ColorRed, s.Cache().Cell(0, 0))
	assertCacheMatches(t, s)
}

func TestSession_AttemptMove(t *testing.T) {
	tests := []struct {
		name       string
		rows       map[int]board.Row
		piece      blocks.Piece
		dir        blocks.Direction
		wantOK     bool
		wantColumn int
	}{
		{
			// a single cell at screen x 0 cannot go further left
			name:       "left edge",
			piece:      blocks.NewPiece(0, 0, 0, 7),
			dir:        blocks.DirectionLeft,
			wantOK:     false,
			wantColumn: 7,
		},
		{
			name:       "right edge",
			piece:      blocks.NewPiece(0, 0, 0, 0),
			dir:        blocks.DirectionRight,
			wantOK:     false,
			wantColumn: 0,
		},
		{
			name:       "free move",
			piece:      blocks.NewPiece(3, 0, 3, 2),
			dir:        blocks.DirectionRight,
			wantOK:     true,
			wantColumn: 1,
		},
		{
			name:       "settled cell beside the destination",
			rows:       map[int]board.Row{4: 0b1},
			piece:      blocks.NewPiece(3, 0, 3, 2),
			dir:        blocks.DirectionRight,
			wantOK:     true,
			wantColumn: 1,
		},
		{
			name:       "blocked by a settled cell under the wide row",
			rows:       map[int]board.Row{4: 0b10},
			piece:      blocks.NewPiece(1, 1, 4, 2),
			dir:        blocks.DirectionRight,
			wantOK:     false,
			wantColumn: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t)
			setRows(t, s, tt.rows)
			placeCurrent(t, s, tt.piece)
			s.cache.Flush()

			assert.Equal(t, tt.wantOK, s.AttemptMove(tt.dir))

			current, _ := s.Current()
			assert.Equal(t, tt.wantColumn, current.Column())
			assert.Equal(t, tt.piece.Row(), current.Row())
			assertCacheMatches(t, s)
			if !tt.wantOK {
				assert.True(t, s.cache.Dirty().Empty(), "a rejected move redraws nothing")
			}
		})
	}
}

func TestSession_AttemptMoveMarksBothExtents(t *testing.T) {
	s := newTestSession(t)
	placeCurrent(t, s, blocks.NewPiece(5, 0, 6, 3))
	s.cache.Flush()

	require.True(t, s.AttemptDropOneRow())

	dirty := s.cache.Dirty()
	for row := 6; row < 11; row++ {
		assert.True(t, dirty.Contains(row), "row %d", row)
	}
	assert.Equal(t, 5, dirty.Count())
}

func TestSession_AttemptRotate(t *testing.T) {
	tests := []struct {
		name         string
		rows         map[int]board.Row
		piece        blocks.Piece
		wantOK       bool
		wantRotation int
	}{
		{
			name:         "upright T widens to three columns from column 0",
			piece:        blocks.NewPiece(3, 1, 0, 0),
			wantOK:       true,
			wantRotation: 2,
		},
		{
			name:         "line of four lies flat across columns 4 to 7",
			piece:        blocks.NewPiece(5, 0, 0, 4),
			wantOK:       true,
			wantRotation: 1,
		},
		{
			name:         "line of four would leave the screen on the left",
			piece:        blocks.NewPiece(5, 0, 0, 5),
			wantOK:       false,
			wantRotation: 0,
		},
		{
			name:         "settled cell beside the rotated piece",
			rows:         map[int]board.Row{4: 0b1000},
			piece:        blocks.NewPiece(5, 1, 3, 0),
			wantOK:       true,
			wantRotation: 2,
		},
		{
			name:         "rotated line overlaps settled cells below",
			rows:         map[int]board.Row{5: 0b1},
			piece:        blocks.NewPiece(5, 1, 3, 0),
			wantOK:       false,
			wantRotation: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t)
			setRows(t, s, tt.rows)
			placeCurrent(t, s, tt.piece)

			assert.Equal(t, tt.wantOK, s.AttemptRotate())

			current, _ := s.Current()
			assert.Equal(t, tt.wantRotation, current.Rotation())
			assert.Equal(t, tt.piece.Row(), current.Row())
			assert.Equal(t, tt.piece.Column(), current.Column())
			assertCacheMatches(t, s)
		})
	}
}

func TestSession_AttemptDropOneRow(t *testing.T) {
	s := newTestSession(t)
	setRows(t, s, map[int]board.Row{10: 0b1000_0000})

	for i := 0; i < 9; i++ {
		require.True(t, s.AttemptDropOneRow(), "drop %d", i)
	}
	assert.False(t, s.AttemptDropOneRow())
	current, _ := s.Current()
	assert.Equal(t, 9, current.Row())
	assert.Equal(t, uint32(0), s.Score(), "gravity style drops do not score")
	assertCacheMatches(t, s)
}

func TestSession_FixCompletesOneRow(t *testing.T) {
	s := newTestSession(t)
	// the row is missing board column 3 only
	setRows(t, s, map[int]board.Row{
		2: 0b0000_0001,
		4: 0b0100_0000,
		5: board.FullRow &^ (1 << 3),
	})
	placeCurrent(t, s, blocks.NewPiece(0, 0, 5, 3))

	require.True(t, s.FixAndRespawn())

	assert.Equal(t, uint32(100), s.Score())
	assert.Equal(t, uint32(1), s.RowsCleared())
	assert.Equal(t, board.Row(0), s.board.Row(0))
	assert.Equal(t, board.Row(0b1), s.board.Row(3))
	assert.Equal(t, board.Row(0b0100_0000), s.board.Row(5))
	assert.Equal(t, 2, s.board.CellCount())
	assert.Equal(t, -1, s.board.FirstFullRow())
	assertCacheMatches(t, s)
}

func TestSession_FixCompletesSeparatedRows(t *testing.T) {
	t.Run("pending full row and completed row", func(t *testing.T) {
		s := newTestSession(t)
		setRows(t, s, map[int]board.Row{
			3: 0b0001_0000,
			4: board.FullRow,
			9: board.FullRow &^ (1 << 3),
		})
		placeCurrent(t, s, blocks.NewPiece(0, 0, 9, 3))

		require.True(t, s.FixAndRespawn())

		assert.Equal(t, uint32(200), s.Score())
		assert.Equal(t, uint32(2), s.RowsCleared())
		assert.Equal(t, board.Row(0b0001_0000), s.board.Row(5))
		assert.Equal(t, 1, s.board.CellCount())
		assertCacheMatches(t, s)
	})

	t.Run("line of four completes two rows", func(t *testing.T) {
		s := newTestSession(t)
		setRows(t, s, map[int]board.Row{
			12: board.FullRow &^ 0b1,
			13: board.FullRow &^ 0b11,
			14: board.FullRow &^ 0b1,
			15: board.FullRow &^ 0b11,
		})
		placeCurrent(t, s, blocks.NewPiece(5, 0, 12, 0))

		require.True(t, s.FixAndRespawn())

		assert.Equal(t, uint32(200), s.Score())
		assert.Equal(t, board.Row(board.FullRow&^0b10), s.board.Row(14))
		assert.Equal(t, board.Row(board.FullRow&^0b10), s.board.Row(15))
		assert.Equal(t, board.Row(0), s.board.Row(13))
		assertCacheMatches(t, s)
	})
}

func TestSession_GameOver(t *testing.T) {
	s := newTestSession(t)
	// the next piece always spawns at row 0, screen x 0
	setRows(t, s, map[int]board.Row{0: 0b1000_0000})
	placeCurrent(t, s, blocks.NewPiece(0, 0, 15, 0))

	assert.False(t, s.FixAndRespawn())
	assert.True(t, s.GameOver())
	_, ok := s.Current()
	assert.False(t, ok)
	assert.False(t, s.AttemptMove(blocks.DirectionLeft))
	assert.False(t, s.AttemptRotate())
	assert.False(t, s.AttemptDropOneRow())
	assert.False(t, s.FixAndRespawn())
	assertCacheMatches(t, s)

	s.NewGame()
	assert.False(t, s.GameOver())
	assert.Equal(t, 0, s.board.CellCount())
	_, ok = s.Current()
	assert.True(t, ok)
}

func TestSession_HardDrop(t *testing.T) {
	tests := []struct {
		name        string
		scoring     *ScoringPolicy
		wantDropped int
		wantScore   uint32
	}{
		{name: "soft drop bonus per row", wantDropped: 15, wantScore: 15},
		{name: "soft drop bonus disabled", scoring: &ScoringPolicy{RowBonus: 100}, wantDropped: 15, wantScore: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(NewSessionOptions{Rand: fixedRand{}, Scoring: tt.scoring})
			s.NewGame()

			dropped, alive := s.HardDrop()

			assert.True(t, alive)
			assert.Equal(t, tt.wantDropped, dropped)
			assert.Equal(t, tt.wantScore, s.Score())
			assert.True(t, s.board.Occupied(15, 7))
			current, ok := s.Current()
			require.True(t, ok)
			assert.Equal(t, 0, current.Row())
			assertCacheMatches(t, s)
		})
	}
}

func TestSession_RandomPlayKeepsInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	s := NewSession(NewSessionOptions{Rand: rng})
	s.NewGame()

	games := 0
	for step := 0; step < 20000; step++ {
		switch rng.IntN(4) {
		case 0:
			s.AttemptMove(blocks.DirectionLeft)
		case 1:
			s.AttemptMove(blocks.DirectionRight)
		case 2:
			s.AttemptRotate()
		case 3:
			if s.AttemptDropOneRow() {
				break
			}
			current, _ := s.Current()
			cellsBefore := s.board.CellCount()
			clearedBefore := s.RowsCleared()
			scoreBefore := s.Score()

			alive := s.FixAndRespawn()

			cleared := int(s.RowsCleared() - clearedBefore)
			require.Equal(t, cellsBefore+current.Pattern().CellCount()-board.Cols*cleared, s.board.CellCount())
			require.Equal(t, scoreBefore+uint32(cleared)*DefaultScoringPolicy().RowBonus, s.Score())
			require.Equal(t, -1, s.board.FirstFullRow())
			if !alive {
				games++
				assertCacheMatches(t, s)
				s.NewGame()
			}
		}
		current, ok := s.Current()
		require.True(t, ok)
		require.False(t, s.board.Collides(current))
		require.True(t, s.cache.Matches(s.board, &current), "step %d", step)
	}
	assert.Positive(t, games)
}

func TestSession_SnapshotRestore(t *testing.T) {
	tests := []struct {
		name  string
		drops int
		// toGameOver keeps dropping until the game ends
		toGameOver bool
	}{
		{name: "live game", drops: 3},
		{name: "after game over", toGameOver: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewPCG(3, 5))
			s := NewSession(NewSessionOptions{Rand: rng})
			s.NewGame()
			for i := 0; i < tt.drops; i++ {
				_, alive := s.HardDrop()
				require.True(t, alive, "drop %d", i)
				s.AttemptMove(blocks.DirectionLeft)
			}
			for tt.toGameOver && !s.GameOver() {
				s.HardDrop()
			}
			wantCurrent, wantOK := s.Current()
			require.Equal(t, !tt.toGameOver, wantOK)
			if !wantOK {
				assert.Equal(t, blocks.Piece{}, wantCurrent, "no stale piece after game over")
			}
			snapshot := s.Snapshot(1234)

			restored := NewSession(NewSessionOptions{Rand: rng})
			require.NoError(t, restored.Restore(snapshot))

			assert.Equal(t, s.board.Rows(), restored.board.Rows())
			assert.Equal(t, s.cache.Cells(), restored.cache.Cells())
			assert.Equal(t, s.Score(), restored.Score())
			assert.Equal(t, s.RowsCleared(), restored.RowsCleared())
			assert.Equal(t, s.GameOver(), restored.GameOver())
			assert.Equal(t, s.Next(), restored.Next())
			gotCurrent, gotOK := restored.Current()
			assert.Equal(t, wantOK, gotOK)
			assert.Equal(t, wantCurrent, gotCurrent)
			assert.Equal(t, snapshot, restored.Snapshot(1234))
		})
	}
}

func TestSession_RestoreRejectsInconsistentSnapshots(t *testing.T) {
	s := newTestSession(t)
	good := s.Snapshot(0)

	tests := []struct {
		name   string
		mutate func()
	}{
		{name: "row wider than the board", mutate: func() { good.Rows[3] = 0x1FF }},
		{name: "unknown color", mutate: func() { good.Cells[0][0] = 200 }},
		{name: "shape out of range", mutate: func() { good.Next.Shape = 9 }},
		{name: "piece off the board", mutate: func() { good.Current.Column = 8 }},
		{name: "cells disagree with rows", mutate: func() { good.Rows[15] = 0b1 }},
		{name: "current overlaps rows", mutate: func() { good.Rows[0] = 0b1000_0000 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			good = s.Snapshot(0)
			tt.mutate()
			before := s.Snapshot(0)

			assert.Error(t, s.Restore(good))
			assert.Equal(t, before, s.Snapshot(0), "session unchanged")
		})
	}
	assert.Error(t, s.Restore(nil))
}

func TestGravityInterval(t *testing.T) {
	tests := []struct {
		name        string
		rowsCleared uint32
		want        time.Duration
	}{
		{name: "start", rowsCleared: 0, want: 600 * time.Millisecond},
		{name: "ten rows", rowsCleared: 10, want: 450 * time.Millisecond},
		{name: "twenty rows", rowsCleared: 20, want: 300 * time.Millisecond},
		{name: "reaches the floor", rowsCleared: 34, want: 100 * time.Millisecond},
		{name: "stays at the floor", rowsCleared: 1000, want: 100 * time.Millisecond},
	}
	previous := time.Duration(1<<63 - 1)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GravityInterval(tt.rowsCleared)
			assert.Equal(t, tt.want, got)
			if got == 100*time.Millisecond {
				assert.LessOrEqual(t, got, previous)
			} else {
				assert.Less(t, got, previous)
			}
			previous = got
		})
	}
}
