package game

import (
	"github.com/cbodonnell/blockfall/pkg/blocks"
	"github.com/cbodonnell/blockfall/pkg/board"
	"github.com/cbodonnell/blockfall/pkg/display"
	"github.com/cbodonnell/blockfall/pkg/log"
)

// Session is one game: the board, the display cache, the falling piece, the
// piece after it and the score.
// A Session is not safe for concurrent use.
type Session struct {
	board       *board.Board
	cache       *display.Cache
	rng         blocks.Rand
	scoring     ScoringPolicy
	current     blocks.Piece
	hasCurrent  bool
	next        blocks.Piece
	score       uint32
	rowsCleared uint32
	gameOver    bool
}

// NewSessionOptions contains options for creating a new Session.
type NewSessionOptions struct {
	// Rand picks the shape, rotation and column of new pieces
	Rand blocks.Rand
	// Scoring defaults to DefaultScoringPolicy when nil
	Scoring *ScoringPolicy
}

// NewSession returns a session with an empty board and no falling piece.
// Call NewGame to start playing.
func NewSession(opts NewSessionOptions) *Session {
	if opts.Rand == nil {
		panic("session requires a source of randomness")
	}
	scoring := DefaultScoringPolicy()
	if opts.Scoring != nil {
		scoring = *opts.Scoring
	}
	return &Session{
		board:   board.New(),
		cache:   display.New(),
		rng:     opts.Rand,
		scoring: scoring,
	}
}

// NewGame clears the board and score and spawns the first piece.
func (s *Session) NewGame() {
	s.board.Reset()
	s.cache.Reset()
	s.score = 0
	s.rowsCleared = 0
	s.gameOver = false
	s.hasCurrent = false
	s.next = blocks.Spawn(s.rng, board.Cols)
	s.respawn()
	log.Debug("New game started with %s", s.current)
}

func (s *Session) Board() *board.Board {
	return s.board
}

func (s *Session) Cache() *display.Cache {
	return s.cache
}

// Current returns the falling piece. ok is false before the first game and after game over.
func (s *Session) Current() (piece blocks.Piece, ok bool) {
	return s.current, s.hasCurrent
}

// Next returns the piece that spawns after the current one is fixed.
func (s *Session) Next() blocks.Piece {
	return s.next
}

func (s *Session) Score() uint32 {
	return s.score
}

func (s *Session) RowsCleared() uint32 {
	return s.rowsCleared
}

func (s *Session) GameOver() bool {
	return s.gameOver
}

func (s *Session) Scoring() ScoringPolicy {
	return s.scoring
}

// AttemptMove shifts the falling piece one column. It reports false and changes
// nothing if the piece would leave the board or overlap a settled cell.
func (s *Session) AttemptMove(dir blocks.Direction) bool {
	return s.attempt(func(p *blocks.Piece) bool {
		return p.MoveHorizontal(dir, board.Cols)
	})
}

// AttemptDropOneRow moves the falling piece down one row. It reports false and
// changes nothing if the piece is on the floor or resting on a settled cell.
func (s *Session) AttemptDropOneRow() bool {
	return s.attempt(func(p *blocks.Piece) bool {
		return p.MoveDown(board.Rows)
	})
}

// AttemptRotate turns the falling piece clockwise. It reports false and changes
// nothing if the rotated piece would not fit.
func (s *Session) AttemptRotate() bool {
	return s.attempt(func(p *blocks.Piece) bool {
		return p.Rotate(board.Cols, board.Rows)
	})
}

// attempt applies change to a copy of the falling piece and installs the copy
// only when it is still inside the board and free of collisions.
func (s *Session) attempt(change func(p *blocks.Piece) bool) bool {
	if !s.hasCurrent {
		return false
	}
	candidate := s.current
	if !change(&candidate) {
		return false
	}
	if s.board.Collides(candidate) {
		return false
	}
	s.cache.Remove(s.current)
	s.cache.Install(candidate)
	s.current = candidate
	return true
}

// SoftDrop drops the piece one row at the player's request and awards the
// soft drop bonus when it moves.
func (s *Session) SoftDrop() bool {
	if !s.AttemptDropOneRow() {
		return false
	}
	s.score += s.scoring.SoftDropBonus
	return true
}

// HardDrop drops the piece as far as it falls, scoring each row as a soft drop,
// then fixes it. It returns the rows dropped and false if the game is over.
func (s *Session) HardDrop() (dropped int, alive bool) {
	if !s.hasCurrent {
		return 0, !s.gameOver
	}
	for s.SoftDrop() {
		dropped++
	}
	return dropped, s.FixAndRespawn()
}

// FixAndRespawn settles the falling piece, clears completed rows, and promotes
// the next piece. It reports false when the new piece cannot be placed, which
// ends the game.
func (s *Session) FixAndRespawn() bool {
	if !s.hasCurrent {
		return !s.gameOver
	}
	s.board.Fix(s.current)
	s.current, s.hasCurrent = blocks.Piece{}, false
	s.compact()
	return s.respawn()
}

// compact removes completed rows and scores them, keeping the cache in step.
func (s *Session) compact() {
	s.board.Compact(func(row int) {
		s.cache.RemoveRow(row)
		s.score += s.scoring.RowBonus
		s.rowsCleared++
		log.Trace("Cleared row %d, %d rows cleared", row, s.rowsCleared)
	})
}

func (s *Session) respawn() bool {
	candidate := s.next
	s.next = blocks.Spawn(s.rng, board.Cols)
	if s.board.Collides(candidate) {
		s.gameOver = true
		log.Debug("Game over: %s does not fit, score %d", candidate, s.score)
		return false
	}
	s.current = candidate
	s.hasCurrent = true
	s.cache.Install(s.current)
	return true
}
