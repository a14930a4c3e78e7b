package scheduler

import (
	"context"
	"time"

	"github.com/cbodonnell/blockfall/pkg/blocks"
	"github.com/cbodonnell/blockfall/pkg/display"
	"github.com/cbodonnell/blockfall/pkg/game"
	"github.com/cbodonnell/blockfall/pkg/game/constants"
	"github.com/cbodonnell/blockfall/pkg/game/types"
	"github.com/cbodonnell/blockfall/pkg/input"
	"github.com/cbodonnell/blockfall/pkg/log"
)

type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateGameOver
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRunning:
		return "Running"
	case StatePaused:
		return "Paused"
	case StateGameOver:
		return "GameOver"
	}
	return "Unknown"
}

// SnapshotStore keeps the saved game.
type SnapshotStore interface {
	Save(ctx context.Context, snapshot *types.Snapshot) error
	// Load returns nil and no error when nothing has been saved.
	Load(ctx context.Context) (*types.Snapshot, error)
}

// ScoreSink receives finished games. SubmitScore must not block.
type ScoreSink interface {
	SubmitScore(entry types.ScoreEntry)
	HighScore() uint32
}

// StatusListener is told whenever the status changes. It is called from Tick.
type StatusListener interface {
	StatusChanged(status Status)
}

// StatusListenerFunc adapts a function to a StatusListener.
type StatusListenerFunc func(status Status)

func (f StatusListenerFunc) StatusChanged(status Status) {
	f(status)
}

// Status is what a front end shows next to the board.
type Status struct {
	State       State
	Score       uint32
	HighScore   uint32
	RowsCleared uint32
	Next        blocks.Piece
}

// Scheduler drives a session from its input sources and the clock.
// Tick is not safe for concurrent use.
type Scheduler struct {
	session  *game.Session
	clock    Clock
	buttons  input.ButtonSource
	joystick input.JoystickSource
	keys     input.KeySource
	sinks    []display.RenderSink
	store    SnapshotStore
	scores   ScoreSink
	label    string

	listeners  []StatusListener
	lastStatus Status
	notified   bool

	state      State
	lastDrop   int64
	repeater   *input.Repeater
	pendingKey input.Action
}

// NewSchedulerOptions contains options for creating a new Scheduler.
// Any input source, the store and the score sink may be nil.
type NewSchedulerOptions struct {
	Session  *game.Session
	Clock    Clock
	Buttons  input.ButtonSource
	Joystick input.JoystickSource
	Keys     input.KeySource
	Sinks    []display.RenderSink
	Store    SnapshotStore
	Scores   ScoreSink
	// Listeners are told about status changes
	Listeners []StatusListener
	// Label is recorded with every submitted score
	Label string
}

func NewScheduler(opts NewSchedulerOptions) *Scheduler {
	if opts.Session == nil {
		panic("scheduler requires a session")
	}
	clock := opts.Clock
	if clock == nil {
		clock = NewSystemClock()
	}
	return &Scheduler{
		session:   opts.Session,
		clock:     clock,
		buttons:   opts.Buttons,
		joystick:  opts.Joystick,
		keys:      opts.Keys,
		sinks:     opts.Sinks,
		store:     opts.Store,
		scores:    opts.Scores,
		listeners: opts.Listeners,
		label:     types.NormalizeLabel(opts.Label),
		repeater:  input.NewRepeater(constants.InitialRepeatDelay, constants.RepeatInterval),
	}
}

func (s *Scheduler) State() State {
	return s.state
}

func (s *Scheduler) Session() *game.Session {
	return s.session
}

// AddSink registers a render sink and schedules a full redraw for it.
func (s *Scheduler) AddSink(sink display.RenderSink) {
	s.sinks = append(s.sinks, sink)
	s.session.Cache().MarkAllDirty()
}

func (s *Scheduler) Status() Status {
	high := s.session.Score()
	if s.scores != nil && s.scores.HighScore() > high {
		high = s.scores.HighScore()
	}
	return Status{
		State:       s.state,
		Score:       s.session.Score(),
		HighScore:   high,
		RowsCleared: s.session.RowsCleared(),
		Next:        s.session.Next(),
	}
}

// Run calls Tick every interval until ctx is done. Before each tick it calls
// refresh, if set, and redraws everything when refresh reports true.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration, refresh func() bool) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if refresh != nil && refresh() {
				s.Refresh()
			}
			s.Tick(ctx)
		}
	}
}

// Tick polls every input source once, applies at most one input, applies
// gravity and flushes the changed rows to the render sinks.
//
// A held button outranks the joystick, and both outrank a key. A key that
// arrives while a held input is applied waits for the next tick.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.clock.Milliseconds()

	var button input.ButtonEvent
	if s.buttons != nil {
		button = s.buttons.PollButton()
	}
	joystick := input.ActionNone
	if s.joystick != nil {
		joystick = s.joystick.PollJoystick()
	}
	key := s.pendingKey
	s.pendingKey = input.ActionNone
	if key == input.ActionNone && s.keys != nil {
		key = s.keys.PollKey()
	}

	held, fresh := joystick, false
	if button.Action != input.ActionNone {
		held, fresh = button.Action, button.Pressed
	}

	switch {
	case s.repeater.Observe(held, fresh, now):
		if key != input.ActionNone {
			s.pendingKey = key
		}
		s.apply(ctx, held, now)
	case key != input.ActionNone:
		s.apply(ctx, key, now)
	}

	if s.state == StateRunning {
		s.applyGravity(now)
	}

	s.session.Cache().Flush(s.sinks...)
	s.notify()
}

// Apply carries out one action at the current time, subject to the state:
// while paused only pause and new game are accepted, and before a game or
// after game over only new game and load.
func (s *Scheduler) Apply(ctx context.Context, action input.Action) {
	s.apply(ctx, action, s.clock.Milliseconds())
	s.session.Cache().Flush(s.sinks...)
	s.notify()
}

// AddListener registers a status listener. It hears the current status on the next tick.
func (s *Scheduler) AddListener(listener StatusListener) {
	s.listeners = append(s.listeners, listener)
	s.notified = false
}

// Refresh makes the next tick redraw the whole board on every sink and repeat
// the status to every listener.
func (s *Scheduler) Refresh() {
	s.session.Cache().MarkAllDirty()
	s.notified = false
}

func (s *Scheduler) notify() {
	if len(s.listeners) == 0 {
		return
	}
	status := s.Status()
	if s.notified && status == s.lastStatus {
		return
	}
	s.lastStatus, s.notified = status, true
	for _, listener := range s.listeners {
		listener.StatusChanged(status)
	}
}

func (s *Scheduler) apply(ctx context.Context, action input.Action, now int64) {
	switch s.state {
	case StateIdle, StateGameOver:
		switch action {
		case input.ActionNewGame:
			s.startGame(now)
		case input.ActionLoad:
			s.loadGame(ctx, now)
		}
	case StatePaused:
		switch action {
		case input.ActionPause:
			s.resume(now)
		case input.ActionNewGame:
			s.startGame(now)
		}
	case StateRunning:
		s.applyRunning(ctx, action, now)
	}
}

func (s *Scheduler) applyRunning(ctx context.Context, action input.Action, now int64) {
	switch action {
	case input.ActionLeft:
		s.session.AttemptMove(blocks.DirectionLeft)
	case input.ActionRight:
		s.session.AttemptMove(blocks.DirectionRight)
	case input.ActionRotate:
		s.session.AttemptRotate()
	case input.ActionDrop:
		if _, alive := s.session.HardDrop(); !alive {
			s.endGame()
			return
		}
		s.lastDrop = now
	case input.ActionPause:
		s.setState(StatePaused)
	case input.ActionNewGame:
		s.startGame(now)
	case input.ActionSave:
		s.saveGame(ctx)
	case input.ActionLoad:
		s.loadGame(ctx, now)
	}
}

func (s *Scheduler) applyGravity(now int64) {
	if now-s.lastDrop < game.GravityInterval(s.session.RowsCleared()).Milliseconds() {
		return
	}
	s.lastDrop = now
	if s.session.AttemptDropOneRow() {
		return
	}
	if !s.session.FixAndRespawn() {
		s.endGame()
	}
}

func (s *Scheduler) startGame(now int64) {
	s.clearQueued()
	s.session.NewGame()
	s.lastDrop = now
	s.repeater.Reset()
	s.setState(StateRunning)
}

func (s *Scheduler) resume(now int64) {
	s.clearQueued()
	s.lastDrop = now
	s.repeater.Reset()
	s.setState(StateRunning)
}

func (s *Scheduler) endGame() {
	s.setState(StateGameOver)
	log.Info("Game over with score %d after %d rows", s.session.Score(), s.session.RowsCleared())
	if s.scores != nil {
		s.scores.SubmitScore(types.NewScoreEntry(s.label, s.session.Score(), s.session.RowsCleared(), time.Now().UnixMilli()))
	}
}

func (s *Scheduler) saveGame(ctx context.Context) {
	if s.store == nil {
		log.Warn("No snapshot store, not saving")
		return
	}
	if err := s.store.Save(ctx, s.session.Snapshot(time.Now().UnixMilli())); err != nil {
		log.Error("Failed to save game: %v", err)
		return
	}
	log.Debug("Game saved with score %d", s.session.Score())
}

// loadGame resumes the saved game, or starts a new one when nothing is saved.
func (s *Scheduler) loadGame(ctx context.Context, now int64) {
	var snapshot *types.Snapshot
	if s.store != nil {
		var err error
		snapshot, err = s.store.Load(ctx)
		if err != nil {
			log.Error("Failed to load game: %v", err)
			return
		}
	}
	if snapshot == nil {
		log.Debug("No saved game, starting a new one")
		s.startGame(now)
		return
	}
	if err := s.session.Restore(snapshot); err != nil {
		log.Error("Failed to restore game: %v", err)
		return
	}
	s.lastDrop = now
	s.repeater.Reset()
	if snapshot.GameOver {
		s.setState(StateGameOver)
		return
	}
	s.setState(StateRunning)
}

func (s *Scheduler) setState(state State) {
	if s.state == state {
		return
	}
	log.Debug("Scheduler state %s -> %s", s.state, state)
	s.state = state
	s.clearQueued()
}

// clearQueued discards inputs queued before a state change so none of them
// acts on the new state.
func (s *Scheduler) clearQueued() {
	s.pendingKey = input.ActionNone
	discarded := 0
	if c, ok := s.buttons.(input.Clearer); ok {
		discarded += c.Clear()
	}
	if c, ok := s.keys.(input.Clearer); ok {
		discarded += c.Clear()
	}
	if discarded > 0 {
		log.Debug("Discarded %d queued inputs", discarded)
	}
}
