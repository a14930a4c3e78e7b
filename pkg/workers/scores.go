package workers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cbodonnell/blockfall/pkg/game/constants"
	"github.com/cbodonnell/blockfall/pkg/game/types"
	"github.com/cbodonnell/blockfall/pkg/log"
	"github.com/cbodonnell/blockfall/pkg/repositories"
)

// ScoreWorker records finished games. SubmitScore never blocks the caller;
// entries are written to the repository from Start.
type ScoreWorker struct {
	repository repositories.Repository
	entries    chan types.ScoreEntry
	topCount   int

	lock sync.RWMutex
	high uint32
	top  []types.ScoreEntry
}

type NewScoreWorkerOptions struct {
	Repository repositories.Repository
	// QueueSize is how many entries may wait to be written. Defaults to 16.
	QueueSize int
	// TopCount is the length of the scoreboard. Defaults to constants.TopScoreCount.
	TopCount int
}

func NewScoreWorker(opts NewScoreWorkerOptions) *ScoreWorker {
	queueSize := opts.QueueSize
	if queueSize < 1 {
		queueSize = 16
	}
	topCount := opts.TopCount
	if topCount < 1 {
		topCount = constants.TopScoreCount
	}
	return &ScoreWorker{
		repository: opts.Repository,
		entries:    make(chan types.ScoreEntry, queueSize),
		topCount:   topCount,
	}
}

// Init loads the scoreboard from the repository.
func (w *ScoreWorker) Init(ctx context.Context) error {
	top, err := w.repository.TopScores(ctx, w.topCount)
	if err != nil {
		return fmt.Errorf("failed to load top scores: %v", err)
	}
	high, err := w.repository.HighScore(ctx)
	if err != nil {
		return fmt.Errorf("failed to load high score: %v", err)
	}

	w.lock.Lock()
	defer w.lock.Unlock()
	w.top = top
	if high > w.high {
		w.high = high
	}
	return nil
}

func (w *ScoreWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.drain(context.WithoutCancel(ctx))
			return
		case entry := <-w.entries:
			w.saveScore(ctx, entry)
		}
	}
}

// drain writes the entries still waiting when the worker stops.
func (w *ScoreWorker) drain(ctx context.Context) {
	for {
		select {
		case entry := <-w.entries:
			w.saveScore(ctx, entry)
		default:
			return
		}
	}
}

func (w *ScoreWorker) saveScore(ctx context.Context, entry types.ScoreEntry) {
	if err := w.repository.AddScore(ctx, entry); err != nil {
		log.Error("Failed to save score %s: %v", entry.ID, err)
	}
}

// SubmitScore implements scheduler.ScoreSink. The scoreboard is updated at
// once. When the write queue is full the entry is not persisted.
func (w *ScoreWorker) SubmitScore(entry types.ScoreEntry) {
	entry.Label = types.NormalizeLabel(entry.Label)
	w.record(entry)

	select {
	case w.entries <- entry:
	default:
		log.Warn("Score queue is full, dropping score %d for %s", entry.Score, entry.Label)
	}
}

func (w *ScoreWorker) record(entry types.ScoreEntry) {
	w.lock.Lock()
	defer w.lock.Unlock()
	if entry.Score > w.high {
		w.high = entry.Score
	}
	w.top = append(w.top, entry)
	sort.SliceStable(w.top, func(i, j int) bool {
		return w.top[i].Score > w.top[j].Score
	})
	if len(w.top) > w.topCount {
		w.top = w.top[:w.topCount]
	}
}

// HighScore implements scheduler.ScoreSink.
func (w *ScoreWorker) HighScore() uint32 {
	w.lock.RLock()
	defer w.lock.RUnlock()
	return w.high
}

// TopScores returns a copy of the scoreboard, best first.
func (w *ScoreWorker) TopScores() []types.ScoreEntry {
	w.lock.RLock()
	defer w.lock.RUnlock()
	return append([]types.ScoreEntry(nil), w.top...)
}
