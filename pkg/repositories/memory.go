package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cbodonnell/blockfall/pkg/game/types"
	"github.com/cbodonnell/blockfall/pkg/repositories/models"
)

// MemoryRepository keeps everything in process. It is used for offline play
// and in tests.
type MemoryRepository struct {
	lock      sync.RWMutex
	snapshots map[string]models.Snapshot
	scores    []types.ScoreEntry
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		snapshots: make(map[string]models.Snapshot),
	}
}

func (r *MemoryRepository) Close(ctx context.Context) error {
	return nil
}

func (r *MemoryRepository) SaveSnapshot(ctx context.Context, slot string, data []byte) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.snapshots[slot] = models.Snapshot{
		Slot:      slot,
		UpdatedAt: time.Now().UnixMilli(),
		Data:      append([]byte(nil), data...),
	}
	return nil
}

func (r *MemoryRepository) LoadSnapshot(ctx context.Context, slot string) (*models.Snapshot, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	snapshot, ok := r.snapshots[slot]
	if !ok {
		return nil, &ErrNotFound{}
	}
	snapshot.Data = append([]byte(nil), snapshot.Data...)
	return &snapshot, nil
}

func (r *MemoryRepository) DeleteSnapshot(ctx context.Context, slot string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.snapshots, slot)
	return nil
}

func (r *MemoryRepository) AddScore(ctx context.Context, entry types.ScoreEntry) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.scores = append(r.scores, entry)
	sort.SliceStable(r.scores, func(i, j int) bool {
		if r.scores[i].Score != r.scores[j].Score {
			return r.scores[i].Score > r.scores[j].Score
		}
		return r.scores[i].Timestamp < r.scores[j].Timestamp
	})
	return nil
}

func (r *MemoryRepository) TopScores(ctx context.Context, limit int) ([]types.ScoreEntry, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if limit > len(r.scores) {
		limit = len(r.scores)
	}
	if limit < 0 {
		limit = 0
	}
	return append([]types.ScoreEntry(nil), r.scores[:limit]...), nil
}

func (r *MemoryRepository) HighScore(ctx context.Context) (uint32, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if len(r.scores) == 0 {
		return 0, nil
	}
	return r.scores[0].Score, nil
}
