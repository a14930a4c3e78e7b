package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/cbodonnell/blockfall/pkg/game/types"
	"github.com/cbodonnell/blockfall/pkg/log"
	"github.com/cbodonnell/blockfall/pkg/messages"
	"github.com/cbodonnell/blockfall/pkg/repositories"
	"github.com/cbodonnell/blockfall/pkg/state"
)

type SaveSnapshotWorker struct {
	repository   repositories.Repository
	stateManager state.StateManager
	slot         string
	interval     time.Duration

	// savedVersion is the state manager version last written to the repository
	savedVersion uint64
}

type NewSaveSnapshotWorkerOptions struct {
	Repository   repositories.Repository
	StateManager state.StateManager
	Slot         string
	Interval     time.Duration
}

// NewSaveSnapshotWorker creates a new SaveSnapshotWorker.
// The worker writes the save slot to the repository whenever the game saves,
// and on every interval in case an update was missed.
func NewSaveSnapshotWorker(opts NewSaveSnapshotWorkerOptions) *SaveSnapshotWorker {
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	return &SaveSnapshotWorker{
		repository:   opts.Repository,
		stateManager: opts.StateManager,
		slot:         opts.Slot,
		interval:     interval,
	}
}

// Restore loads the slot from the repository into the state manager.
// It must be called before Start.
func (w *SaveSnapshotWorker) Restore(ctx context.Context) error {
	snapshot, err := LoadSnapshot(ctx, w.repository, w.slot)
	if err != nil {
		return err
	}
	if snapshot == nil {
		log.Debug("No snapshot saved in slot %s", w.slot)
		return nil
	}
	if err := w.stateManager.Set(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to set snapshot: %v", err)
	}
	_, version, err := w.stateManager.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to get restored snapshot: %v", err)
	}
	w.savedVersion = version
	// drain the update for the snapshot that is already persisted
	select {
	case <-w.stateManager.Updated():
	default:
	}
	log.Info("Restored snapshot from slot %s with score %d", w.slot, snapshot.Score)
	return nil
}

func (w *SaveSnapshotWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// persist a save that raced the shutdown
			w.saveSnapshot(context.WithoutCancel(ctx))
			return
		case <-w.stateManager.Updated():
			w.saveSnapshot(ctx)
		case <-ticker.C:
			w.saveSnapshot(ctx)
		}
	}
}

func (w *SaveSnapshotWorker) saveSnapshot(ctx context.Context) {
	snapshot, version, err := w.stateManager.Get(ctx)
	if err != nil {
		log.Error("Failed to get saved snapshot: %v", err)
		return
	}
	if snapshot == nil || version == w.savedVersion {
		return
	}

	b, err := messages.SerializeSnapshot(snapshot)
	if err != nil {
		log.Error("Failed to serialize snapshot: %v", err)
		return
	}
	if err := w.repository.SaveSnapshot(ctx, w.slot, b); err != nil {
		log.Error("Failed to save snapshot: %v", err)
		return
	}
	w.savedVersion = version
	log.Debug("Saved snapshot version %d to slot %s", version, w.slot)
}

// LoadSnapshot reads and decodes the snapshot in slot. It returns nil and no
// error when the slot is empty.
func LoadSnapshot(ctx context.Context, repository repositories.Repository, slot string) (*types.Snapshot, error) {
	record, err := repository.LoadSnapshot(ctx, slot)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load snapshot: %v", err)
	}

	snapshot, err := messages.DeserializeSnapshot(record.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot in slot %s: %v", slot, err)
	}

	return snapshot, nil
}
