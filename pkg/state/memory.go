package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/cbodonnell/blockfall/pkg/game/types"
)

// InMemoryStateManager is the save slot the game writes to. It also serves
// as the game's snapshot store.
type InMemoryStateManager struct {
	lock     sync.RWMutex
	snapshot *types.Snapshot
	version  uint64
	updated  chan struct{}
}

func NewInMemoryStateManager() *InMemoryStateManager {
	return &InMemoryStateManager{
		updated: make(chan struct{}, 1),
	}
}

func (m *InMemoryStateManager) Get(ctx context.Context) (*types.Snapshot, uint64, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	if m.snapshot == nil {
		return nil, m.version, nil
	}
	// a snapshot holds no references, so a value copy is deep
	copy := *m.snapshot
	return &copy, m.version, nil
}

func (m *InMemoryStateManager) Set(ctx context.Context, snapshot *types.Snapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot is nil")
	}

	m.lock.Lock()
	copy := *snapshot
	m.snapshot = &copy
	m.version++
	m.lock.Unlock()

	select {
	case m.updated <- struct{}{}:
	default:
	}
	return nil
}

func (m *InMemoryStateManager) Updated() <-chan struct{} {
	return m.updated
}

// Save implements scheduler.SnapshotStore.
func (m *InMemoryStateManager) Save(ctx context.Context, snapshot *types.Snapshot) error {
	return m.Set(ctx, snapshot)
}

// Load implements scheduler.SnapshotStore.
func (m *InMemoryStateManager) Load(ctx context.Context) (*types.Snapshot, error) {
	snapshot, _, err := m.Get(ctx)
	return snapshot, err
}
