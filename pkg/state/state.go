package state

import (
	"context"

	"github.com/cbodonnell/blockfall/pkg/game/types"
)

// StateManager provides shared access to the saved game.
// Implementations must be thread-safe.
type StateManager interface {
	// Get returns a copy of the saved snapshot and its version.
	// The snapshot is nil when nothing has been saved.
	Get(ctx context.Context) (*types.Snapshot, uint64, error)
	// Set replaces the saved snapshot and bumps the version.
	Set(ctx context.Context, snapshot *types.Snapshot) error
	// Updated receives a value after Set. Updates that arrive while one is
	// pending are coalesced.
	Updated() <-chan struct{}
}
