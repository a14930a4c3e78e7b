package repositories

import (
	"context"

	"github.com/cbodonnell/blockfall/pkg/game/types"
	"github.com/cbodonnell/blockfall/pkg/repositories/models"
)

type Repository interface {
	Close(ctx context.Context) error
	// SaveSnapshot creates or replaces the snapshot in slot.
	SaveSnapshot(ctx context.Context, slot string, data []byte) error
	// LoadSnapshot returns *ErrNotFound when slot is empty.
	LoadSnapshot(ctx context.Context, slot string) (*models.Snapshot, error)
	DeleteSnapshot(ctx context.Context, slot string) error
	AddScore(ctx context.Context, entry types.ScoreEntry) error
	// TopScores returns at most limit entries, best first. Ties go to the earlier game.
	TopScores(ctx context.Context, limit int) ([]types.ScoreEntry, error)
	// HighScore returns 0 when no score has been recorded.
	HighScore(ctx context.Context) (uint32, error)
}
