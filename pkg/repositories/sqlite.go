package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cbodonnell/blockfall/pkg/game/types"
	"github.com/cbodonnell/blockfall/pkg/repositories/models"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens the database at path and applies every migration
// in the migrations directory in name order. Migrations must be idempotent.
func NewSQLiteRepository(ctx context.Context, path string, migrations string) (Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	if err := applyMigrations(ctx, migrations, func(ctx context.Context, migration string) error {
		_, err := db.ExecContext(ctx, migration)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func applyMigrations(ctx context.Context, migrations string, exec func(ctx context.Context, migration string) error) error {
	dir, err := os.ReadDir(migrations)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %v", err)
	}

	for _, entry := range dir {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}

		migrationPath := filepath.Join(migrations, entry.Name())
		migration, err := os.ReadFile(migrationPath)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %v", migrationPath, err)
		}

		if err := exec(ctx, string(migration)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %v", migrationPath, err)
		}
	}

	return nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, slot string, data []byte) error {
	q := `
	INSERT OR REPLACE INTO snapshots (slot, updated_at, data)
	VALUES (?, ?, ?);
	`
	_, err := r.db.ExecContext(ctx, q, slot, time.Now().UnixMilli(), data)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %v", err)
	}

	return nil
}

func (r *SQLiteRepository) LoadSnapshot(ctx context.Context, slot string) (*models.Snapshot, error) {
	q := `
	SELECT updated_at, data FROM snapshots WHERE slot = ?;
	`
	snapshot := &models.Snapshot{
		Slot: slot,
	}
	if err := r.db.QueryRowContext(ctx, q, slot).Scan(&snapshot.UpdatedAt, &snapshot.Data); err != nil {
		if err == sql.ErrNoRows {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan snapshot: %v", err)
	}

	return snapshot, nil
}

func (r *SQLiteRepository) DeleteSnapshot(ctx context.Context, slot string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE slot = ?;`, slot); err != nil {
		return fmt.Errorf("failed to delete snapshot: %v", err)
	}

	return nil
}

func (r *SQLiteRepository) AddScore(ctx context.Context, entry types.ScoreEntry) error {
	q := `
	INSERT INTO scores (id, label, score, rows_cleared, created_at)
	VALUES (?, ?, ?, ?, ?);
	`
	_, err := r.db.ExecContext(ctx, q, entry.ID.String(), entry.Label, entry.Score, entry.RowsCleared, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert score: %v", err)
	}

	return nil
}

func (r *SQLiteRepository) TopScores(ctx context.Context, limit int) ([]types.ScoreEntry, error) {
	q := `
	SELECT id, label, score, rows_cleared, created_at FROM scores
	ORDER BY score DESC, created_at ASC
	LIMIT ?;
	`
	if limit < 1 {
		return []types.ScoreEntry{}, nil
	}
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %v", err)
	}
	defer rows.Close()

	entries := make([]types.ScoreEntry, 0, limit)
	for rows.Next() {
		var id string
		var entry types.ScoreEntry
		if err := rows.Scan(&id, &entry.Label, &entry.Score, &entry.RowsCleared, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan score: %v", err)
		}
		if entry.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("failed to parse score id %q: %v", id, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read scores: %v", err)
	}

	return entries, nil
}

func (r *SQLiteRepository) HighScore(ctx context.Context) (uint32, error) {
	var high uint32
	if err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(score), 0) FROM scores;`).Scan(&high); err != nil {
		return 0, fmt.Errorf("failed to query high score: %v", err)
	}

	return high, nil
}
