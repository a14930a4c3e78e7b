package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cbodonnell/blockfall/pkg/game/types"
	"github.com/cbodonnell/blockfall/pkg/log"
	"github.com/cbodonnell/blockfall/pkg/repositories/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PostgresRepository struct {
	conn *pgx.Conn
}

// NewPostgresRepository connects to the database and applies the migrations.
// The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string, migrations string) (Repository, error) {
	conn, err := connectDb(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if err := applyMigrations(ctx, migrations, func(ctx context.Context, migration string) error {
		_, err := conn.Exec(ctx, migration)
		return err
	}); err != nil {
		conn.Close(ctx)
		return nil, err
	}

	return &PostgresRepository{
		conn: conn,
	}, nil
}

func connectDb(ctx context.Context, connStr string) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	var username string
	var database string
	err = conn.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database)
	if err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("unable to query database: %v", err)
	}

	log.Info("Connected to %s as %s", database, username)

	return conn, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	return r.conn.Close(ctx)
}

func (r *PostgresRepository) SaveSnapshot(ctx context.Context, slot string, data []byte) error {
	q := `
	INSERT INTO snapshots (slot, updated_at, data) VALUES ($1, $2, $3)
	ON CONFLICT (slot) DO UPDATE SET updated_at = $2, data = $3;
	`
	_, err := r.conn.Exec(ctx, q, slot, time.Now().UnixMilli(), data)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %v", err)
	}

	return nil
}

func (r *PostgresRepository) LoadSnapshot(ctx context.Context, slot string) (*models.Snapshot, error) {
	q := `
	SELECT updated_at, data FROM snapshots WHERE slot = $1;
	`
	snapshot := &models.Snapshot{
		Slot: slot,
	}
	if err := r.conn.QueryRow(ctx, q, slot).Scan(&snapshot.UpdatedAt, &snapshot.Data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan snapshot: %v", err)
	}

	return snapshot, nil
}

func (r *PostgresRepository) DeleteSnapshot(ctx context.Context, slot string) error {
	if _, err := r.conn.Exec(ctx, `DELETE FROM snapshots WHERE slot = $1;`, slot); err != nil {
		return fmt.Errorf("failed to delete snapshot: %v", err)
	}

	return nil
}

func (r *PostgresRepository) AddScore(ctx context.Context, entry types.ScoreEntry) error {
	q := `
	INSERT INTO scores (id, label, score, rows_cleared, created_at) VALUES ($1, $2, $3, $4, $5);
	`
	_, err := r.conn.Exec(ctx, q, entry.ID.String(), entry.Label, int64(entry.Score), int64(entry.RowsCleared), entry.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert score: %v", err)
	}

	return nil
}

func (r *PostgresRepository) TopScores(ctx context.Context, limit int) ([]types.ScoreEntry, error) {
	q := `
	SELECT id::text, label, score, rows_cleared, created_at FROM scores
	ORDER BY score DESC, created_at ASC
	LIMIT $1;
	`
	if limit < 1 {
		return []types.ScoreEntry{}, nil
	}
	rows, err := r.conn.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %v", err)
	}
	defer rows.Close()

	entries := make([]types.ScoreEntry, 0, limit)
	for rows.Next() {
		var id string
		var score, rowsCleared int64
		entry := types.ScoreEntry{}
		if err := rows.Scan(&id, &entry.Label, &score, &rowsCleared, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan score: %v", err)
		}
		if entry.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("failed to parse score id %q: %v", id, err)
		}
		entry.Score = uint32(score)
		entry.RowsCleared = uint32(rowsCleared)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read scores: %v", err)
	}

	return entries, nil
}

func (r *PostgresRepository) HighScore(ctx context.Context) (uint32, error) {
	var high int64
	if err := r.conn.QueryRow(ctx, `SELECT COALESCE(MAX(score), 0) FROM scores;`).Scan(&high); err != nil {
		return 0, fmt.Errorf("failed to query high score: %v", err)
	}

	return uint32(high), nil
}
