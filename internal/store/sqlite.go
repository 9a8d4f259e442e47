package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lox/holdemtrainer/internal/game"
)

// SnapshotRepo persists game snapshots in SQLite.
type SnapshotRepo struct {
	db *sql.DB
}

// OpenSnapshotRepo opens (or creates) the database at path and makes sure
// the schema exists. Use ":memory:" for a throwaway database.
func OpenSnapshotRepo(ctx context.Context, path string) (*SnapshotRepo, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	// An in-memory database exists per connection.
	db.SetMaxOpenConns(1)

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SnapshotRepo{db: db}, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			hand_number INTEGER NOT NULL,
			data BLOB NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create snapshots table: %w", err)
	}
	return nil
}

// Save stores the snapshot for id, replacing any earlier one.
func (r *SnapshotRepo) Save(ctx context.Context, id string, snap game.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", id, err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, hand_number, data)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			hand_number = excluded.hand_number,
			data = excluded.data,
			updated_at = CURRENT_TIMESTAMP
	`, id, snap.HandNumber, data)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", id, err)
	}
	return nil
}

// Load returns the latest snapshot for id.
func (r *SnapshotRepo) Load(ctx context.Context, id string) (game.Snapshot, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, "SELECT data FROM snapshots WHERE id = ?", id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Snapshot{}, fmt.Errorf("snapshot %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("load snapshot %s: %w", id, err)
	}

	var snap game.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return game.Snapshot{}, fmt.Errorf("decode snapshot %s: %w", id, err)
	}
	return snap, nil
}

// Delete removes the snapshot for id.
func (r *SnapshotRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM snapshots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("snapshot %s: %w", id, ErrNotFound)
	}
	return nil
}

// List returns the stored IDs, most recently updated first.
func (r *SnapshotRepo) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id FROM snapshots ORDER BY updated_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the database.
func (r *SnapshotRepo) Close() error {
	return r.db.Close()
}
