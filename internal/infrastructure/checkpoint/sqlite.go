package checkpoint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/johnquangdev/talk-assistant/internal/domain/entities"
)

const createCheckpointsTable = `
CREATE TABLE IF NOT EXISTS checkpoints (
	recording_id TEXT PRIMARY KEY,
	snapshot     BLOB NOT NULL,
	total_cost   REAL NOT NULL,
	updated_at   REAL NOT NULL
)`

// SQLiteStore keeps snapshots in a local SQLite file
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and creates) the database at path.
// Use ":memory:" for a throwaway store.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, createCheckpointsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create checkpoints table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Save upserts the snapshot row
func (s *SQLiteStore) Save(ctx context.Context, snap *entities.RecordingSnapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO checkpoints (recording_id, snapshot, total_cost, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(recording_id) DO UPDATE SET
			snapshot = excluded.snapshot,
			total_cost = excluded.total_cost,
			updated_at = excluded.updated_at
	`, snap.ID.String(), data, snap.TotalCost, unixSeconds(time.Now()))
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// Load reads the snapshot row
func (s *SQLiteStore) Load(ctx context.Context, recordingID uuid.UUID) (*entities.RecordingSnapshot, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT snapshot FROM checkpoints WHERE recording_id = ?`,
		recordingID.String(),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	return decode(data)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
