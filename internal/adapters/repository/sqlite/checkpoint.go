// Package sqlite provides a SQLite-backed checkpoint saver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/stategraph/stategraph/internal/core/checkpoint"
	"github.com/stategraph/stategraph/internal/infrastructure/metrics"
	"github.com/stategraph/stategraph/pkg/serialization"
)

// Saver implements checkpoint.Saver on a SQLite database. One row per
// session key; saves upsert so semantics stay last-write-wins.
type Saver struct {
	db         *sql.DB
	serializer *serialization.Serializer
}

// Open opens (or creates) a SQLite database at the given DSN and prepares
// the checkpoint table.
func Open(dsn string, serializer *serialization.Serializer) (*Saver, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	s := &Saver{db: db, serializer: serializer}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewFromDB wraps an existing database handle. The caller keeps ownership
// of the handle.
func NewFromDB(db *sql.DB, serializer *serialization.Serializer) (*Saver, error) {
	s := &Saver{db: db, serializer: serializer}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Saver) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS checkpoints (
			session_key TEXT PRIMARY KEY,
			state       BLOB NOT NULL,
			step        INTEGER NOT NULL,
			updated_at  TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create checkpoints table: %w", err)
	}
	return nil
}

// Save upserts the checkpoint row for its session key.
func (s *Saver) Save(ctx context.Context, cp *checkpoint.Checkpoint) error {
	if err := cp.Validate(); err != nil {
		return fmt.Errorf("checkpoint validation failed: %w", err)
	}
	data, err := s.serializer.Serialize(cp.State)
	if err != nil {
		return fmt.Errorf("checkpoint serialization failed: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO checkpoints (session_key, state, step, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (session_key) DO UPDATE SET
			state = excluded.state,
			step = excluded.step,
			updated_at = excluded.updated_at
	`, cp.SessionKey, data, cp.Step, cp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	metrics.IncCheckpointSaves("sqlite")
	return nil
}

// Load returns the checkpoint for a session key.
func (s *Saver) Load(ctx context.Context, sessionKey string) (*checkpoint.Checkpoint, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT state, step, updated_at FROM checkpoints WHERE session_key = ?
	`, sessionKey)

	var data []byte
	var step int
	var updatedAt time.Time
	if err := row.Scan(&data, &step, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, checkpoint.ErrNotFound
		}
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	cp := &checkpoint.Checkpoint{SessionKey: sessionKey, Step: step, UpdatedAt: updatedAt}
	if err := s.serializer.Deserialize(data, &cp.State); err != nil {
		return nil, fmt.Errorf("checkpoint deserialization failed: %w", err)
	}
	return cp, nil
}

// Delete removes the checkpoint row for a session key.
func (s *Saver) Delete(ctx context.Context, sessionKey string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM checkpoints WHERE session_key = ?`, sessionKey)
	if err != nil {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	if n == 0 {
		return checkpoint.ErrNotFound
	}
	return nil
}

// List returns the stored session keys.
func (s *Saver) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT session_key FROM checkpoints ORDER BY session_key`)
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("list checkpoints: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Close releases the underlying database handle.
func (s *Saver) Close() error {
	return s.db.Close()
}
