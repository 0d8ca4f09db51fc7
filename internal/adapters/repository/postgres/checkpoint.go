// Package postgres provides a PostgreSQL-backed checkpoint saver.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stategraph/stategraph/internal/core/checkpoint"
	"github.com/stategraph/stategraph/internal/infrastructure/metrics"
	"github.com/stategraph/stategraph/pkg/serialization"
)

// Saver implements checkpoint.Saver on PostgreSQL through a pgx pool.
type Saver struct {
	pool       *pgxpool.Pool
	serializer *serialization.Serializer
}

// New creates a saver over an existing pool. The caller keeps ownership of
// the pool.
func New(pool *pgxpool.Pool, serializer *serialization.Serializer) *Saver {
	return &Saver{pool: pool, serializer: serializer}
}

// EnsureSchema creates the checkpoint table when missing.
func (s *Saver) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS checkpoints (
			session_key TEXT PRIMARY KEY,
			state       BYTEA NOT NULL,
			step        INTEGER NOT NULL,
			updated_at  TIMESTAMPTZ NOT NULL
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
	_, err = s.pool.Exec(ctx, `
		INSERT INTO checkpoints (session_key, state, step, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_key) DO UPDATE SET
			state = EXCLUDED.state,
			step = EXCLUDED.step,
			updated_at = EXCLUDED.updated_at
	`, cp.SessionKey, data, cp.Step, cp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	metrics.IncCheckpointSaves("postgres")
	return nil
}

// Load returns the checkpoint for a session key.
func (s *Saver) Load(ctx context.Context, sessionKey string) (*checkpoint.Checkpoint, error) {
	var data []byte
	var step int
	var updatedAt time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT state, step, updated_at FROM checkpoints WHERE session_key = $1
	`, sessionKey).Scan(&data, &step, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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
	tag, err := s.pool.Exec(ctx, `DELETE FROM checkpoints WHERE session_key = $1`, sessionKey)
	if err != nil {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return checkpoint.ErrNotFound
	}
	return nil
}

// List returns the stored session keys.
func (s *Saver) List(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT session_key FROM checkpoints ORDER BY session_key`)
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
