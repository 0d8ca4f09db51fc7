package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stategraph/stategraph/internal/core/checkpoint"
	"github.com/stategraph/stategraph/internal/core/schema"
	"github.com/stategraph/stategraph/pkg/serialization"
)

func newTestSaver(t *testing.T) *Saver {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "checkpoints.db")
	s, err := Open(dsn, serialization.Default())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoad(t *testing.T) {
	s := newTestSaver(t)
	ctx := context.Background()

	cp := &checkpoint.Checkpoint{
		SessionKey: "session-1",
		State: schema.State{
			"input":   "hello",
			"history": []any{"one", "two"},
		},
		Step:      3,
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.Save(ctx, cp))

	loaded, err := s.Load(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "session-1", loaded.SessionKey)
	assert.Equal(t, 3, loaded.Step)
	assert.Equal(t, "hello", loaded.State.GetString("input"))
	assert.Equal(t, []any{"one", "two"}, loaded.State.GetSlice("history"))
	assert.WithinDuration(t, cp.UpdatedAt, loaded.UpdatedAt, time.Second)
}

func TestSaveUpserts(t *testing.T) {
	s := newTestSaver(t)
	ctx := context.Background()

	first := &checkpoint.Checkpoint{
		SessionKey: "session-1",
		State:      schema.State{"input": "first"},
		Step:       1,
		UpdatedAt:  time.Now().UTC(),
	}
	require.NoError(t, s.Save(ctx, first))

	second := &checkpoint.Checkpoint{
		SessionKey: "session-1",
		State:      schema.State{"input": "second"},
		Step:       2,
		UpdatedAt:  time.Now().UTC(),
	}
	require.NoError(t, s.Save(ctx, second))

	loaded, err := s.Load(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Step)
	assert.Equal(t, "second", loaded.State.GetString("input"))

	keys, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"session-1"}, keys)
}

func TestSaveRejectsInvalid(t *testing.T) {
	s := newTestSaver(t)
	err := s.Save(context.Background(), &checkpoint.Checkpoint{State: schema.State{}})
	assert.ErrorIs(t, err, checkpoint.ErrInvalidSessionKey)
}

func TestLoadMissing(t *testing.T) {
	s := newTestSaver(t)
	_, err := s.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, checkpoint.ErrNotFound)
}

func TestDelete(t *testing.T) {
	s := newTestSaver(t)
	ctx := context.Background()

	cp := &checkpoint.Checkpoint{
		SessionKey: "session-1",
		State:      schema.State{"input": "x"},
		UpdatedAt:  time.Now().UTC(),
	}
	require.NoError(t, s.Save(ctx, cp))
	require.NoError(t, s.Delete(ctx, "session-1"))

	_, err := s.Load(ctx, "session-1")
	assert.ErrorIs(t, err, checkpoint.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "session-1"), checkpoint.ErrNotFound)
}

func TestListOrdered(t *testing.T) {
	s := newTestSaver(t)
	ctx := context.Background()

	for _, key := range []string{"c", "a", "b"} {
		cp := &checkpoint.Checkpoint{
			SessionKey: key,
			State:      schema.State{"input": key},
			UpdatedAt:  time.Now().UTC(),
		}
		require.NoError(t, s.Save(ctx, cp))
	}

	keys, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}

// Persistence survives reopening the same database file.
func TestReopen(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "checkpoints.db")
	ctx := context.Background()

	s, err := Open(dsn, serialization.Default())
	require.NoError(t, err)
	cp := &checkpoint.Checkpoint{
		SessionKey: "session-1",
		State:      schema.State{"input": "persisted"},
		Step:       5,
		UpdatedAt:  time.Now().UTC(),
	}
	require.NoError(t, s.Save(ctx, cp))
	require.NoError(t, s.Close())

	reopened, err := Open(dsn, serialization.Default())
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, 5, loaded.Step)
	assert.Equal(t, "persisted", loaded.State.GetString("input"))
}
