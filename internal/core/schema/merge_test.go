package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := Define(
		Field{Name: "text"},
		Field{Name: "count", Default: 0},
		Field{Name: "history", Reducer: ReducerAppend},
	)
	require.NoError(t, err)
	return s
}

func TestMerge(t *testing.T) {
	s := testSchema(t)

	t.Run("replace supersedes", func(t *testing.T) {
		base := State{"text": "old", "count": 1}
		out, err := s.Merge(base, State{"text": "new"})
		require.NoError(t, err)
		assert.Equal(t, "new", out["text"])
		assert.Equal(t, 1, out["count"])
	})

	t.Run("append single item", func(t *testing.T) {
		out, err := s.Merge(State{"history": []any{"a"}}, State{"history": "b"})
		require.NoError(t, err)
		assert.Equal(t, []any{"a", "b"}, out["history"])
	})

	t.Run("append sequence preserves order", func(t *testing.T) {
		out, err := s.Merge(State{"history": []any{"a"}}, State{"history": []any{"b", "c"}})
		require.NoError(t, err)
		assert.Equal(t, []any{"a", "b", "c"}, out["history"])
	})

	t.Run("append typed slice", func(t *testing.T) {
		out, err := s.Merge(State{}, State{"history": []string{"a", "b"}})
		require.NoError(t, err)
		assert.Equal(t, []any{"a", "b"}, out["history"])
	})

	t.Run("absent fields untouched", func(t *testing.T) {
		base := State{"text": "keep", "history": []any{"a"}}
		out, err := s.Merge(base, State{"count": 2})
		require.NoError(t, err)
		assert.Equal(t, "keep", out["text"])
		assert.Equal(t, []any{"a"}, out["history"])
		assert.Equal(t, 2, out["count"])
	})

	t.Run("unknown field fails", func(t *testing.T) {
		_, err := s.Merge(State{}, State{"bogus": 1})
		assert.ErrorIs(t, err, ErrSchemaViolation)
	})

	t.Run("base not mutated", func(t *testing.T) {
		base := State{"text": "old", "history": []any{"a"}}
		_, err := s.Merge(base, State{"text": "new", "history": "b"})
		require.NoError(t, err)
		assert.Equal(t, "old", base["text"])
		assert.Equal(t, []any{"a"}, base["history"])
	})
}

// Applying two partials in sequence must equal applying their field-by-field
// composition: last write for replace fields, concatenation for append.
func TestMergeSequenceEqualsComposition(t *testing.T) {
	s := testSchema(t)
	base := State{"text": "t0", "count": 0, "history": []any{"h0"}}

	p1 := State{"text": "t1", "history": []any{"h1", "h2"}}
	p2 := State{"count": 5, "history": "h3"}

	step1, err := s.Merge(base, p1)
	require.NoError(t, err)
	sequential, err := s.Merge(step1, p2)
	require.NoError(t, err)

	composed := State{"text": "t1", "count": 5, "history": []any{"h1", "h2", "h3"}}
	direct, err := s.Merge(base, composed)
	require.NoError(t, err)

	assert.Equal(t, direct, sequential)
}

func TestMergeAppendLengths(t *testing.T) {
	s := testSchema(t)
	st := s.Zero()

	chunks := [][]any{{"a"}, {"b", "c"}, {"d", "e", "f"}}
	total := 0
	for _, chunk := range chunks {
		var err error
		st, err = s.Merge(st, State{"history": chunk})
		require.NoError(t, err)
		total += len(chunk)
	}
	assert.Len(t, st["history"], total)
	assert.Equal(t, []any{"a", "b", "c", "d", "e", "f"}, st["history"])
}
