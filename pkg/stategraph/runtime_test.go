package stategraph

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// End-to-end through the public surface only: define a schema, build a
// conversational graph, run it twice under one session.
func TestRuntimeEndToEnd(t *testing.T) {
	s, err := DefineSchema(
		Field{Name: "input"},
		Field{Name: "messages", Reducer: ReducerAppend},
		Field{Name: "reply"},
	)
	require.NoError(t, err)

	respond := func(_ context.Context, st State) (State, error) {
		input := st.GetString("input")
		return State{
			"messages": "user: " + input,
			"reply":    "echo: " + input,
		}, nil
	}

	b := NewBuilder(s)
	require.NoError(t, b.AddNode("respond", respond))
	require.NoError(t, b.AddEdge("respond", End))
	b.SetEntry("respond")
	g, err := b.Compile(Config{Name: "echo", StepLimit: 3})
	require.NoError(t, err)

	rt := NewRuntime()
	ctx := context.Background()
	opts := Options{SessionKey: "chat-1"}

	res, err := rt.Invoke(ctx, g, State{"input": "hello"}, opts)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, res.Status)
	assert.Equal(t, "echo: hello", res.State.GetString("reply"))

	res, err = rt.Invoke(ctx, g, State{"input": "again"}, opts)
	require.NoError(t, err)

	messages := res.State.GetSlice("messages")
	require.Len(t, messages, 2)
	assert.Equal(t, "user: hello", messages[0])
	assert.Equal(t, "user: again", messages[1])
}

func TestRuntimeStream(t *testing.T) {
	s, err := DefineSchema(Field{Name: "counter", Default: 0})
	require.NoError(t, err)

	b := NewBuilder(s)
	require.NoError(t, b.AddNode("bump", func(_ context.Context, st State) (State, error) {
		return State{"counter": st.GetInt("counter") + 1}, nil
	}))
	require.NoError(t, b.AddConditionalEdge("bump", func(st State) string {
		if st.GetInt("counter") < 2 {
			return "again"
		}
		return "stop"
	}, map[string]string{"again": "bump", "stop": End}))
	b.SetEntry("bump")
	g, err := b.Compile(Config{Name: "counting", StepLimit: 5})
	require.NoError(t, err)

	var statuses []Status
	for ev := range NewRuntime().Stream(context.Background(), g, State{}, Options{}) {
		statuses = append(statuses, ev.Status)
	}
	require.Len(t, statuses, 3)
	assert.Equal(t, StatusCompleted, statuses[2])
}

func TestRuntimeWithExplicitSaver(t *testing.T) {
	saver := NewMemorySaver()
	rt := NewRuntime(WithSaver(saver))

	s, err := DefineSchema(Field{Name: "input"})
	require.NoError(t, err)
	b := NewBuilder(s)
	require.NoError(t, b.AddNode("noop", func(_ context.Context, _ State) (State, error) {
		return State{}, nil
	}))
	b.SetEntry("noop")
	g, err := b.Compile(Config{Name: "noop", StepLimit: 2})
	require.NoError(t, err)

	_, err = rt.Invoke(context.Background(), g, State{"input": "x"}, Options{SessionKey: "k"})
	require.NoError(t, err)

	cp, err := saver.Load(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "k", cp.SessionKey)
	assert.Equal(t, 1, cp.Step)
}

func TestCompileWarningsSurface(t *testing.T) {
	s, err := DefineSchema(Field{Name: "input"})
	require.NoError(t, err)

	b := NewBuilder(s)
	require.NoError(t, b.AddNode("a", func(_ context.Context, _ State) (State, error) { return State{}, nil }))
	require.NoError(t, b.AddNode("orphan", func(_ context.Context, _ State) (State, error) { return State{}, nil }))
	require.NoError(t, b.AddEdge("a", End))
	require.NoError(t, b.AddEdge("orphan", End))
	b.SetEntry("a")
	g, err := b.Compile(Config{Name: "warned", StepLimit: 2})
	require.NoError(t, err)

	require.Len(t, g.Warnings, 1)
	assert.True(t, strings.Contains(g.Warnings[0], "orphan"))
}
