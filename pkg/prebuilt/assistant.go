package prebuilt

import (
	"context"
	"fmt"

	"github.com/stategraph/stategraph/internal/core/graph"
	"github.com/stategraph/stategraph/internal/core/schema"
	"github.com/stategraph/stategraph/internal/llm"
)

// Field names of the assistant graph state.
const (
	FieldQuestion = "question"
	FieldReply    = "reply"
	FieldAttempts = "attempts"
)

// Replies shorter than this are treated as low quality and retried.
const minReplyLength = 10

// Retry budget before the quality check gives up.
const maxAttempts = 3

// NewAssistantGraph builds a single-agent support loop: a node asks the
// completion service for an answer, and a quality-check router loops back
// while the reply looks too thin. The retry is a graph edge, not an
// engine-level policy.
func NewAssistantGraph(completer llm.Completer) (*graph.CompiledGraph, error) {
	s, err := schema.Define(
		schema.Field{Name: FieldQuestion},
		schema.Field{Name: FieldReply},
		schema.Field{Name: FieldAttempts, Default: 0},
	)
	if err != nil {
		return nil, err
	}

	support := func(ctx context.Context, st schema.State) (schema.State, error) {
		prompt := fmt.Sprintf("You are technical support. Answer concisely:\n%s", st.GetString(FieldQuestion))
		reply, err := completer.Complete(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("completion service: %w", err)
		}
		return schema.State{
			FieldReply:    reply,
			FieldAttempts: st.GetInt(FieldAttempts) + 1,
		}, nil
	}

	b := graph.NewBuilder(s)
	if err := b.AddNode("tech_support", support); err != nil {
		return nil, err
	}
	if err := b.AddConditionalEdge("tech_support", qualityCheck, map[string]string{
		"retry":  "tech_support",
		"finish": graph.End,
	}); err != nil {
		return nil, err
	}
	b.SetEntry("tech_support")
	return b.Compile(graph.Config{Name: "assistant", StepLimit: maxAttempts + 1})
}

// qualityCheck only returns a route label; it never mutates state.
func qualityCheck(st schema.State) string {
	if len(st.GetString(FieldReply)) < minReplyLength && st.GetInt(FieldAttempts) < maxAttempts {
		return "retry"
	}
	return "finish"
}
