package prebuilt

import (
	"context"
	"strings"

	"github.com/stategraph/stategraph/internal/core/graph"
	"github.com/stategraph/stategraph/internal/core/schema"
)

// Field names of the triage graph state. History accumulates across
// invocations when the caller supplies a session key.
const (
	FieldInput         = "input"
	FieldHistory       = "history"
	FieldNeedsResearch = "needs_research"
)

// NewTriageGraph builds the oracle/researcher graph: the oracle decides
// whether the query needs a lookup and a conditional edge routes either to
// the researcher or straight to the end.
func NewTriageGraph() (*graph.CompiledGraph, error) {
	s, err := schema.Define(
		schema.Field{Name: FieldInput},
		schema.Field{Name: FieldHistory, Reducer: schema.ReducerAppend},
		schema.Field{Name: FieldNeedsResearch, Default: false},
	)
	if err != nil {
		return nil, err
	}

	b := graph.NewBuilder(s)
	if err := b.AddNode("oracle", oracle); err != nil {
		return nil, err
	}
	if err := b.AddNode("researcher", researcher); err != nil {
		return nil, err
	}
	if err := b.AddConditionalEdge("oracle", triageRouter, map[string]string{
		"to_research": "researcher",
		"to_end":      graph.End,
	}); err != nil {
		return nil, err
	}
	if err := b.AddEdge("researcher", graph.End); err != nil {
		return nil, err
	}
	b.SetEntry("oracle")
	return b.Compile(graph.Config{Name: "triage", StepLimit: 4})
}

func oracle(_ context.Context, st schema.State) (schema.State, error) {
	input := strings.ToLower(st.GetString(FieldInput))
	if strings.Contains(input, "weather") || strings.Contains(input, "price") {
		return schema.State{
			FieldHistory:       "Oracle: I need to look that up...",
			FieldNeedsResearch: true,
		}, nil
	}
	return schema.State{
		FieldHistory:       "Oracle: I can answer that directly!",
		FieldNeedsResearch: false,
	}, nil
}

func researcher(_ context.Context, st schema.State) (schema.State, error) {
	return schema.State{
		FieldHistory: "Researcher: Found it! It is 72 degrees and sunny.",
	}, nil
}

func triageRouter(st schema.State) string {
	if st.GetBool(FieldNeedsResearch) {
		return "to_research"
	}
	return "to_end"
}
