package engine

import (
	"context"
	"fmt"

	"github.com/stategraph/stategraph/internal/core/graph"
	"github.com/stategraph/stategraph/internal/core/schema"
)

// runSubgraph executes a nested compiled graph as a node: the parent
// snapshot is projected onto the child schema's fields, the child runs to
// completion under its own step limit (counters are independent per graph
// level), and the child's final snapshot projected back onto the parent
// schema becomes the partial update. Failure or abort inside the child
// propagates as the parent node's error.
func (e *Engine) runSubgraph(ctx context.Context, parent *graph.CompiledGraph, n *graph.Node, st schema.State, opts Options) (schema.State, error) {
	child := parent.Subgraph(n.SubgraphIndex())
	initial := project(st, child.Schema())

	res, err := e.Invoke(ctx, child, initial, Options{NodeTimeout: opts.NodeTimeout})
	if err != nil {
		return nil, fmt.Errorf("subgraph %q %s: %w", child.Name(), res.Status, err)
	}
	return project(res.State, parent.Schema()), nil
}

// project keeps only the fields declared by the target schema.
func project(st schema.State, s *schema.Schema) schema.State {
	out := make(schema.State)
	for k, v := range st {
		if s.Has(k) {
			out[k] = v
		}
	}
	return out
}
