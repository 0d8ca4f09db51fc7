// Package graph provides the graph construction and compilation layer:
// node registration, plain and conditional edges, and validation into an
// immutable executable plan.
package graph

import (
	"context"

	"github.com/stategraph/stategraph/internal/core/schema"
)

// End is the terminal sentinel. Edges and routers that resolve to End mark
// their path as finished.
const End = "__end__"

// NodeFunc is a unit of work: it receives the current snapshot and returns
// a partial update naming only the fields it changed. It may perform I/O
// internally and must honor ctx cancellation.
type NodeFunc func(ctx context.Context, state schema.State) (schema.State, error)

// RouterFunc inspects state and returns the label of the conditional
// successor to follow, or End to finish the path.
type RouterFunc func(state schema.State) string

// Node is a named vertex. A node is either backed by a function or by a
// compiled sub-graph held in the graph's arena.
type Node struct {
	Name     string
	Fn       NodeFunc
	subgraph int // arena index; -1 for function nodes
}

// IsSubgraph reports whether the node runs a nested compiled graph.
func (n *Node) IsSubgraph() bool {
	return n.subgraph >= 0
}

// SubgraphIndex returns the arena index of the nested graph, or -1 for
// function nodes.
func (n *Node) SubgraphIndex() int {
	return n.subgraph
}
