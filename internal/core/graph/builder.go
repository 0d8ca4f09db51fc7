package graph

import (
	"fmt"

	"github.com/stategraph/stategraph/internal/core/schema"
)

// Builder accumulates nodes and edges before compilation. It is not safe
// for concurrent use; build the graph on one goroutine, then share the
// compiled result freely.
type Builder struct {
	schema    *schema.Schema
	nodes     map[string]*Node
	order     []string // registration order, the fan-out merge tie-break
	edges     map[string]*EdgeSet
	entry     string
	subgraphs []*CompiledGraph
}

// NewBuilder creates a builder over the given state schema.
func NewBuilder(s *schema.Schema) *Builder {
	return &Builder{
		schema: s,
		nodes:  make(map[string]*Node),
		edges:  make(map[string]*EdgeSet),
	}
}

// AddNode registers a function node under a unique name.
func (b *Builder) AddNode(name string, fn NodeFunc) error {
	if fn == nil {
		return fmt.Errorf("%w: node %q", ErrNilNodeFunc, name)
	}
	return b.add(&Node{Name: name, Fn: fn, subgraph: -1})
}

// AddSubgraph registers a compiled graph as a node. Invoking the node runs
// the nested graph to completion; its final snapshot, projected onto the
// parent schema, becomes the node's partial update. The nested graph is
// held in an arena and referenced by index, keeping ownership explicit.
func (b *Builder) AddSubgraph(name string, g *CompiledGraph) error {
	if g == nil {
		return fmt.Errorf("%w: node %q", ErrNilSubgraph, name)
	}
	idx := len(b.subgraphs)
	if err := b.add(&Node{Name: name, subgraph: idx}); err != nil {
		return err
	}
	b.subgraphs = append(b.subgraphs, g)
	return nil
}

func (b *Builder) add(n *Node) error {
	if n.Name == "" || n.Name == End {
		return fmt.Errorf("%w: %q", ErrReservedName, n.Name)
	}
	if _, dup := b.nodes[n.Name]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateNode, n.Name)
	}
	b.nodes[n.Name] = n
	b.order = append(b.order, n.Name)
	return nil
}

// AddEdge declares an unconditional transition from one node to another,
// or to End. Repeated calls with the same source accumulate a fan-out
// target list in declaration order.
func (b *Builder) AddEdge(from, to string) error {
	es := b.edges[from]
	if es == nil {
		es = &EdgeSet{Kind: EdgeKindPlain}
		b.edges[from] = es
	}
	if es.Kind != EdgeKindPlain {
		return fmt.Errorf("%w: %q", ErrEdgeConflict, from)
	}
	es.Targets = append(es.Targets, to)
	return nil
}

// AddConditionalEdge declares a routed transition: at runtime the router
// inspects state and returns a label, which must map to a node or End.
// A node has at most one outgoing edge set.
func (b *Builder) AddConditionalEdge(from string, router RouterFunc, labels map[string]string) error {
	if router == nil {
		return fmt.Errorf("%w: from %q", ErrNilRouter, from)
	}
	if len(labels) == 0 {
		return fmt.Errorf("%w: from %q", ErrEmptyLabelMap, from)
	}
	if _, exists := b.edges[from]; exists {
		return fmt.Errorf("%w: %q", ErrEdgeConflict, from)
	}
	copied := make(map[string]string, len(labels))
	for k, v := range labels {
		copied[k] = v
	}
	b.edges[from] = &EdgeSet{Kind: EdgeKindConditional, Router: router, Labels: copied}
	return nil
}

// SetEntry declares the node execution starts from.
func (b *Builder) SetEntry(name string) {
	b.entry = name
}
