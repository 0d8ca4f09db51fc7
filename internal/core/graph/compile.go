package graph

import (
	"fmt"
	"sort"

	"github.com/stategraph/stategraph/internal/core/schema"
)

// Config holds compile-time execution configuration.
type Config struct {
	// Name identifies the graph in logs and metrics.
	Name string
	// StepLimit bounds the number of scheduler steps per invocation.
	// It is mandatory: compilation does not detect loops (legitimate
	// retry loops are loops), so an unbounded graph could run forever.
	StepLimit int
}

// CompiledGraph is the validated, immutable executable plan. It is
// read-only after Compile and safe to share across concurrent invocations.
type CompiledGraph struct {
	name      string
	schema    *schema.Schema
	nodes     map[string]*Node
	order     []string
	orderIdx  map[string]int
	edges     map[string]*EdgeSet
	entry     string
	stepLimit int
	subgraphs []*CompiledGraph

	// Warnings lists non-fatal findings from validation, currently nodes
	// unreachable from the entry point. Dead nodes are legal but reported.
	Warnings []string
}

// Compile validates the accumulated graph and produces the executable plan.
func (b *Builder) Compile(cfg Config) (*CompiledGraph, error) {
	if b.schema == nil {
		return nil, fmt.Errorf("%w: %v", ErrGraphValidation, ErrNilSchema)
	}
	if cfg.StepLimit <= 0 {
		return nil, fmt.Errorf("%w: a positive step limit must be configured", ErrGraphValidation)
	}
	if b.entry == "" {
		return nil, fmt.Errorf("%w: no entry point declared", ErrGraphValidation)
	}
	if _, ok := b.nodes[b.entry]; !ok {
		return nil, fmt.Errorf("%w: entry point %q is not a registered node", ErrGraphValidation, b.entry)
	}
	for from, es := range b.edges {
		if _, ok := b.nodes[from]; !ok {
			return nil, fmt.Errorf("%w: edge source %q is not a registered node", ErrGraphValidation, from)
		}
		for _, to := range es.Targets {
			if to != End {
				if _, ok := b.nodes[to]; !ok {
					return nil, fmt.Errorf("%w: edge %s -> %s targets an unregistered node", ErrGraphValidation, from, to)
				}
			}
		}
		for label, to := range es.Labels {
			if to != End {
				if _, ok := b.nodes[to]; !ok {
					return nil, fmt.Errorf("%w: conditional edge %s[%s] -> %s targets an unregistered node", ErrGraphValidation, from, label, to)
				}
			}
		}
	}

	g := &CompiledGraph{
		name:      cfg.Name,
		schema:    b.schema,
		nodes:     b.nodes,
		order:     b.order,
		orderIdx:  make(map[string]int, len(b.order)),
		edges:     b.edges,
		entry:     b.entry,
		stepLimit: cfg.StepLimit,
		subgraphs: b.subgraphs,
	}
	for i, name := range b.order {
		g.orderIdx[name] = i
	}
	g.Warnings = g.unreachableWarnings()
	return g, nil
}

// unreachableWarnings walks the edge table from the entry point and reports
// every node it cannot reach. Conditional targets count as reachable even
// though the router may never pick them.
func (g *CompiledGraph) unreachableWarnings() []string {
	seen := map[string]bool{g.entry: true}
	queue := []string{g.entry}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		es := g.edges[cur]
		if es == nil {
			continue
		}
		for _, to := range es.Targets {
			if to != End && !seen[to] {
				seen[to] = true
				queue = append(queue, to)
			}
		}
		for _, to := range es.Labels {
			if to != End && !seen[to] {
				seen[to] = true
				queue = append(queue, to)
			}
		}
	}

	var dead []string
	for name := range g.nodes {
		if !seen[name] {
			dead = append(dead, name)
		}
	}
	sort.Strings(dead)
	warnings := make([]string, 0, len(dead))
	for _, name := range dead {
		warnings = append(warnings, fmt.Sprintf("node %q is unreachable from entry point %q", name, g.entry))
	}
	return warnings
}

// Name returns the graph's configured name.
func (g *CompiledGraph) Name() string { return g.name }

// Schema returns the state schema the graph executes over.
func (g *CompiledGraph) Schema() *schema.Schema { return g.schema }

// Entry returns the entry node name.
func (g *CompiledGraph) Entry() string { return g.entry }

// StepLimit returns the compiled step limit.
func (g *CompiledGraph) StepLimit() int { return g.stepLimit }

// Node returns the named node.
func (g *CompiledGraph) Node(name string) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Subgraph returns the nested compiled graph at the given arena index.
func (g *CompiledGraph) Subgraph(idx int) *CompiledGraph {
	return g.subgraphs[idx]
}

// OrderIndex returns the registration index of a node. Registration order
// is the documented tie-break for fan-out merges.
func (g *CompiledGraph) OrderIndex(name string) int {
	return g.orderIdx[name]
}

// Resolve evaluates the outgoing edge set of a node against the current
// state and returns the successor node names. An empty result means the
// path is done. Conditional resolution fails with ErrRouting when the
// router returns an unmapped label; returning End from the router is the
// designated way to finish from inside conditional logic.
func (g *CompiledGraph) Resolve(name string, st schema.State) ([]string, error) {
	es := g.edges[name]
	if es == nil {
		return nil, nil
	}
	switch es.Kind {
	case EdgeKindConditional:
		label := es.Router(st)
		if label == End {
			return nil, nil
		}
		target, ok := es.Labels[label]
		if !ok {
			return nil, fmt.Errorf("%w: router for node %q returned unmapped label %q", ErrRouting, name, label)
		}
		if target == End {
			return nil, nil
		}
		return []string{target}, nil
	default:
		out := make([]string, 0, len(es.Targets))
		for _, to := range es.Targets {
			if to != End {
				out = append(out, to)
			}
		}
		return out, nil
	}
}
