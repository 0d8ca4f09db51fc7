package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/stategraph/stategraph/internal/core/graph"
	"github.com/stategraph/stategraph/internal/core/schema"
	"github.com/stategraph/stategraph/internal/infrastructure/metrics"
)

// runStep executes one scheduler step: every frontier node runs in parallel
// against the same pre-step snapshot, partial updates merge sequentially in
// registration order, and the merged state feeds successor resolution.
// On any failure the pre-step snapshot is left untouched — no partial merge
// occurs for a failed step.
func (e *Engine) runStep(ctx context.Context, g *graph.CompiledGraph, frontier []string, st *schema.State, opts Options) ([]string, error) {
	pre := *st
	partials := make([]schema.State, len(frontier))
	errs := make([]error, len(frontier))

	var wg sync.WaitGroup
	for i, name := range frontier {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			partials[i], errs[i] = e.invokeNode(ctx, g, name, pre.Clone(), opts)
		}(i, name)
	}
	wg.Wait()

	// Frontier order is registration order, so reporting the first error
	// and merging in slice order both follow the documented tie-break.
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	merged := pre
	for i, name := range frontier {
		next, err := g.Schema().Merge(merged, partials[i])
		if err != nil {
			return nil, &NodeError{Node: name, Err: err}
		}
		merged = next
	}

	successors, err := e.nextFrontier(g, frontier, merged)
	if err != nil {
		return nil, err
	}
	*st = merged
	return successors, nil
}

// invokeNode runs one node with the per-node timeout applied. Sub-graph
// nodes run their nested graph to completion.
func (e *Engine) invokeNode(ctx context.Context, g *graph.CompiledGraph, name string, pre schema.State, opts Options) (schema.State, error) {
	n, ok := g.Node(name)
	if !ok {
		return nil, &NodeError{Node: name, Err: fmt.Errorf("node not present in compiled graph")}
	}

	nodeCtx := ctx
	if opts.NodeTimeout > 0 {
		var cancel context.CancelFunc
		nodeCtx, cancel = context.WithTimeout(ctx, opts.NodeTimeout)
		defer cancel()
	}

	start := time.Now()
	var partial schema.State
	var err error
	if n.IsSubgraph() {
		partial, err = e.runSubgraph(nodeCtx, g, n, pre, opts)
	} else {
		partial, err = callNode(nodeCtx, n.Fn, pre)
	}
	metrics.IncNodeExecutions(g.Name(), name)
	metrics.ObserveNodeDuration(g.Name(), name, time.Since(start).Seconds())
	if err != nil {
		return nil, &NodeError{Node: name, Err: err}
	}
	return partial, nil
}

// callNode invokes a node function without trusting it to return promptly:
// a deadline fires even when the function ignores its context. The
// abandoned goroutine is left to finish on its own; cancellation is
// cooperative.
func callNode(ctx context.Context, fn graph.NodeFunc, st schema.State) (schema.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	type outcome struct {
		partial schema.State
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		partial, err := fn(ctx, st)
		done <- outcome{partial, err}
	}()
	select {
	case out := <-done:
		return out.partial, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// nextFrontier resolves each frontier node's successors against the merged
// snapshot and unions them, deduplicated and ordered by registration index.
func (e *Engine) nextFrontier(g *graph.CompiledGraph, frontier []string, st schema.State) ([]string, error) {
	seen := make(map[string]bool)
	var next []string
	for _, name := range frontier {
		successors, err := g.Resolve(name, st)
		if err != nil {
			return nil, err
		}
		for _, s := range successors {
			if !seen[s] {
				seen[s] = true
				next = append(next, s)
			}
		}
	}
	sort.Slice(next, func(i, j int) bool {
		return g.OrderIndex(next[i]) < g.OrderIndex(next[j])
	})
	return next, nil
}
