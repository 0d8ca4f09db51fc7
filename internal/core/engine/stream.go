package engine

import (
	"context"

	"github.com/stategraph/stategraph/internal/core/graph"
	"github.com/stategraph/stategraph/internal/core/schema"
)

// Stream runs the graph like Invoke but produces one StepEvent per
// completed step, followed by a single terminal event carrying the final
// status and error, after which the channel is closed. The sequence is
// finite and not restartable once consumed. The channel is buffered for
// the whole bounded run, so a slow consumer never stalls execution.
func (e *Engine) Stream(ctx context.Context, g *graph.CompiledGraph, initial schema.State, opts Options) <-chan StepEvent {
	limit := g.StepLimit()
	if opts.StepLimit > 0 {
		limit = opts.StepLimit
	}
	events := make(chan StepEvent, limit+1)
	go func() {
		defer close(events)
		res := e.run(ctx, g, initial, opts, func(ev StepEvent) {
			events <- ev
		})
		events <- StepEvent{
			Step:   res.Steps,
			State:  res.State,
			Status: res.Status,
			Err:    res.Err,
		}
	}()
	return events
}
