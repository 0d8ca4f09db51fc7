// Package engine implements the step scheduler: it drives a compiled graph
// over a state snapshot until the frontier resolves to the terminal
// sentinel, a step limit aborts it, or a node fails.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/stategraph/stategraph/internal/core/checkpoint"
	"github.com/stategraph/stategraph/internal/core/graph"
	"github.com/stategraph/stategraph/internal/core/schema"
	"github.com/stategraph/stategraph/internal/infrastructure/metrics"
	"github.com/stategraph/stategraph/internal/logging"
)

// Engine executes compiled graphs. It is stateless between invocations and
// safe for concurrent use; the checkpoint saver is the only shared
// collaborator.
type Engine struct {
	saver  checkpoint.Saver
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSaver attaches a checkpoint saver; invocations carrying a session key
// resume from and persist to it.
func WithSaver(s checkpoint.Saver) Option {
	return func(e *Engine) { e.saver = s }
}

// WithLogger attaches a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an engine. Without options it runs without persistence and
// logs nowhere.
func New(opts ...Option) *Engine {
	e := &Engine{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Options configures a single invocation.
type Options struct {
	// SessionKey enables checkpoint resume and persistence under this key.
	SessionKey string
	// StepLimit overrides the compiled step limit when positive.
	StepLimit int
	// NodeTimeout bounds each node invocation. A node exceeding it fails
	// the execution with a NodeError wrapping context.DeadlineExceeded.
	NodeTimeout time.Duration
}

// Invoke runs the graph to a terminal status. The returned Result always
// carries the last-good snapshot; the error mirrors Result.Err for callers
// that branch on the error value.
func (e *Engine) Invoke(ctx context.Context, g *graph.CompiledGraph, initial schema.State, opts Options) (*Result, error) {
	res := e.run(ctx, g, initial, opts, nil)
	return res, res.Err
}

// run is the shared control loop behind Invoke and Stream. emit, when
// non-nil, receives one event per completed step.
func (e *Engine) run(ctx context.Context, g *graph.CompiledGraph, initial schema.State, opts Options, emit func(StepEvent)) *Result {
	res := &Result{
		InvocationID: uuid.NewString(),
		Graph:        g.Name(),
		Status:       StatusPending,
		StartTime:    time.Now(),
	}
	defer func() {
		res.EndTime = time.Now()
		res.Duration = res.EndTime.Sub(res.StartTime)
		metrics.IncInvocations(g.Name(), string(res.Status))
	}()

	for _, w := range g.Warnings {
		e.logger.Warn("graph warning", "graph", g.Name(), "warning", w)
	}

	st, baseStep, err := e.startingSnapshot(ctx, g, initial, opts)
	if err != nil {
		res.Status = StatusFailed
		res.State = g.Schema().Zero()
		res.Err = err
		return res
	}

	limit := g.StepLimit()
	if opts.StepLimit > 0 {
		limit = opts.StepLimit
	}

	res.Status = StatusRunning
	frontier := []string{g.Entry()}
	for len(frontier) > 0 {
		if cerr := ctx.Err(); cerr != nil {
			res.Status = StatusAborted
			res.Err = fmt.Errorf("%w: %w", ErrCancelled, cerr)
			break
		}
		if res.Steps >= limit {
			res.Status = StatusAborted
			res.Err = fmt.Errorf("%w: limit %d reached before the graph terminated", ErrStepLimitExceeded, limit)
			break
		}

		next, err := e.runStep(ctx, g, frontier, &st, opts)
		if err != nil {
			res.Status = StatusFailed
			res.Err = err
			break
		}
		res.Steps++
		metrics.IncSteps(g.Name())
		e.logger.Debug("step completed", "graph", g.Name(), "step", res.Steps, "nodes", frontier)
		if emit != nil {
			emit(StepEvent{Step: res.Steps, Nodes: frontier, State: st.Clone(), Status: StatusRunning})
		}
		frontier = next
	}
	if res.Status == StatusRunning {
		res.Status = StatusCompleted
	}
	res.State = st

	if serr := e.saveCheckpoint(ctx, opts, st, baseStep+res.Steps); serr != nil {
		if res.Err == nil {
			res.Status = StatusFailed
			res.Err = serr
		} else {
			e.logger.Warn("checkpoint save failed after execution error", "session", opts.SessionKey, "err", serr)
		}
	}
	return res
}

// startingSnapshot builds the initial snapshot: schema defaults, then the
// session checkpoint when one exists, then the caller-supplied values.
// Caller values win on replace fields; append fields concatenate.
func (e *Engine) startingSnapshot(ctx context.Context, g *graph.CompiledGraph, initial schema.State, opts Options) (schema.State, int, error) {
	st := g.Schema().Zero()
	baseStep := 0
	if opts.SessionKey != "" && e.saver != nil {
		cp, err := e.saver.Load(ctx, opts.SessionKey)
		switch {
		case err == nil:
			merged, merr := g.Schema().Merge(st, cp.State)
			if merr != nil {
				return nil, 0, fmt.Errorf("checkpoint for session %q does not match the schema: %w", opts.SessionKey, merr)
			}
			st = merged
			baseStep = cp.Step
		case errors.Is(err, checkpoint.ErrNotFound):
			// fresh session
		default:
			return nil, 0, fmt.Errorf("load checkpoint for session %q: %w", opts.SessionKey, err)
		}
	}
	st, err := g.Schema().Merge(st, initial)
	if err != nil {
		return nil, 0, err
	}
	return st, baseStep, nil
}

// saveCheckpoint persists the final snapshot for keyed invocations. It runs
// for every terminal status so a failed or aborted session stays resumable.
func (e *Engine) saveCheckpoint(ctx context.Context, opts Options, st schema.State, step int) error {
	if opts.SessionKey == "" || e.saver == nil {
		return nil
	}
	// The invocation context may already be cancelled; the save must still
	// go through.
	saveCtx := context.WithoutCancel(ctx)
	cp := &checkpoint.Checkpoint{
		SessionKey: opts.SessionKey,
		State:      st,
		Step:       step,
		UpdatedAt:  time.Now(),
	}
	if err := e.saver.Save(saveCtx, cp); err != nil {
		return fmt.Errorf("save checkpoint for session %q: %w", opts.SessionKey, err)
	}
	return nil
}
