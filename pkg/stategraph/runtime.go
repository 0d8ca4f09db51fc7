package stategraph

import (
	"context"
	"log/slog"

	memory "github.com/stategraph/stategraph/internal/adapters/repository/memory"
	"github.com/stategraph/stategraph/internal/core/checkpoint"
	"github.com/stategraph/stategraph/internal/core/engine"
	"github.com/stategraph/stategraph/internal/core/graph"
	"github.com/stategraph/stategraph/internal/core/schema"
)

// Re-export core types so callers never import internal packages directly.
type (
	State         = schema.State
	Field         = schema.Field
	Schema        = schema.Schema
	Reducer       = schema.Reducer
	NodeFunc      = graph.NodeFunc
	RouterFunc    = graph.RouterFunc
	Builder       = graph.Builder
	CompiledGraph = graph.CompiledGraph
	Config        = graph.Config
	Options       = engine.Options
	Result        = engine.Result
	StepEvent     = engine.StepEvent
	Status        = engine.Status
	Saver         = checkpoint.Saver
	Checkpoint    = checkpoint.Checkpoint
)

// End is the terminal sentinel.
const End = graph.End

const (
	ReducerReplace = schema.ReducerReplace
	ReducerAppend  = schema.ReducerAppend
)

const (
	StatusCompleted = engine.StatusCompleted
	StatusFailed    = engine.StatusFailed
	StatusAborted   = engine.StatusAborted
)

// DefineSchema builds a state schema from field declarations.
func DefineSchema(fields ...Field) (*Schema, error) {
	return schema.Define(fields...)
}

// NewBuilder starts graph construction over a schema.
func NewBuilder(s *Schema) *Builder {
	return graph.NewBuilder(s)
}

// NewMemorySaver returns an in-memory checkpoint saver suitable for local
// usage and tests.
func NewMemorySaver() Saver {
	return memory.Default()
}

// Runtime bundles an engine with its collaborators. The default runtime
// uses an in-memory checkpoint saver and no logging.
type Runtime struct {
	engine *engine.Engine
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*runtimeConfig)

type runtimeConfig struct {
	saver  checkpoint.Saver
	logger *slog.Logger
}

// WithSaver selects the checkpoint backend.
func WithSaver(s Saver) RuntimeOption {
	return func(c *runtimeConfig) { c.saver = s }
}

// WithLogger attaches a structured logger.
func WithLogger(l *slog.Logger) RuntimeOption {
	return func(c *runtimeConfig) { c.logger = l }
}

// NewRuntime constructs a runtime with in-memory defaults.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	cfg := &runtimeConfig{saver: memory.Default()}
	for _, opt := range opts {
		opt(cfg)
	}
	engineOpts := []engine.Option{engine.WithSaver(cfg.saver)}
	if cfg.logger != nil {
		engineOpts = append(engineOpts, engine.WithLogger(cfg.logger))
	}
	return &Runtime{engine: engine.New(engineOpts...)}
}

// Invoke runs a compiled graph to a terminal status.
func (rt *Runtime) Invoke(ctx context.Context, g *CompiledGraph, initial State, opts Options) (*Result, error) {
	return rt.engine.Invoke(ctx, g, initial, opts)
}

// Stream runs a compiled graph, producing one event per completed step and
// a final terminal event.
func (rt *Runtime) Stream(ctx context.Context, g *CompiledGraph, initial State, opts Options) <-chan StepEvent {
	return rt.engine.Stream(ctx, g, initial, opts)
}
