package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	memoryrepo "github.com/stategraph/stategraph/internal/adapters/repository/memory"
	redisrepo "github.com/stategraph/stategraph/internal/adapters/repository/redis"
	sqliterepo "github.com/stategraph/stategraph/internal/adapters/repository/sqlite"
	"github.com/stategraph/stategraph/internal/config"
	"github.com/stategraph/stategraph/internal/core/checkpoint"
	"github.com/stategraph/stategraph/internal/core/engine"
	"github.com/stategraph/stategraph/internal/core/graph"
	"github.com/stategraph/stategraph/internal/core/schema"
	"github.com/stategraph/stategraph/internal/llm"
	"github.com/stategraph/stategraph/internal/logging"
	"github.com/stategraph/stategraph/pkg/prebuilt"
	"github.com/stategraph/stategraph/pkg/serialization"
)

type runFlags struct {
	graphName  string
	session    string
	configPath string
	stepLimit  int
	verbose    bool
}

func newRunCmd() *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run [query]",
		Short: "Run a query through one of the prebuilt graphs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, flags, strings.Join(args, " "))
		},
	}
	cmd.Flags().StringVarP(&flags.graphName, "graph", "g", "sentiment", "graph to run: sentiment, triage, assistant")
	cmd.Flags().StringVarP(&flags.session, "session", "s", "", "session key for checkpoint resume")
	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().IntVar(&flags.stepLimit, "step-limit", 0, "override the configured step limit")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

func runQuery(cmd *cobra.Command, flags *runFlags, query string) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if flags.verbose {
		level = slog.LevelDebug
	}
	logger := logging.New(level)

	saver, cleanup, err := buildSaver(cfg.Checkpoint)
	if err != nil {
		return err
	}
	defer cleanup()

	g, initial, output, err := buildGraph(flags.graphName, cfg, query)
	if err != nil {
		return err
	}

	eng := engine.New(engine.WithSaver(saver), engine.WithLogger(logger))
	res, err := eng.Invoke(cmd.Context(), g, initial, engine.Options{
		SessionKey:  flags.session,
		StepLimit:   flags.stepLimit,
		NodeTimeout: cfg.Engine.NodeTimeout,
	})
	if err != nil {
		return fmt.Errorf("execution %s after %d steps: %w", res.Status, res.Steps, err)
	}

	logger.Info("execution completed",
		"graph", flags.graphName, "steps", res.Steps, "duration", res.Duration.Round(time.Millisecond))
	printOutput(cmd, res.State, output)
	return nil
}

// buildSaver constructs the checkpoint backend selected by configuration.
func buildSaver(cfg config.CheckpointConfig) (saver checkpoint.Saver, cleanup func(), err error) {
	cleanup = func() {}
	switch cfg.Backend {
	case "", "memory":
		return memoryrepo.Default(), cleanup, nil
	case "sqlite":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = "stategraph.db"
		}
		s, err := sqliterepo.Open(dsn, serialization.Default())
		if err != nil {
			return nil, cleanup, err
		}
		return s, func() { s.Close() }, nil
	case "redis":
		addr := cfg.DSN
		if addr == "" {
			addr = "localhost:6379"
		}
		s := redisrepo.New(addr, "", 0, serialization.Default())
		return s, func() { s.Close() }, nil
	default:
		return nil, cleanup, fmt.Errorf("unknown checkpoint backend %q", cfg.Backend)
	}
}

// buildGraph selects the prebuilt graph, its initial state, and the field
// printed as the result.
func buildGraph(name string, cfg *config.Config, query string) (*graph.CompiledGraph, schema.State, string, error) {
	switch name {
	case "sentiment":
		g, err := prebuilt.NewSentimentGraph()
		if err != nil {
			return nil, nil, "", err
		}
		return g, schema.State{prebuilt.FieldFeedback: query}, prebuilt.FieldResponse, nil
	case "triage":
		g, err := prebuilt.NewTriageGraph()
		if err != nil {
			return nil, nil, "", err
		}
		return g, schema.State{prebuilt.FieldInput: query}, prebuilt.FieldHistory, nil
	case "assistant":
		if cfg.Model.APIKey == "" {
			return nil, nil, "", fmt.Errorf("the assistant graph requires OPENAI_API_KEY")
		}
		client := llm.NewOpenAIClient(cfg.Model.APIKey, cfg.Model.Name)
		g, err := prebuilt.NewAssistantGraph(client)
		if err != nil {
			return nil, nil, "", err
		}
		return g, schema.State{prebuilt.FieldQuestion: query}, prebuilt.FieldReply, nil
	default:
		return nil, nil, "", fmt.Errorf("unknown graph %q", name)
	}
}

// printOutput writes the designated output field to stdout. Sequence
// fields print one item per line.
func printOutput(cmd *cobra.Command, st schema.State, field string) {
	if items, ok := st[field].([]any); ok {
		for _, item := range items {
			fmt.Fprintln(cmd.OutOrStdout(), item)
		}
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), st[field])
}
