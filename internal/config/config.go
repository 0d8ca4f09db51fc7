// Package config loads application configuration from a YAML file and the
// environment. Service credentials come from the environment (optionally a
// .env file) and are injected explicitly; nothing here is a process-wide
// singleton.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	Engine     EngineConfig     `yaml:"engine"`
	Checkpoint CheckpointConfig `yaml:"checkpoint"`
	Model      ModelConfig      `yaml:"model"`
}

// EngineConfig holds execution defaults for the CLI.
type EngineConfig struct {
	StepLimit   int           `yaml:"step_limit"`
	NodeTimeout time.Duration `yaml:"node_timeout"`
}

// CheckpointConfig selects the checkpoint backend.
type CheckpointConfig struct {
	// Backend is one of memory, sqlite, redis, postgres.
	Backend string `yaml:"backend"`
	// DSN is the backend connection string; unused for memory.
	DSN string `yaml:"dsn"`
}

// ModelConfig configures the external completion service.
type ModelConfig struct {
	Name   string `yaml:"name"`
	APIKey string `yaml:"-"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Engine:     EngineConfig{StepLimit: 25, NodeTimeout: 30 * time.Second},
		Checkpoint: CheckpointConfig{Backend: "memory"},
		Model:      ModelConfig{Name: "gpt-4o-mini"},
	}
}

// Load builds the configuration: defaults, then the YAML file when path is
// non-empty, then environment overrides. A .env file is honored when
// present.
func Load(path string) (*Config, error) {
	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.Model.APIKey = key
	}
	if dsn := os.Getenv("STATEGRAPH_CHECKPOINT_DSN"); dsn != "" {
		cfg.Checkpoint.DSN = dsn
	}

	if cfg.Engine.StepLimit <= 0 {
		return nil, fmt.Errorf("config: engine.step_limit must be positive")
	}
	return cfg, nil
}
