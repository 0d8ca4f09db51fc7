package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memoryrepo "github.com/stategraph/stategraph/internal/adapters/repository/memory"
	"github.com/stategraph/stategraph/internal/config"
	"github.com/stategraph/stategraph/pkg/prebuilt"
)

func TestBuildGraphSelection(t *testing.T) {
	cfg := config.Default()

	g, initial, output, err := buildGraph("sentiment", cfg, "great product")
	require.NoError(t, err)
	assert.Equal(t, "sentiment", g.Name())
	assert.Equal(t, "great product", initial.GetString(prebuilt.FieldFeedback))
	assert.Equal(t, prebuilt.FieldResponse, output)

	g, initial, output, err = buildGraph("triage", cfg, "what is the weather")
	require.NoError(t, err)
	assert.Equal(t, "triage", g.Name())
	assert.Equal(t, "what is the weather", initial.GetString(prebuilt.FieldInput))
	assert.Equal(t, prebuilt.FieldHistory, output)
}

func TestBuildGraphAssistantNeedsKey(t *testing.T) {
	cfg := config.Default()
	cfg.Model.APIKey = ""
	_, _, _, err := buildGraph("assistant", cfg, "help")
	assert.ErrorContains(t, err, "OPENAI_API_KEY")

	cfg.Model.APIKey = "sk-test"
	g, _, _, err := buildGraph("assistant", cfg, "help")
	require.NoError(t, err)
	assert.Equal(t, "assistant", g.Name())
}

func TestBuildGraphUnknown(t *testing.T) {
	_, _, _, err := buildGraph("nonexistent", config.Default(), "q")
	assert.ErrorContains(t, err, "unknown graph")
}

func TestBuildSaverSelection(t *testing.T) {
	s, cleanup, err := buildSaver(config.CheckpointConfig{Backend: "memory"})
	require.NoError(t, err)
	defer cleanup()
	assert.IsType(t, &memoryrepo.Saver{}, s)

	_, _, err = buildSaver(config.CheckpointConfig{Backend: "cassandra"})
	assert.ErrorContains(t, err, "unknown checkpoint backend")
}

func TestRunCommandSentiment(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"run", "--graph", "sentiment", "I love this, excellent service"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "POSITIVE FEEDBACK")
}

func TestRunCommandTriagePrintsHistory(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"run", "--graph", "triage", "what is the price of eggs"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Oracle:")
	assert.Contains(t, out.String(), "Researcher:")
}

func TestRunCommandUnknownGraph(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"run", "--graph", "bogus", "query"})
	assert.Error(t, cmd.Execute())
}
