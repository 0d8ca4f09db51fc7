// Package memory provides a thread-safe in-memory checkpoint saver.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/stategraph/stategraph/internal/core/checkpoint"
	"github.com/stategraph/stategraph/internal/infrastructure/metrics"
	"github.com/stategraph/stategraph/pkg/serialization"
)

// Saver implements checkpoint.Saver over a mutex-guarded map. Entries are
// stored serialized so a loaded checkpoint never aliases a snapshot still
// owned by another execution.
type Saver struct {
	mu         sync.RWMutex
	entries    map[string][]byte
	serializer *serialization.Serializer
}

// New creates an in-memory saver with the given serializer.
func New(serializer *serialization.Serializer) *Saver {
	return &Saver{
		entries:    make(map[string][]byte),
		serializer: serializer,
	}
}

// Default creates an in-memory saver with the default serializer.
func Default() *Saver {
	return New(serialization.Default())
}

// Save stores the checkpoint, replacing any prior entry for the key.
func (s *Saver) Save(_ context.Context, cp *checkpoint.Checkpoint) error {
	if err := cp.Validate(); err != nil {
		return fmt.Errorf("checkpoint validation failed: %w", err)
	}
	data, err := s.serializer.Serialize(cp)
	if err != nil {
		return fmt.Errorf("checkpoint serialization failed: %w", err)
	}
	s.mu.Lock()
	s.entries[cp.SessionKey] = data
	s.mu.Unlock()
	metrics.IncCheckpointSaves("memory")
	return nil
}

// Load returns the checkpoint for a session key.
func (s *Saver) Load(_ context.Context, sessionKey string) (*checkpoint.Checkpoint, error) {
	s.mu.RLock()
	data, ok := s.entries[sessionKey]
	s.mu.RUnlock()
	if !ok {
		return nil, checkpoint.ErrNotFound
	}
	var cp checkpoint.Checkpoint
	if err := s.serializer.Deserialize(data, &cp); err != nil {
		return nil, fmt.Errorf("checkpoint deserialization failed: %w", err)
	}
	return &cp, nil
}

// Delete removes the checkpoint for a session key.
func (s *Saver) Delete(_ context.Context, sessionKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[sessionKey]; !ok {
		return checkpoint.ErrNotFound
	}
	delete(s.entries, sessionKey)
	return nil
}

// List returns the stored session keys.
func (s *Saver) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	return keys, nil
}
