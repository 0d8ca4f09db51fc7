// Package redis provides a Redis-backed checkpoint saver.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/stategraph/stategraph/internal/core/checkpoint"
	"github.com/stategraph/stategraph/internal/infrastructure/metrics"
	"github.com/stategraph/stategraph/pkg/serialization"
)

// Saver implements checkpoint.Saver on Redis. Each session key maps to one
// value under a prefixed key, plus an index set for listing.
type Saver struct {
	client     *backend.Client
	serializer *serialization.Serializer
	prefix     string
	ttl        time.Duration
}

// Option configures a Saver.
type Option func(*Saver)

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Saver) { s.prefix = prefix }
}

// WithTTL sets an expiration on stored checkpoints. Zero means no
// expiration, the default: checkpoints are never auto-expired.
func WithTTL(ttl time.Duration) Option {
	return func(s *Saver) { s.ttl = ttl }
}

// New creates a saver with its own client for the given address.
func New(addr, password string, db int, serializer *serialization.Serializer, opts ...Option) *Saver {
	client := backend.NewClient(&backend.Options{Addr: addr, Password: password, DB: db})
	return NewFromClient(client, serializer, opts...)
}

// NewFromClient creates a saver over an existing client.
func NewFromClient(client *backend.Client, serializer *serialization.Serializer, opts ...Option) *Saver {
	s := &Saver{
		client:     client,
		serializer: serializer,
		prefix:     "stategraph:checkpoint:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Saver) key(sessionKey string) string {
	return s.prefix + sessionKey
}

func (s *Saver) indexKey() string {
	return s.prefix + "index"
}

// Save stores the checkpoint and registers its key in the index set.
func (s *Saver) Save(ctx context.Context, cp *checkpoint.Checkpoint) error {
	if err := cp.Validate(); err != nil {
		return fmt.Errorf("checkpoint validation failed: %w", err)
	}
	data, err := s.serializer.Serialize(cp)
	if err != nil {
		return fmt.Errorf("checkpoint serialization failed: %w", err)
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(cp.SessionKey), data, s.ttl)
	pipe.SAdd(ctx, s.indexKey(), cp.SessionKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	metrics.IncCheckpointSaves("redis")
	return nil
}

// Load returns the checkpoint for a session key.
func (s *Saver) Load(ctx context.Context, sessionKey string) (*checkpoint.Checkpoint, error) {
	data, err := s.client.Get(ctx, s.key(sessionKey)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, checkpoint.ErrNotFound
		}
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	var cp checkpoint.Checkpoint
	if err := s.serializer.Deserialize(data, &cp); err != nil {
		return nil, fmt.Errorf("checkpoint deserialization failed: %w", err)
	}
	return &cp, nil
}

// Delete removes the checkpoint and its index entry.
func (s *Saver) Delete(ctx context.Context, sessionKey string) error {
	n, err := s.client.Del(ctx, s.key(sessionKey)).Result()
	if err != nil {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	if n == 0 {
		return checkpoint.ErrNotFound
	}
	if err := s.client.SRem(ctx, s.indexKey(), sessionKey).Err(); err != nil {
		return fmt.Errorf("delete checkpoint index entry: %w", err)
	}
	return nil
}

// List returns the session keys registered in the index set.
func (s *Saver) List(ctx context.Context) ([]string, error) {
	keys, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	return keys, nil
}

// Close releases the underlying client.
func (s *Saver) Close() error {
	return s.client.Close()
}
