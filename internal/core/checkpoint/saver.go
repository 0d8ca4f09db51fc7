package checkpoint

import "context"

// Saver persists checkpoints keyed by session. Semantics are last-write-wins
// per key with no merging across sessions; implementations must serialize
// Save/Load per key so concurrent invocations under the same session cannot
// lose updates.
type Saver interface {
	// Save stores or replaces the checkpoint for its session key.
	Save(ctx context.Context, cp *Checkpoint) error

	// Load returns the checkpoint for a session key, or ErrNotFound.
	Load(ctx context.Context, sessionKey string) (*Checkpoint, error)

	// Delete removes the checkpoint for a session key, or ErrNotFound.
	Delete(ctx context.Context, sessionKey string) error

	// List returns the session keys with a stored checkpoint.
	List(ctx context.Context) ([]string, error)
}
