// Package checkpoint provides the keyed snapshot entity and the persistence
// interface implemented by the storage adapters.
package checkpoint

import (
	"time"

	"github.com/stategraph/stategraph/internal/core/schema"
)

// Checkpoint is one persisted snapshot keyed by session. It is created or
// updated at the end of every invocation that carries a session key and is
// never auto-expired; eviction is a caller concern.
type Checkpoint struct {
	SessionKey string       `json:"session_key" msgpack:"session_key"`
	State      schema.State `json:"state" msgpack:"state"`
	// Step is the cumulative number of scheduler steps executed under this
	// session across invocations.
	Step      int       `json:"step" msgpack:"step"`
	UpdatedAt time.Time `json:"updated_at" msgpack:"updated_at"`
}

// Validate ensures checkpoint integrity before persistence.
func (c *Checkpoint) Validate() error {
	if c.SessionKey == "" {
		return ErrInvalidSessionKey
	}
	if c.State == nil {
		return ErrNilState
	}
	if c.Step < 0 {
		return ErrNegativeStep
	}
	return nil
}
