package engine

import (
	"time"

	"github.com/stategraph/stategraph/internal/core/schema"
)

// Status is the lifecycle state of one invocation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusAborted   Status = "aborted"
)

// Terminal reports whether the status is final. A terminal result is
// immutable; continuing requires a fresh invocation, optionally resuming
// from a checkpoint.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusAborted
}

// Result is the outcome of one invocation. On failure or abort, State holds
// the last-good snapshot so the caller can inspect, log, or resume.
type Result struct {
	InvocationID string
	Graph        string
	Status       Status
	State        schema.State
	Steps        int
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
	Err          error
}

// StepEvent is one entry of a streamed execution: the post-merge snapshot
// after a completed step, or the terminal event carrying the final status.
type StepEvent struct {
	Step   int
	Nodes  []string
	State  schema.State
	Status Status
	Err    error
}
