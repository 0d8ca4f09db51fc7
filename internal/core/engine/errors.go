// Package engine defines execution errors
package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrStepLimitExceeded reports an aborted execution: the step counter
	// reached the configured limit before the graph terminated. It is a
	// reported outcome distinct from success, not a defect in the engine.
	ErrStepLimitExceeded = errors.New("step limit exceeded")

	// ErrCancelled reports an execution aborted between steps by caller
	// cancellation.
	ErrCancelled = errors.New("execution cancelled")
)

// NodeError wraps a failure raised inside a node function, including
// timeouts and nested sub-graph failures. It is fatal for the current
// execution; the snapshot at failure time is preserved on the Result.
type NodeError struct {
	Node string
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %q: %v", e.Node, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}
