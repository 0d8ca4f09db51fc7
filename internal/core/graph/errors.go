// Package graph defines domain-specific errors
package graph

import "errors"

var (
	// Construction errors
	ErrNilSchema     = errors.New("builder requires a schema")
	ErrDuplicateNode = errors.New("duplicate node name")
	ErrNilNodeFunc   = errors.New("node function cannot be nil")
	ErrNilSubgraph   = errors.New("subgraph cannot be nil")
	ErrReservedName  = errors.New("node name is reserved")
	ErrEdgeConflict  = errors.New("node already has a conditional edge")
	ErrNilRouter     = errors.New("conditional edge requires a router")
	ErrEmptyLabelMap = errors.New("conditional edge requires at least one label")

	// ErrGraphValidation wraps every compile-time validation failure.
	// Compile-time errors must be fixed before any invocation.
	ErrGraphValidation = errors.New("graph validation failed")

	// ErrRouting is returned at runtime when a router yields a label with
	// no mapped successor. Failing loudly is deliberate: silent
	// termination would mask logic bugs in the router.
	ErrRouting = errors.New("routing failed")
)
