// Package schema defines domain-specific errors
package schema

import "errors"

var (
	ErrEmptySchema      = errors.New("schema must declare at least one field")
	ErrInvalidFieldName = errors.New("field name cannot be empty")
	ErrDuplicateField   = errors.New("duplicate field name")
	ErrUnknownReducer   = errors.New("unknown reducer")

	// ErrSchemaViolation is returned when a partial update names a field
	// that is not declared in the schema. This is a programmer error and
	// is fatal for the execution that produced the update.
	ErrSchemaViolation = errors.New("schema violation")
)
