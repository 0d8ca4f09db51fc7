// Package checkpoint defines domain-specific errors
package checkpoint

import "errors"

var (
	ErrNotFound          = errors.New("checkpoint not found")
	ErrInvalidSessionKey = errors.New("invalid session key")
	ErrNilState          = errors.New("checkpoint state cannot be nil")
	ErrNegativeStep      = errors.New("checkpoint step cannot be negative")
)
