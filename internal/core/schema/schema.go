// Package schema defines the shared-state schema and the reducer-based
// merge semantics used by graph execution.
package schema

import (
	"fmt"
)

// Reducer selects the merge policy for a single state field.
type Reducer string

const (
	// ReducerReplace makes the newest value supersede the old one.
	ReducerReplace Reducer = "replace"
	// ReducerAppend concatenates new values onto the existing sequence.
	ReducerAppend Reducer = "append"
)

// Field declares one state field and its merge policy.
type Field struct {
	Name    string
	Reducer Reducer
	// Default is the initial value for the field when the caller does not
	// supply one. Append fields always start as an empty sequence.
	Default any
}

// Schema is an ordered set of field declarations. It is immutable after
// Define and safe to share across concurrent executions.
type Schema struct {
	fields []Field
	index  map[string]int
}

// Define builds a schema from the given field declarations.
// Field names must be unique. An empty reducer defaults to replace.
func Define(fields ...Field) (*Schema, error) {
	if len(fields) == 0 {
		return nil, ErrEmptySchema
	}
	s := &Schema{index: make(map[string]int, len(fields))}
	for _, f := range fields {
		if f.Name == "" {
			return nil, ErrInvalidFieldName
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateField, f.Name)
		}
		switch f.Reducer {
		case "":
			f.Reducer = ReducerReplace
		case ReducerReplace, ReducerAppend:
		default:
			return nil, fmt.Errorf("%w: %q on field %q", ErrUnknownReducer, f.Reducer, f.Name)
		}
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s, nil
}

// Fields returns the field declarations in definition order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Has reports whether the schema declares the named field.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Reducer returns the merge policy for the named field.
func (s *Schema) Reducer(name string) (Reducer, bool) {
	i, ok := s.index[name]
	if !ok {
		return "", false
	}
	return s.fields[i].Reducer, true
}

// Zero returns a fresh snapshot with every field set to its default.
// Append fields start as empty sequences regardless of their declared default.
func (s *Schema) Zero() State {
	st := make(State, len(s.fields))
	for _, f := range s.fields {
		if f.Reducer == ReducerAppend {
			st[f.Name] = []any{}
			continue
		}
		st[f.Name] = f.Default
	}
	return st
}
