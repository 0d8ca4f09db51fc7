package schema

import (
	"fmt"
	"reflect"
)

// Merge applies a node's partial update to a base snapshot through each
// field's declared reducer and returns the resulting snapshot. The base is
// not mutated. Fields absent from the partial are untouched. A partial that
// names a field outside the schema fails with ErrSchemaViolation and no
// merge occurs.
func (s *Schema) Merge(base, partial State) (State, error) {
	for name := range partial {
		if !s.Has(name) {
			return nil, fmt.Errorf("%w: field %q is not declared in the schema", ErrSchemaViolation, name)
		}
	}

	out := base.Clone()
	// Iterate in definition order so the merge is deterministic.
	for _, f := range s.fields {
		v, ok := partial[f.Name]
		if !ok {
			continue
		}
		switch f.Reducer {
		case ReducerAppend:
			out[f.Name] = append(toSequence(out[f.Name]), toSequence(v)...)
		default:
			out[f.Name] = v
		}
	}
	return out, nil
}

// toSequence normalizes a value for the append reducer: slices contribute
// their elements in order, a scalar contributes itself, nil contributes
// nothing.
func toSequence(v any) []any {
	if v == nil {
		return nil
	}
	if items, ok := v.([]any); ok {
		return items
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice {
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = rv.Index(i).Interface()
		}
		return out
	}
	return []any{v}
}
