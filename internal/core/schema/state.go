package schema

// State is a concrete snapshot of field values at one point in execution.
// A snapshot is exclusively owned by one in-flight execution; it is never
// shared across executions except through explicit checkpoint load/store.
type State map[string]any

// Clone returns a copy of the snapshot. Sequence values are copied so that
// appends on the clone never alias the original backing array.
func (st State) Clone() State {
	out := make(State, len(st))
	for k, v := range st {
		if items, ok := v.([]any); ok {
			cp := make([]any, len(items))
			copy(cp, items)
			out[k] = cp
			continue
		}
		out[k] = v
	}
	return out
}

// GetString returns the field value as a string, or "" when the field is
// unset or holds a different type.
func (st State) GetString(name string) string {
	v, _ := st[name].(string)
	return v
}

// GetInt returns the field value as an int, accepting the numeric types
// that survive a serialization round trip.
func (st State) GetInt(name string) int {
	switch v := st[name].(type) {
	case int:
		return v
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// GetBool returns the field value as a bool, or false when unset.
func (st State) GetBool(name string) bool {
	v, _ := st[name].(bool)
	return v
}

// GetSlice returns the field value as a sequence. Non-sequence values yield
// a single-element sequence; nil yields an empty one.
func (st State) GetSlice(name string) []any {
	return toSequence(st[name])
}
