package catalog

import "encoding/json"

// unknownValue is the literal surfaced for any field the upstream catalog
// omits or nulls out. Consumers rely on seeing this exact string instead of
// a missing key or a null.
const unknownValue = "unknown"

// Field is a tagged union of a known value and an explicit unknown state.
// It marshals to the wrapped value when known and to the string "unknown"
// otherwise, so a payload never mixes nulls and absent keys.
type Field[T any] struct {
	value T
	known bool
}

// Known wraps a present value.
func Known[T any](v T) Field[T] {
	return Field[T]{value: v, known: true}
}

// Unknown returns the explicit absent state.
func Unknown[T any]() Field[T] {
	return Field[T]{}
}

// KnownOr wraps v unless ok is false, in which case the field is unknown.
// Convenience for the common "value, ok" extraction pattern.
func KnownOr[T any](v T, ok bool) Field[T] {
	if !ok {
		return Unknown[T]()
	}
	return Known(v)
}

// IsKnown reports whether the field holds a value.
func (f Field[T]) IsKnown() bool { return f.known }

// Value returns the wrapped value and whether it is known.
func (f Field[T]) Value() (T, bool) { return f.value, f.known }

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.known {
		return json.Marshal(unknownValue)
	}
	return json.Marshal(f.value)
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil && s == unknownValue {
		*f = Unknown[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Known(v)
	return nil
}

// stringField extracts a non-empty string key from a loosely typed payload.
func stringField(m map[string]any, key string) Field[string] {
	v, ok := m[key].(string)
	if !ok || v == "" {
		return Unknown[string]()
	}
	return Known(v)
}
