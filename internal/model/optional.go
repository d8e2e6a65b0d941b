package model

import (
	"bytes"
	"encoding/json"
)

// Optional tracks whether a field was supplied at all, separately from its
// value. Set=false means "leave unchanged" (or "use the default"); Set=true
// with a nil pointer value means an explicit null.
type Optional[T any] struct {
	Set   bool
	Value T
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// IsZero reports whether the field was omitted. Used by the omitzero tag.
func (o Optional[T]) IsZero() bool { return !o.Set }

// Or returns the held value, or fallback when the field was omitted.
func (o Optional[T]) Or(fallback T) T {
	if o.Set {
		return o.Value
	}
	return fallback
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.Value = zero
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
