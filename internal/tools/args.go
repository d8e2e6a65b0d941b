package tools

import (
	"github.com/nhle/todo-extension/internal/model"
)

// Args holds validated parameters. Present keys map to a string, int or
// bool, or to nil for an explicit null. Omitted parameters are absent.
type Args map[string]any

// Has reports whether name was supplied, null included.
func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// String returns a supplied string, or "".
func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// StringPtr returns a supplied non-null string, or nil.
func (a Args) StringPtr(name string) *string {
	s, ok := a[name].(string)
	if !ok {
		return nil
	}
	return &s
}

// OptString returns a supplied non-null string as an Optional.
func (a Args) OptString(name string) model.Optional[string] {
	if s, ok := a[name].(string); ok {
		return model.Some(s)
	}
	return model.Optional[string]{}
}

// NullString distinguishes omitted, null, and a value.
func (a Args) NullString(name string) model.Optional[*string] {
	v, ok := a[name]
	if !ok {
		return model.Optional[*string]{}
	}
	if s, ok := v.(string); ok {
		return model.Some(&s)
	}
	return model.Some[*string](nil)
}

// Int returns a supplied integer, or 0.
func (a Args) Int(name string) int {
	n, _ := a[name].(int)
	return n
}

// OptInt returns a supplied non-null integer as an Optional.
func (a Args) OptInt(name string) model.Optional[int] {
	if n, ok := a[name].(int); ok {
		return model.Some(n)
	}
	return model.Optional[int]{}
}

// NullInt distinguishes omitted, null, and a value.
func (a Args) NullInt(name string) model.Optional[*int] {
	v, ok := a[name]
	if !ok {
		return model.Optional[*int]{}
	}
	if n, ok := v.(int); ok {
		return model.Some(&n)
	}
	return model.Some[*int](nil)
}

// OptBool returns a supplied non-null boolean as an Optional.
func (a Args) OptBool(name string) model.Optional[bool] {
	if b, ok := a[name].(bool); ok {
		return model.Some(b)
	}
	return model.Optional[bool]{}
}
