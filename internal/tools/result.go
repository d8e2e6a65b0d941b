package tools

import (
	"fmt"

	"github.com/nhle/todo-extension/internal/host"
)

// Success wraps data in a successful result.
func Success(data any) host.Result {
	return host.Result{Success: true, Data: data}
}

// Failure wraps a message in a failed result.
func Failure(message string) host.Result {
	return host.Result{Success: false, Error: message}
}

// ErrorMessage extracts the message of an error, a string, or any other
// value that was thrown or returned as a failure.
func ErrorMessage(v any) string {
	switch e := v.(type) {
	case nil:
		return "unknown error"
	case error:
		return e.Error()
	case string:
		return e
	case fmt.Stringer:
		return e.String()
	default:
		return fmt.Sprint(v)
	}
}
