// Package errors provides error wrapping utilities for consistent error handling.
package errors

import (
	"fmt"
)

// WrappedError contains both internal error details and user-facing message.
type WrappedError struct {
	Operation   string // Operation being performed (e.g., "fetch_sections", "query_index")
	Module      string // Module name (e.g., "course", "rag", "rooms")
	Cause       error  // Underlying error
	UserMessage string // User-friendly message
}

func (e *WrappedError) Error() string {
	return fmt.Sprintf("[%s:%s] %s: %v", e.Module, e.Operation, e.UserMessage, e.Cause)
}

func (e *WrappedError) Unwrap() error {
	return e.Cause
}

// Wrap wraps an error with module and operation context.
// Returns nil if err is nil.
func Wrap(module, operation string, err error, userMessage string) error {
	if err == nil {
		return nil
	}
	return &WrappedError{
		Operation:   operation,
		Module:      module,
		Cause:       err,
		UserMessage: userMessage,
	}
}

// GetUserMessage returns the user-friendly message from a WrappedError.
// Returns the error string if not a WrappedError.
func GetUserMessage(err error) string {
	if err == nil {
		return ""
	}
	if wrapped, ok := err.(*WrappedError); ok {
		return wrapped.UserMessage
	}
	return err.Error()
}
