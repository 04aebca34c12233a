// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates user provided invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateLimitExceeded indicates rate limit has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrLowRelevance indicates retrieval scored below the relevance gate.
	ErrLowRelevance = errors.New("retrieved context below relevance threshold")

	// ErrIndexNotReady indicates the document index has not finished building.
	ErrIndexNotReady = errors.New("document index not ready")

	// ErrNoPendingCourse indicates a section code arrived with no course
	// lookup to attach it to.
	ErrNoPendingCourse = errors.New("no pending course lookup")

	// ErrNotInRoom indicates an operation that requires room membership.
	ErrNotInRoom = errors.New("not in this room")

	// ErrUserOffline indicates the private message target has no live session.
	ErrUserOffline = errors.New("user not found or offline")
)

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// FetchError represents upstream fetch failures with context.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error (url=%s, status=%d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error (url=%s): %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new fetch error.
func NewFetchError(url string, statusCode int, err error) *FetchError {
	return &FetchError{
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}
