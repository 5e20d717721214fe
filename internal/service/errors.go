package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/scholar-api/internal/store"
)

// Common service errors. The API layer maps both to HTTP 404.
var (
	// ErrCourseNotFound indicates the requested course does not exist.
	ErrCourseNotFound = errors.New("course not found")

	// ErrSummaryNotFound indicates the course has no knowledge summary yet.
	ErrSummaryNotFound = errors.New("knowledge summary not found")
)

// GenerationServiceError wraps errors from the generation and verification
// services with the operation that failed.
type GenerationServiceError struct {
	// Operation is the operation that failed (e.g., "generate_summary")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for GenerationServiceError.
func (e *GenerationServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *GenerationServiceError) Unwrap() error {
	return e.Err
}

// NewGenerationServiceError creates a new GenerationServiceError.
// Not-found store errors are translated to the service sentinels and
// returned without wrapping.
func NewGenerationServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrCourseNotFound), errors.Is(err, store.ErrCourseNotFound):
		return ErrCourseNotFound
	case errors.Is(err, ErrSummaryNotFound), errors.Is(err, store.ErrSummaryNotFound):
		return ErrSummaryNotFound
	}

	return &GenerationServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
