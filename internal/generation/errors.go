package generation

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Common errors returned by the generation pipeline.
var (
	// ErrTemplateNotFound is returned when no active template matches the
	// requested kind and subject, including the "all" fallback.
	ErrTemplateNotFound = errors.New("prompt template not found")

	// ErrMissingVariable is returned when a template references a variable
	// that was not supplied.
	ErrMissingVariable = errors.New("missing template variable")

	// ErrProviderCallFailed is returned for any transport, status or payload
	// failure while calling an LLM provider.
	ErrProviderCallFailed = errors.New("provider call failed")

	// ErrProviderTimeout is returned when a provider call exceeds its
	// deadline. It always also matches ErrProviderCallFailed.
	ErrProviderTimeout = errors.New("provider call timed out")

	// ErrEmptyGeneration is returned when the provider produced blank output.
	ErrEmptyGeneration = errors.New("provider returned empty content")

	// ErrExtractionFailed is returned when no structured value of the
	// expected shape could be recovered from a completion.
	ErrExtractionFailed = errors.New("failed to extract structured response")

	// ErrNoValidExercises is returned when every generated exercise was
	// rejected during coercion.
	ErrNoValidExercises = errors.New("no valid exercises in generated output")

	// ErrNoSourceContent is returned when a course has no source text to
	// generate from.
	ErrNoSourceContent = errors.New("course has no source content")

	// ErrMissingAnswer is returned when verification is requested without a
	// student answer or a standard answer.
	ErrMissingAnswer = errors.New("answer cannot be empty")

	// ErrInvalidConfig is returned when a provider is misconfigured.
	ErrInvalidConfig = errors.New("invalid provider configuration")

	// ErrUnknownBackend is returned when a model resolves to a backend that
	// has no registered factory.
	ErrUnknownBackend = errors.New("unknown provider backend")
)

// ProviderError describes a failed provider call. It matches
// ErrProviderCallFailed, and ErrProviderTimeout when Timeout is set.
type ProviderError struct {
	// Provider is the backend name, e.g. "openai" or "gemini".
	Provider string
	// Model is the model that was called.
	Model string
	// StatusCode is the upstream HTTP status when known, 0 otherwise.
	StatusCode int
	// Message is the redacted upstream message.
	Message string
	// Timeout reports whether the call ran out of time.
	Timeout bool
	// Transient reports whether a retry could plausibly succeed.
	Transient bool
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	prefix := fmt.Sprintf("%s provider call failed (model %s)", e.Provider, e.Model)
	if e.Timeout {
		prefix = fmt.Sprintf("%s provider call timed out (model %s)", e.Provider, e.Model)
	}
	if e.StatusCode != 0 {
		prefix = fmt.Sprintf("%s: status %d", prefix, e.StatusCode)
	}
	if e.Message != "" {
		return prefix + ": " + e.Message
	}
	return prefix
}

// Unwrap returns the underlying cause.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is matches the provider sentinels.
func (e *ProviderError) Is(target error) bool {
	switch target {
	case ErrProviderCallFailed:
		return true
	case ErrProviderTimeout:
		return e.Timeout
	}
	return false
}

// IsTimeout reports whether err was caused by an exceeded deadline.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsTransientStatus reports whether an HTTP status is worth retrying.
func IsTransientStatus(status int) bool {
	return status == 408 || status == 429 || status >= 500
}

// NewProviderError builds a ProviderError, classifying timeouts and
// transient statuses from err and status.
func NewProviderError(provider, model string, status int, message string, err error) *ProviderError {
	timeout := IsTimeout(err)
	transient := timeout || IsTransientStatus(status)
	if status == 0 && err != nil && !errors.Is(err, context.Canceled) {
		// Transport failures without a status (connection reset, DNS) are retryable.
		transient = true
	}
	return &ProviderError{
		Provider:   provider,
		Model:      model,
		StatusCode: status,
		Message:    message,
		Timeout:    timeout,
		Transient:  transient,
		Err:        err,
	}
}
