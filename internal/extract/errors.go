package extract

import (
	"fmt"

	"github.com/phrazzld/scholar-api/internal/generation"
)

const snippetLen = 200

// ExtractionError reports that no candidate in a completion parsed into the
// expected shape. Raw carries the full completion for diagnostics.
type ExtractionError struct {
	Shape   Shape
	Snippet string
	Raw     string
	Err     error
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	msg := fmt.Sprintf("no JSON %s found in response", e.Shape)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Snippet != "" {
		msg += fmt.Sprintf(" (response starts %q)", e.Snippet)
	}
	return msg
}

// Unwrap returns the last parse error, if any.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is matches generation.ErrExtractionFailed.
func (e *ExtractionError) Is(target error) bool {
	return target == generation.ErrExtractionFailed
}

func newExtractionError(raw string, shape Shape, err error) *ExtractionError {
	snippet := []rune(raw)
	if len(snippet) > snippetLen {
		snippet = snippet[:snippetLen]
	}
	return &ExtractionError{Shape: shape, Snippet: string(snippet), Raw: raw, Err: err}
}
