package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/scholar-api/internal/domain"
	"github.com/phrazzld/scholar-api/internal/extract"
	"github.com/phrazzld/scholar-api/internal/generation"
	"github.com/phrazzld/scholar-api/internal/redact"
	"github.com/phrazzld/scholar-api/internal/service"
	"github.com/phrazzld/scholar-api/internal/service/auth"
	"github.com/phrazzld/scholar-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrSummaryNotFound),
		errors.Is(err, store.ErrCourseNotFound),
		errors.Is(err, store.ErrSummaryNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, generation.ErrMissingAnswer),
		errors.Is(err, generation.ErrNoSourceContent),
		errors.Is(err, generation.ErrInvalidConfig),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidDifficulty),
		errors.Is(err, domain.ErrInvalidQuestionType),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Prompt configuration errors
	case errors.Is(err, generation.ErrTemplateNotFound),
		errors.Is(err, generation.ErrMissingVariable):
		return http.StatusUnprocessableEntity

	// Upstream errors; timeouts first since they also match ErrProviderCallFailed
	case errors.Is(err, generation.ErrProviderTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, generation.ErrProviderCallFailed),
		errors.Is(err, generation.ErrExtractionFailed),
		errors.Is(err, generation.ErrNoValidExercises),
		errors.Is(err, generation.ErrEmptyGeneration):
		return http.StatusBadGateway

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var perr *generation.ProviderError
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, service.ErrCourseNotFound), errors.Is(err, store.ErrCourseNotFound):
		return "Course not found"
	case errors.Is(err, service.ErrSummaryNotFound), errors.Is(err, store.ErrSummaryNotFound):
		return "Knowledge summary not found"

	case errors.Is(err, store.ErrDuplicate):
		return "A concurrent request already produced this version; retry"

	case errors.Is(err, generation.ErrMissingAnswer):
		return "Both the standard answer and the user answer are required"
	case errors.Is(err, generation.ErrNoSourceContent):
		return "Course has no source content to generate from"
	case errors.Is(err, generation.ErrInvalidConfig):
		return "Invalid provider configuration: " + detail(err, generation.ErrInvalidConfig)
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID format"
	case errors.Is(err, domain.ErrInvalidDifficulty):
		return "Invalid difficulty"
	case errors.Is(err, domain.ErrInvalidQuestionType):
		return "Invalid question type"
	case errors.Is(err, domain.ErrValidation):
		return "Validation error: " + detail(err, domain.ErrValidation)
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, generation.ErrTemplateNotFound):
		return "No active prompt template is configured for this request"
	case errors.Is(err, generation.ErrMissingVariable):
		return "Prompt template references a variable that was not supplied"

	case errors.Is(err, generation.ErrProviderTimeout):
		return "AI provider timed out"
	case errors.As(err, &perr):
		msg := "AI provider call failed"
		if perr.StatusCode != 0 {
			msg = fmt.Sprintf("%s with status %d", msg, perr.StatusCode)
		}
		if perr.Message != "" {
			msg += ": " + redact.String(perr.Message)
		}
		return msg
	case errors.Is(err, generation.ErrEmptyGeneration):
		return "AI provider returned an empty response"
	case errors.Is(err, generation.ErrNoValidExercises):
		return "AI response contained no usable exercises"
	case errors.Is(err, generation.ErrExtractionFailed):
		return "AI response could not be parsed"

	default:
		return "An unexpected error occurred"
	}
}

// detail returns the text following sentinel in err's message, or a generic
// phrase when there is none.
func detail(err error, sentinel error) string {
	msg := err.Error()
	marker := sentinel.Error() + ": "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return redact.String(msg[i+len(marker):])
	}
	return "request rejected"
}

// rawResponse returns the model output carried by an extraction failure.
func rawResponse(err error) (string, bool) {
	var xerr *extract.ExtractionError
	if errors.As(err, &xerr) && xerr.Raw != "" {
		return xerr.Raw, true
	}
	return "", false
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Example format: "Key: 'CheckAnswerRequest.QuestionType' Error:Field validation for 'QuestionType' failed on the 'max' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte":
		return "too small"
	case "max", "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
