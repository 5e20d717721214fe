// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidKind is returned for an unknown prompt template kind.
	ErrInvalidKind = errors.New("invalid template kind")

	// ErrInvalidQuestionType is returned for an unknown exercise question type.
	ErrInvalidQuestionType = errors.New("invalid question type")

	// ErrInvalidDifficulty is returned for an unknown exercise difficulty.
	ErrInvalidDifficulty = errors.New("invalid difficulty")

	// ErrInvalidVersion is returned when a summary version is not positive.
	ErrInvalidVersion = errors.New("invalid version")
)
