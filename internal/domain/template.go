package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TemplateKind identifies what a prompt template produces.
type TemplateKind string

// Known template kinds.
const (
	KindKnowledgeSummary   TemplateKind = "knowledge_summary"
	KindExerciseGeneration TemplateKind = "exercise_generation"
	KindAnswerCheck        TemplateKind = "answer_check"
)

// SubjectAll is the wildcard subject used as the resolution fallback.
const SubjectAll = "all"

// Valid reports whether k is a known template kind.
func (k TemplateKind) Valid() bool {
	switch k {
	case KindKnowledgeSummary, KindExerciseGeneration, KindAnswerCheck:
		return true
	}
	return false
}

// PromptTemplate is a versioned prompt with {name} placeholders, scoped by
// kind and subject.
type PromptTemplate struct {
	ID        uuid.UUID    `json:"id"`
	Kind      TemplateKind `json:"kind"`
	Subject   string       `json:"subject"`
	Name      string       `json:"name"`
	Content   string       `json:"content"`
	Version   int          `json:"version"`
	IsActive  bool         `json:"is_active"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Validate checks if the template has valid data.
func (t *PromptTemplate) Validate() error {
	if t.ID == uuid.Nil {
		return fmt.Errorf("%w: template ID cannot be empty", ErrValidation)
	}
	if !t.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, t.Kind)
	}
	if t.Subject == "" {
		return fmt.Errorf("%w: template subject cannot be empty", ErrValidation)
	}
	if t.Content == "" {
		return fmt.Errorf("%w: template content", ErrEmptyContent)
	}
	if t.Version < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidVersion, t.Version)
	}
	return nil
}
