package store

import (
	"context"

	"github.com/phrazzld/scholar-api/internal/domain"
)

// TemplateStore reads prompt templates.
type TemplateStore interface {
	// FindActive returns the active template with the highest version for the
	// exact kind and subject. No wildcard fallback happens at this level.
	// Returns ErrTemplateNotFound if none matches.
	FindActive(ctx context.Context, kind domain.TemplateKind, subject string) (*domain.PromptTemplate, error)
}
