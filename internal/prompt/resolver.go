package prompt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scholar-api/internal/domain"
	"github.com/phrazzld/scholar-api/internal/generation"
	"github.com/phrazzld/scholar-api/internal/store"
)

// TemplateNotFoundError reports that neither the subject nor the wildcard
// has an active template of the requested kind.
type TemplateNotFoundError struct {
	Kind    domain.TemplateKind
	Subject string
}

// Error implements the error interface.
func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("no active %s template for subject %q or %q", e.Kind, e.Subject, domain.SubjectAll)
}

// Is matches generation.ErrTemplateNotFound.
func (e *TemplateNotFoundError) Is(target error) bool {
	return target == generation.ErrTemplateNotFound
}

// Rendered is a rendered prompt and the template it came from.
type Rendered struct {
	Text     string
	Template *domain.PromptTemplate
}

// Resolver selects the template for a kind and subject.
type Resolver struct {
	templates store.TemplateStore
	logger    *slog.Logger
}

// NewResolver creates a Resolver over templates.
func NewResolver(templates store.TemplateStore, logger *slog.Logger) (*Resolver, error) {
	if templates == nil {
		return nil, errors.New("template store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		templates: templates,
		logger:    logger.With("component", "prompt_resolver"),
	}, nil
}

// Resolve returns the active template with the highest version for kind and
// subject, falling back to the "all" subject.
func (r *Resolver) Resolve(ctx context.Context, kind domain.TemplateKind, subject string) (*domain.PromptTemplate, error) {
	candidates := []string{subject}
	if subject != domain.SubjectAll {
		candidates = append(candidates, domain.SubjectAll)
	}

	for _, s := range candidates {
		tmpl, err := r.templates.FindActive(ctx, kind, s)
		if err == nil {
			if s != subject {
				r.logger.DebugContext(ctx, "using wildcard template",
					"kind", kind,
					"subject", subject,
					"template_id", tmpl.ID,
					"version", tmpl.Version)
			}
			return tmpl, nil
		}
		if !errors.Is(err, store.ErrTemplateNotFound) {
			return nil, fmt.Errorf("failed to load %s template for %q: %w", kind, s, err)
		}
	}
	return nil, &TemplateNotFoundError{Kind: kind, Subject: subject}
}

// ResolveAndRender resolves the template and renders it with vars.
func (r *Resolver) ResolveAndRender(
	ctx context.Context,
	kind domain.TemplateKind,
	subject string,
	vars map[string]string,
) (Rendered, error) {
	tmpl, err := r.Resolve(ctx, kind, subject)
	if err != nil {
		return Rendered{}, err
	}
	text, err := Render(tmpl.Content, vars)
	if err != nil {
		return Rendered{}, fmt.Errorf("template %s v%d: %w", tmpl.Name, tmpl.Version, err)
	}
	return Rendered{Text: text, Template: tmpl}, nil
}
