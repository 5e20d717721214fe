package prompt_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/scholar-api/internal/domain"
	"github.com/phrazzld/scholar-api/internal/generation"
	"github.com/phrazzld/scholar-api/internal/prompt"
	"github.com/phrazzld/scholar-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryTemplates selects the highest active version, as the postgres store does.
type memoryTemplates struct {
	rows    []domain.PromptTemplate
	failFor string
	lookups []string
}

func (m *memoryTemplates) FindActive(_ context.Context, kind domain.TemplateKind, subject string) (*domain.PromptTemplate, error) {
	m.lookups = append(m.lookups, subject)
	if subject == m.failFor {
		return nil, errors.New("connection reset")
	}
	var best *domain.PromptTemplate
	for i := range m.rows {
		row := &m.rows[i]
		if row.Kind != kind || row.Subject != subject || !row.IsActive {
			continue
		}
		if best == nil || row.Version > best.Version {
			best = row
		}
	}
	if best == nil {
		return nil, store.ErrTemplateNotFound
	}
	return best, nil
}

func tmpl(kind domain.TemplateKind, subject string, version int, active bool, content string) domain.PromptTemplate {
	return domain.PromptTemplate{
		ID:       uuid.New(),
		Kind:     kind,
		Subject:  subject,
		Name:     string(kind) + "-" + subject,
		Content:  content,
		Version:  version,
		IsActive: active,
	}
}

func TestResolver_Resolve(t *testing.T) {
	templates := &memoryTemplates{rows: []domain.PromptTemplate{
		tmpl(domain.KindKnowledgeSummary, "math", 1, true, "math v1"),
		tmpl(domain.KindKnowledgeSummary, "math", 3, true, "math v3"),
		tmpl(domain.KindKnowledgeSummary, "math", 4, false, "math v4 inactive"),
		tmpl(domain.KindKnowledgeSummary, domain.SubjectAll, 2, true, "all v2"),
		tmpl(domain.KindExerciseGeneration, "english", 1, true, "english exercises"),
	}}
	r, err := prompt.NewResolver(templates, nil)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("highest active version for subject", func(t *testing.T) {
		got, err := r.Resolve(ctx, domain.KindKnowledgeSummary, "math")
		require.NoError(t, err)
		assert.Equal(t, 3, got.Version)
		assert.Equal(t, "math v3", got.Content)
	})

	t.Run("falls back to all", func(t *testing.T) {
		got, err := r.Resolve(ctx, domain.KindKnowledgeSummary, "chinese")
		require.NoError(t, err)
		assert.Equal(t, domain.SubjectAll, got.Subject)
	})

	t.Run("not found after fallback", func(t *testing.T) {
		_, err := r.Resolve(ctx, domain.KindExerciseGeneration, "math")
		require.Error(t, err)
		var notFound *prompt.TemplateNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, domain.KindExerciseGeneration, notFound.Kind)
		assert.Equal(t, "math", notFound.Subject)
		assert.ErrorIs(t, err, generation.ErrTemplateNotFound)
	})
}

func TestResolver_StoreFailureIsNotMasked(t *testing.T) {
	templates := &memoryTemplates{failFor: "math"}
	r, err := prompt.NewResolver(templates, nil)
	require.NoError(t, err)

	_, err = r.Resolve(context.Background(), domain.KindKnowledgeSummary, "math")
	require.Error(t, err)
	assert.NotErrorIs(t, err, generation.ErrTemplateNotFound)
	assert.Equal(t, []string{"math"}, templates.lookups, "no fallback lookup after a store failure")
}

func TestResolver_ResolveAndRender(t *testing.T) {
	templates := &memoryTemplates{rows: []domain.PromptTemplate{
		tmpl(domain.KindKnowledgeSummary, domain.SubjectAll, 1, true, "Course {course_title}, grade {grade}"),
	}}
	r, err := prompt.NewResolver(templates, nil)
	require.NoError(t, err)

	rendered, err := r.ResolveAndRender(context.Background(), domain.KindKnowledgeSummary, "math",
		map[string]string{"course_title": "Angles", "grade": "7"})
	require.NoError(t, err)
	assert.Equal(t, "Course Angles, grade 7", rendered.Text)
	assert.Equal(t, 1, rendered.Template.Version)

	_, err = r.ResolveAndRender(context.Background(), domain.KindKnowledgeSummary, "math",
		map[string]string{"course_title": "Angles"})
	assert.ErrorIs(t, err, generation.ErrMissingVariable)
}

func TestNewResolver_NilStore(t *testing.T) {
	_, err := prompt.NewResolver(nil, nil)
	assert.Error(t, err)
}
