package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/scholar-api/internal/domain"
	"github.com/phrazzld/scholar-api/internal/platform/logger"
	"github.com/phrazzld/scholar-api/internal/store"
)

// PostgresTemplateStore implements store.TemplateStore.
type PostgresTemplateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.TemplateStore = (*PostgresTemplateStore)(nil)

// NewPostgresTemplateStore creates a template store over db.
func NewPostgresTemplateStore(db store.DBTX, logger *slog.Logger) *PostgresTemplateStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTemplateStore{
		db:     db,
		logger: logger.With(slog.String("component", "template_store")),
	}
}

// FindActive implements store.TemplateStore.FindActive.
func (s *PostgresTemplateStore) FindActive(
	ctx context.Context,
	kind domain.TemplateKind,
	subject string,
) (*domain.PromptTemplate, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, kind, subject, name, content, version, is_active, created_at, updated_at
		FROM prompt_templates
		WHERE kind = $1 AND subject = $2 AND is_active
		ORDER BY version DESC
		LIMIT 1
	`
	var t domain.PromptTemplate
	var k string
	err := s.db.QueryRowContext(ctx, query, string(kind), subject).Scan(
		&t.ID,
		&k,
		&t.Subject,
		&t.Name,
		&t.Content,
		&t.Version,
		&t.IsActive,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTemplateNotFound
		}
		log.Error("failed to find template",
			slog.String("kind", string(kind)),
			slog.String("subject", subject),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("prompt_template", "find_active", "query failed", MapError(err))
	}
	t.Kind = domain.TemplateKind(k)
	return &t, nil
}
