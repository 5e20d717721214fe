package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scholar-api/internal/domain"
	"github.com/phrazzld/scholar-api/internal/platform/logger"
	"github.com/phrazzld/scholar-api/internal/store"
)

// PostgresUsageLogStore implements store.UsageLogStore.
type PostgresUsageLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.UsageLogStore = (*PostgresUsageLogStore)(nil)

// NewPostgresUsageLogStore creates a usage log store over db.
func NewPostgresUsageLogStore(db store.DBTX, logger *slog.Logger) *PostgresUsageLogStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUsageLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "usage_log_store")),
	}
}

// Create implements store.UsageLogStore.Create.
func (s *PostgresUsageLogStore) Create(ctx context.Context, entry *domain.PromptUsageLog) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	input := entry.InputData
	if input == nil {
		input = map[string]string{}
	}
	raw, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("%w: input data: %v", store.ErrInvalidEntity, err)
	}

	var templateID any
	if entry.TemplateID != uuid.Nil {
		templateID = entry.TemplateID
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO prompt_usage_logs (id, template_id, course_id, kind, model, input_data, output_data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8)
	`, entry.ID, templateID, entry.CourseID, string(entry.Kind), entry.Model, string(raw), entry.OutputData, entry.CreatedAt)
	if err != nil {
		log.Error("failed to record prompt usage",
			slog.String("course_id", entry.CourseID.String()),
			slog.String("kind", string(entry.Kind)),
			slog.String("error", err.Error()))
		return store.NewStoreError("prompt_usage_log", "create", "insert failed", MapError(err))
	}
	return nil
}
