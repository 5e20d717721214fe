package events

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scholar-api/internal/domain"
	"github.com/phrazzld/scholar-api/internal/store"
)

// UsageLogHandler persists a PromptUsageLog for every artifact event.
type UsageLogHandler struct {
	logs   store.UsageLogStore
	logger *slog.Logger
}

var _ EventHandler = (*UsageLogHandler)(nil)

// NewUsageLogHandler creates a handler writing to logs.
func NewUsageLogHandler(logs store.UsageLogStore, logger *slog.Logger) *UsageLogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UsageLogHandler{
		logs:   logs,
		logger: logger.With("component", "usage_log_handler"),
	}
}

// HandleEvent implements EventHandler.
func (h *UsageLogHandler) HandleEvent(ctx context.Context, event *ArtifactEvent) error {
	var payload GenerationPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", event.Type, err)
	}

	entry := &domain.PromptUsageLog{
		ID:         uuid.New(),
		TemplateID: payload.TemplateID,
		CourseID:   event.CourseID,
		Kind:       domain.TemplateKind(payload.Kind),
		Model:      payload.Model,
		InputData:  payload.InputData,
		OutputData: payload.OutputData,
		CreatedAt:  event.CreatedAt,
	}
	if err := h.logs.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to record prompt usage: %w", err)
	}

	h.logger.DebugContext(ctx, "recorded prompt usage",
		"event_id", event.ID,
		"course_id", event.CourseID,
		"kind", payload.Kind,
		"model", payload.Model)
	return nil
}
