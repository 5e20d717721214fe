package store

import (
	"context"

	"github.com/phrazzld/scholar-api/internal/domain"
)

// UsageLogStore records prompt usage.
type UsageLogStore interface {
	// Create inserts a usage log entry.
	Create(ctx context.Context, entry *domain.PromptUsageLog) error
}
