package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/scholar-api/internal/domain"
)

// SummaryStore persists versioned knowledge summaries.
type SummaryStore interface {
	// Latest returns the highest version for the course.
	// Returns ErrSummaryNotFound if the course has none.
	Latest(ctx context.Context, courseID uuid.UUID) (*domain.KnowledgeSummary, error)

	// ListByCourse returns every version for the course in ascending order.
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*domain.KnowledgeSummary, error)

	// CreateNextVersion assigns summary.Version = max(version)+1 for the
	// course and inserts it atomically, so concurrent writers never produce
	// gaps or duplicates.
	CreateNextVersion(ctx context.Context, summary *domain.KnowledgeSummary) error

	// WithTx returns a new SummaryStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) SummaryStore
}
