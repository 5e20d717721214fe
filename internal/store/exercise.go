package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/scholar-api/internal/domain"
)

// ExerciseStore persists course exercises.
type ExerciseStore interface {
	// ListByCourse returns every exercise for the course, manual and generated.
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*domain.Exercise, error)

	// ReplaceAIGenerated deletes the course's AI-generated exercises and
	// inserts the given ones in a single transaction. Manually authored
	// exercises are untouched. On error nothing changes.
	// Returns the number of rows deleted.
	ReplaceAIGenerated(ctx context.Context, courseID uuid.UUID, exercises []*domain.Exercise) (int64, error)

	// WithTx returns a new ExerciseStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ExerciseStore
}
