package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scholar-api/internal/domain"
	"github.com/phrazzld/scholar-api/internal/platform/logger"
	"github.com/phrazzld/scholar-api/internal/store"
)

// PostgresCourseStore implements store.CourseStore.
type PostgresCourseStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.CourseStore = (*PostgresCourseStore)(nil)

// NewPostgresCourseStore creates a course store over db.
// If logger is nil, a default logger will be used.
func NewPostgresCourseStore(db store.DBTX, logger *slog.Logger) *PostgresCourseStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCourseStore{
		db:     db,
		logger: logger.With(slog.String("component", "course_store")),
	}
}

// GetByID implements store.CourseStore.GetByID.
func (s *PostgresCourseStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, subject_code, title, grade_label, keywords, source_text
		FROM courses
		WHERE id = $1
	`
	var c domain.Course
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID,
		&c.SubjectCode,
		&c.Title,
		&c.GradeLabel,
		&c.Keywords,
		&c.SourceText,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("course not found", slog.String("course_id", id.String()))
			return nil, store.ErrCourseNotFound
		}
		log.Error("failed to get course", slog.String("course_id", id.String()), slog.String("error", err.Error()))
		return nil, store.NewStoreError("course", "get", "query failed", MapError(err))
	}
	return &c, nil
}
