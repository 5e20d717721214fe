package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/scholar-api/internal/domain"
)

// CourseStore reads courses. Courses are owned elsewhere; generation never writes them.
type CourseStore interface {
	// GetByID retrieves a course by its unique ID.
	// Returns ErrCourseNotFound if the course does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error)
}
