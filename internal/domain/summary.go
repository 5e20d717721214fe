package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// KnowledgeSummary is one generated version of a course's summary. Versions
// for a course start at 1 and are contiguous; the highest is current.
type KnowledgeSummary struct {
	ID          uuid.UUID `json:"id"`
	CourseID    uuid.UUID `json:"course_id"`
	Content     string    `json:"content"`
	Version     int       `json:"version"`
	GeneratedAt time.Time `json:"generated_at"`
}

// NewKnowledgeSummary builds an unsaved summary. The version is assigned by
// the store when the row is inserted.
func NewKnowledgeSummary(courseID uuid.UUID, content string) (*KnowledgeSummary, error) {
	s := &KnowledgeSummary{
		ID:          uuid.New(),
		CourseID:    courseID,
		Content:     content,
		GeneratedAt: time.Now().UTC(),
	}
	if courseID == uuid.Nil {
		return nil, fmt.Errorf("%w: course ID cannot be empty", ErrValidation)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: summary content", ErrEmptyContent)
	}
	return s, nil
}
