package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Course is the read-only teaching unit generation works from. Its source
// text is the extracted textbook content that prompts are built around.
type Course struct {
	ID          uuid.UUID `json:"id"`
	SubjectCode string    `json:"subject_code"`
	Title       string    `json:"title"`
	GradeLabel  string    `json:"grade_label"`
	Keywords    string    `json:"keywords"`
	SourceText  string    `json:"source_text"`
}

// HasSourceText reports whether the course carries non-blank source text.
func (c *Course) HasSourceText() bool {
	return strings.TrimSpace(c.SourceText) != ""
}
