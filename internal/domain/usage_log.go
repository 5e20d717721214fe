package domain

import (
	"time"

	"github.com/google/uuid"
)

// PromptUsageLog records one provider call that produced a persisted
// artifact, for auditing template effectiveness.
type PromptUsageLog struct {
	ID         uuid.UUID         `json:"id"`
	TemplateID uuid.UUID         `json:"template_id"`
	CourseID   uuid.UUID         `json:"course_id"`
	Kind       TemplateKind      `json:"kind"`
	Model      string            `json:"model"`
	InputData  map[string]string `json:"input_data"`
	OutputData string            `json:"output_data"`
	CreatedAt  time.Time         `json:"created_at"`
}
