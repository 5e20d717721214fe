package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the generation service.
const (
	TypeSummaryGenerated     = "knowledge_summary.generated"
	TypeExerciseSetGenerated = "exercise_set.generated"
)

// ArtifactEvent announces that a generated artifact was persisted.
type ArtifactEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`
	// Type is one of the Type* constants
	Type string `json:"type"`
	// CourseID is the course the artifact belongs to
	CourseID uuid.UUID `json:"course_id"`
	// Payload carries the type-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`
	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// GenerationPayload describes the provider call that produced an artifact.
type GenerationPayload struct {
	TemplateID uuid.UUID         `json:"template_id"`
	Kind       string            `json:"kind"`
	Model      string            `json:"model"`
	InputData  map[string]string `json:"input_data"`
	OutputData string            `json:"output_data"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *ArtifactEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewArtifactEvent creates an event of eventType for courseID with payload.
func NewArtifactEvent(eventType string, courseID uuid.UUID, payload interface{}) (*ArtifactEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &ArtifactEvent{
		ID:        uuid.New(),
		Type:      eventType,
		CourseID:  courseID,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *ArtifactEvent) error
}

// EventEmitter defines an interface for components that can emit events.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *ArtifactEvent) error
}
