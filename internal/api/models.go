package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scholar-api/internal/domain"
	"github.com/phrazzld/scholar-api/internal/generation"
	"github.com/phrazzld/scholar-api/internal/service"
)

// ProviderCredentials are supplied with every generation request. They are
// used for one call and never stored.
type ProviderCredentials struct {
	APIKey string `json:"api_key" validate:"max=512"`
	Model  string `json:"model"   validate:"max=128"`
}

func (c ProviderCredentials) toDomain() generation.Credentials {
	return generation.Credentials{Model: c.Model, APIKey: c.APIKey}
}

// GenerateSummaryRequest is the body of POST /courses/{courseID}/summary.
type GenerateSummaryRequest struct {
	ProviderCredentials
	Regenerate bool `json:"regenerate"`
}

// GenerateExercisesRequest is the body of POST /courses/{courseID}/exercises/generate.
// Zero values take the server defaults.
type GenerateExercisesRequest struct {
	ProviderCredentials
	QuestionCount int    `json:"question_count" validate:"gte=0"`
	Difficulty    string `json:"difficulty"     validate:"omitempty,oneof=basic medium advanced"`
}

// CheckAnswerRequest is the body of POST /answers/check. Blank answers are
// rejected by the verifier rather than the validator so both get the same
// message.
type CheckAnswerRequest struct {
	ProviderCredentials
	QuestionText   string `json:"question_text"   validate:"max=10000"`
	QuestionType   string `json:"question_type"   validate:"max=64"`
	StandardAnswer string `json:"standard_answer" validate:"max=10000"`
	UserAnswer     string `json:"user_answer"     validate:"max=10000"`
}

// TestProviderRequest is the body of POST /providers/test.
type TestProviderRequest struct {
	ProviderCredentials
}

// ResolutionResponse reports which model served a request.
type ResolutionResponse struct {
	RequestedModel string `json:"requested_model"`
	Model          string `json:"model"`
	Backend        string `json:"backend"`
	Fallback       bool   `json:"fallback"`
}

// SummaryResponse represents a knowledge summary version.
type SummaryResponse struct {
	ID          uuid.UUID           `json:"id"`
	CourseID    uuid.UUID           `json:"course_id"`
	Content     string              `json:"content"`
	Version     int                 `json:"version"`
	GeneratedAt time.Time           `json:"generated_at"`
	Reused      bool                `json:"reused"`
	Resolution  *ResolutionResponse `json:"resolution,omitempty"`
}

// SummaryHistoryResponse lists every summary version of a course.
type SummaryHistoryResponse struct {
	CourseID uuid.UUID         `json:"course_id"`
	Versions []SummaryResponse `json:"versions"`
}

// ExerciseResponse represents one generated exercise.
type ExerciseResponse struct {
	ID           uuid.UUID `json:"id"`
	QuestionType string    `json:"question_type"`
	QuestionText string    `json:"question_text"`
	Options      []string  `json:"options"`
	Answer       string    `json:"answer"`
	Explanation  string    `json:"explanation"`
	Difficulty   string    `json:"difficulty"`
}

// ExerciseSetResponse summarises an exercise generation run.
type ExerciseSetResponse struct {
	CourseID       uuid.UUID          `json:"course_id"`
	GeneratedCount int                `json:"generated_count"`
	DroppedCount   int                `json:"dropped_count"`
	ReplacedCount  int64              `json:"replaced_count"`
	Exercises      []ExerciseResponse `json:"exercises"`
	Resolution     ResolutionResponse `json:"resolution"`
}

// VerdictResponse is the equivalence verdict for a checked answer.
type VerdictResponse struct {
	Correct  bool   `json:"correct"`
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
	Hint     string `json:"hint"`
}

// ConnectionResponse reports a provider connectivity probe.
type ConnectionResponse struct {
	OK         bool               `json:"ok"`
	Message    string             `json:"message"`
	LatencyMS  int64              `json:"latency_ms"`
	Resolution ResolutionResponse `json:"resolution"`
}

func resolutionToResponse(res generation.Resolution) ResolutionResponse {
	return ResolutionResponse{
		RequestedModel: res.Requested,
		Model:          res.Model,
		Backend:        string(res.Backend),
		Fallback:       res.Fallback,
	}
}

func summaryToResponse(s *domain.KnowledgeSummary) SummaryResponse {
	return SummaryResponse{
		ID:          s.ID,
		CourseID:    s.CourseID,
		Content:     s.Content,
		Version:     s.Version,
		GeneratedAt: s.GeneratedAt,
	}
}

func summaryResultToResponse(r *service.SummaryResult) SummaryResponse {
	resp := summaryToResponse(r.Summary)
	resp.Reused = r.Reused
	if r.Resolution != nil {
		res := resolutionToResponse(*r.Resolution)
		resp.Resolution = &res
	}
	return resp
}

func exerciseSetToResponse(r *service.ExerciseSetResult) ExerciseSetResponse {
	exercises := make([]ExerciseResponse, 0, len(r.Exercises))
	for _, e := range r.Exercises {
		options := e.Options
		if options == nil {
			options = []string{}
		}
		exercises = append(exercises, ExerciseResponse{
			ID:           e.ID,
			QuestionType: string(e.QuestionType),
			QuestionText: e.QuestionText,
			Options:      options,
			Answer:       e.Answer,
			Explanation:  e.Explanation,
			Difficulty:   string(e.Difficulty),
		})
	}
	return ExerciseSetResponse{
		CourseID:       r.CourseID,
		GeneratedCount: r.GeneratedCount,
		DroppedCount:   r.DroppedCount,
		ReplacedCount:  r.ReplacedCount,
		Exercises:      exercises,
		Resolution:     resolutionToResponse(r.Resolution),
	}
}
