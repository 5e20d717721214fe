package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/scholar-api/internal/api/shared"
	"github.com/phrazzld/scholar-api/internal/domain"
	"github.com/phrazzld/scholar-api/internal/platform/logger"
	"github.com/phrazzld/scholar-api/internal/redact"
	"github.com/phrazzld/scholar-api/internal/service"
)

// GenerationHandler handles summary, exercise and provider HTTP requests.
type GenerationHandler struct {
	generation service.GenerationService
	logger     *slog.Logger
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(generation service.GenerationService, logger *slog.Logger) *GenerationHandler {
	if generation == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("generation service cannot be nil for GenerationHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerationHandler{
		generation: generation,
		logger:     logger.With(slog.String("component", "generation_handler")),
	}
}

// GenerateSummary handles POST /courses/{courseID}/summary.
// It returns 201 when a new version was written and 200 when the existing
// summary was reused.
func (h *GenerationHandler) GenerateSummary(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	courseID, err := getPathUUID(r, "courseID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req GenerateSummaryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.generation.GenerateKnowledgeSummary(r.Context(), service.SummaryRequest{
		CourseID:        courseID,
		Credentials:     req.toDomain(),
		ForceRegenerate: req.Regenerate,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate knowledge summary")
		return
	}

	status := http.StatusCreated
	if result.Reused {
		status = http.StatusOK
	}
	log.Debug("summary request served",
		slog.String("course_id", courseID.String()),
		slog.Int("version", result.Summary.Version),
		slog.Bool("reused", result.Reused))
	shared.RespondWithData(w, r, status, summaryResultToResponse(result))
}

// GetLatestSummary handles GET /courses/{courseID}/summary.
func (h *GenerationHandler) GetLatestSummary(w http.ResponseWriter, r *http.Request) {
	courseID, err := getPathUUID(r, "courseID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	summary, err := h.generation.LatestSummary(r.Context(), courseID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load knowledge summary")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, summaryToResponse(summary))
}

// GetSummaryHistory handles GET /courses/{courseID}/summary/history.
func (h *GenerationHandler) GetSummaryHistory(w http.ResponseWriter, r *http.Request) {
	courseID, err := getPathUUID(r, "courseID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	history, err := h.generation.SummaryHistory(r.Context(), courseID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load summary history")
		return
	}

	versions := make([]SummaryResponse, 0, len(history))
	for _, s := range history {
		versions = append(versions, summaryToResponse(s))
	}
	shared.RespondWithData(w, r, http.StatusOK, SummaryHistoryResponse{
		CourseID: courseID,
		Versions: versions,
	})
}

// GenerateExercises handles POST /courses/{courseID}/exercises/generate.
func (h *GenerationHandler) GenerateExercises(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	courseID, err := getPathUUID(r, "courseID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req GenerateExercisesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.generation.GenerateExerciseSet(r.Context(), service.ExerciseRequest{
		CourseID:      courseID,
		Credentials:   req.toDomain(),
		QuestionCount: req.QuestionCount,
		Difficulty:    domain.Difficulty(req.Difficulty),
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate exercises")
		return
	}

	log.Debug("exercise request served",
		slog.String("course_id", courseID.String()),
		slog.Int("generated", result.GeneratedCount),
		slog.Int("dropped", result.DroppedCount))
	shared.RespondWithData(w, r, http.StatusCreated, exerciseSetToResponse(result))
}

// TestProvider handles POST /providers/test. A failed probe is still a 200;
// the outcome is in the body.
func (h *GenerationHandler) TestProvider(w http.ResponseWriter, r *http.Request) {
	var req TestProviderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.generation.TestConnection(r.Context(), req.toDomain())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to test provider connection")
		return
	}

	message := result.Status.Message
	if !result.Status.OK {
		message = redact.String(message)
	}
	shared.RespondWithData(w, r, http.StatusOK, ConnectionResponse{
		OK:         result.Status.OK,
		Message:    message,
		LatencyMS:  result.Status.Latency.Milliseconds(),
		Resolution: resolutionToResponse(result.Resolution),
	})
}
