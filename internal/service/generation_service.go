package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/scholar-api/internal/domain"
	"github.com/phrazzld/scholar-api/internal/events"
	"github.com/phrazzld/scholar-api/internal/extract"
	"github.com/phrazzld/scholar-api/internal/generation"
	"github.com/phrazzld/scholar-api/internal/lock"
	"github.com/phrazzld/scholar-api/internal/platform/logger"
	"github.com/phrazzld/scholar-api/internal/prompt"
	"github.com/phrazzld/scholar-api/internal/store"
)

// ProviderResolver maps caller credentials onto a ready provider.
// *generation.Registry satisfies it.
type ProviderResolver interface {
	Resolve(ctx context.Context, creds generation.Credentials) (generation.Provider, generation.Resolution, error)
}

// PromptRenderer selects and renders the template for a kind and subject.
// *prompt.Resolver satisfies it.
type PromptRenderer interface {
	ResolveAndRender(
		ctx context.Context,
		kind domain.TemplateKind,
		subject string,
		vars map[string]string,
	) (prompt.Rendered, error)
}

// GenerationConfig holds the tunables of the generation service.
type GenerationConfig struct {
	// CallOptions apply to every provider call.
	CallOptions generation.CallOptions
	// DefaultQuestionCount is used when a request leaves the count at zero.
	DefaultQuestionCount int
	// MaxQuestionCount bounds the requested count.
	MaxQuestionCount int
	// DefaultDifficulty is used when a request leaves the difficulty empty.
	DefaultDifficulty domain.Difficulty
}

func (c GenerationConfig) withDefaults() GenerationConfig {
	if c.DefaultQuestionCount <= 0 {
		c.DefaultQuestionCount = 5
	}
	if c.MaxQuestionCount < c.DefaultQuestionCount {
		c.MaxQuestionCount = 50
	}
	if !c.DefaultDifficulty.Valid() {
		c.DefaultDifficulty = domain.DifficultyBasic
	}
	return c
}

// GenerationDeps are the collaborators of the generation service.
type GenerationDeps struct {
	Courses   store.CourseStore
	Summaries store.SummaryStore
	Exercises store.ExerciseStore
	Prompts   PromptRenderer
	Providers ProviderResolver
	Locker    lock.Locker
	Events    events.EventEmitter
}

// SummaryRequest asks for the knowledge summary of a course.
type SummaryRequest struct {
	CourseID        uuid.UUID
	Credentials     generation.Credentials
	ForceRegenerate bool
}

// SummaryResult is the outcome of GenerateKnowledgeSummary. Reused is true
// when an existing summary was returned without calling the provider.
type SummaryResult struct {
	Summary    *domain.KnowledgeSummary `json:"summary"`
	Reused     bool                     `json:"reused"`
	Resolution *generation.Resolution   `json:"resolution,omitempty"`
}

// ExerciseRequest asks for a fresh exercise set for a course. Zero values
// take the configured defaults.
type ExerciseRequest struct {
	CourseID      uuid.UUID
	Credentials   generation.Credentials
	QuestionCount int
	Difficulty    domain.Difficulty
}

// ExerciseSetResult is the outcome of GenerateExerciseSet.
type ExerciseSetResult struct {
	CourseID       uuid.UUID             `json:"course_id"`
	GeneratedCount int                   `json:"generated_count"`
	DroppedCount   int                   `json:"dropped_count"`
	ReplacedCount  int64                 `json:"replaced_count"`
	Exercises      []*domain.Exercise    `json:"exercises"`
	Resolution     generation.Resolution `json:"resolution"`
}

// ConnectionResult is the outcome of TestConnection.
type ConnectionResult struct {
	Status     generation.ConnectionStatus `json:"status"`
	Resolution generation.Resolution       `json:"resolution"`
}

// GenerationService produces and reads AI-generated course material.
type GenerationService interface {
	// GenerateKnowledgeSummary returns the course's latest summary, generating
	// a new version when none exists or ForceRegenerate is set.
	GenerateKnowledgeSummary(ctx context.Context, req SummaryRequest) (*SummaryResult, error)

	// LatestSummary returns the highest summary version for the course.
	LatestSummary(ctx context.Context, courseID uuid.UUID) (*domain.KnowledgeSummary, error)

	// SummaryHistory returns every summary version for the course, ascending.
	SummaryHistory(ctx context.Context, courseID uuid.UUID) ([]*domain.KnowledgeSummary, error)

	// GenerateExerciseSet replaces the course's AI-generated exercises with a
	// freshly generated set.
	GenerateExerciseSet(ctx context.Context, req ExerciseRequest) (*ExerciseSetResult, error)

	// TestConnection probes the provider the credentials resolve to.
	TestConnection(ctx context.Context, creds generation.Credentials) (*ConnectionResult, error)
}

type generationServiceImpl struct {
	courses   store.CourseStore
	summaries store.SummaryStore
	exercises store.ExerciseStore
	prompts   PromptRenderer
	providers ProviderResolver
	locker    lock.Locker
	events    events.EventEmitter
	cfg       GenerationConfig
	logger    *slog.Logger
}

// NewGenerationService creates a GenerationService.
// It returns an error if any required dependency is nil. Events is optional.
func NewGenerationService(deps GenerationDeps, cfg GenerationConfig, logger *slog.Logger) (GenerationService, error) {
	required := []struct {
		name  string
		isNil bool
	}{
		{"courses", deps.Courses == nil},
		{"summaries", deps.Summaries == nil},
		{"exercises", deps.Exercises == nil},
		{"prompts", deps.Prompts == nil},
		{"providers", deps.Providers == nil},
		{"locker", deps.Locker == nil},
	}
	for _, r := range required {
		if r.isNil {
			return nil, &GenerationServiceError{
				Operation: "create_service",
				Message:   r.name + " cannot be nil",
			}
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &generationServiceImpl{
		courses:   deps.Courses,
		summaries: deps.Summaries,
		exercises: deps.Exercises,
		prompts:   deps.Prompts,
		providers: deps.Providers,
		locker:    deps.Locker,
		events:    deps.Events,
		cfg:       cfg.withDefaults(),
		logger:    logger.With("component", "generation_service"),
	}, nil
}

// GenerateKnowledgeSummary implements GenerationService.
func (s *generationServiceImpl) GenerateKnowledgeSummary(
	ctx context.Context,
	req SummaryRequest,
) (*SummaryResult, error) {
	const op = "generate_summary"
	log := logger.FromContextOrDefault(ctx, s.logger).With("course_id", req.CourseID)

	course, err := s.sourceCourse(ctx, op, req.CourseID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, lock.GenerationKey(course.ID, domain.KindKnowledgeSummary))
	if err != nil {
		return nil, NewGenerationServiceError(op, "failed to acquire generation lock", err)
	}
	defer unlock()

	if !req.ForceRegenerate {
		latest, err := s.summaries.Latest(ctx, course.ID)
		switch {
		case err == nil:
			log.Debug("returning existing summary", "version", latest.Version)
			return &SummaryResult{Summary: latest, Reused: true}, nil
		case !errors.Is(err, store.ErrSummaryNotFound):
			return nil, NewGenerationServiceError(op, "failed to load latest summary", err)
		}
	}

	vars := courseVariables(course)
	rendered, err := s.prompts.ResolveAndRender(ctx, domain.KindKnowledgeSummary, course.SubjectCode, vars)
	if err != nil {
		return nil, NewGenerationServiceError(op, "failed to build prompt", err)
	}

	output, res, err := s.call(ctx, req.Credentials, rendered.Text)
	if err != nil {
		return nil, NewGenerationServiceError(op, "provider call failed", err)
	}

	summary, err := domain.NewKnowledgeSummary(course.ID, strings.TrimSpace(output))
	if err != nil {
		return nil, NewGenerationServiceError(op, "invalid summary", err)
	}
	if err := s.summaries.CreateNextVersion(ctx, summary); err != nil {
		return nil, NewGenerationServiceError(op, "failed to save summary", err)
	}

	log.Info("knowledge summary generated",
		"version", summary.Version,
		"model", res.Model,
		"template_id", rendered.Template.ID)

	s.emit(ctx, events.TypeSummaryGenerated, course.ID, rendered.Template, res, vars, output)

	return &SummaryResult{Summary: summary, Resolution: &res}, nil
}

// LatestSummary implements GenerationService.
func (s *generationServiceImpl) LatestSummary(
	ctx context.Context,
	courseID uuid.UUID,
) (*domain.KnowledgeSummary, error) {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		return nil, NewGenerationServiceError("latest_summary", "failed to load course", err)
	}
	latest, err := s.summaries.Latest(ctx, courseID)
	if err != nil {
		return nil, NewGenerationServiceError("latest_summary", "failed to load summary", err)
	}
	return latest, nil
}

// SummaryHistory implements GenerationService.
func (s *generationServiceImpl) SummaryHistory(
	ctx context.Context,
	courseID uuid.UUID,
) ([]*domain.KnowledgeSummary, error) {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		return nil, NewGenerationServiceError("summary_history", "failed to load course", err)
	}
	history, err := s.summaries.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, NewGenerationServiceError("summary_history", "failed to list summaries", err)
	}
	return history, nil
}

// GenerateExerciseSet implements GenerationService.
func (s *generationServiceImpl) GenerateExerciseSet(
	ctx context.Context,
	req ExerciseRequest,
) (*ExerciseSetResult, error) {
	const op = "generate_exercises"
	log := logger.FromContextOrDefault(ctx, s.logger).With("course_id", req.CourseID)

	count, difficulty, err := s.exerciseParams(req)
	if err != nil {
		return nil, NewGenerationServiceError(op, "invalid request", err)
	}

	course, err := s.sourceCourse(ctx, op, req.CourseID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, lock.GenerationKey(course.ID, domain.KindExerciseGeneration))
	if err != nil {
		return nil, NewGenerationServiceError(op, "failed to acquire generation lock", err)
	}
	defer unlock()

	vars := courseVariables(course)
	vars["difficulty"] = string(difficulty)
	vars["question_count"] = strconv.Itoa(count)

	rendered, err := s.prompts.ResolveAndRender(ctx, domain.KindExerciseGeneration, course.SubjectCode, vars)
	if err != nil {
		return nil, NewGenerationServiceError(op, "failed to build prompt", err)
	}

	output, res, err := s.call(ctx, req.Credentials, rendered.Text)
	if err != nil {
		return nil, NewGenerationServiceError(op, "provider call failed", err)
	}

	batch, err := extract.Exercises(output, difficulty)
	if err != nil {
		log.Warn("generated exercises unusable", "error", err, "model", res.Model)
		return nil, NewGenerationServiceError(op, "failed to parse exercises", err)
	}

	exercises := make([]*domain.Exercise, 0, len(batch.Items))
	dropped := batch.Dropped
	for _, draft := range batch.Items {
		e, err := domain.NewGeneratedExercise(course.ID, draft.Type, draft.Question, draft.Options,
			draft.Answer, draft.Explanation, draft.Difficulty)
		if err != nil {
			log.Debug("dropping invalid exercise", "error", err)
			dropped++
			continue
		}
		exercises = append(exercises, e)
	}
	if len(exercises) == 0 {
		return nil, NewGenerationServiceError(op, "failed to parse exercises",
			fmt.Errorf("%w: all %d items rejected", generation.ErrNoValidExercises, dropped))
	}

	replaced, err := s.exercises.ReplaceAIGenerated(ctx, course.ID, exercises)
	if err != nil {
		return nil, NewGenerationServiceError(op, "failed to save exercises", err)
	}

	log.Info("exercise set generated",
		"generated", len(exercises),
		"dropped", dropped,
		"replaced", replaced,
		"model", res.Model)
	if len(batch.Reasons) > 0 {
		log.Debug("exercise drop reasons", "reasons", batch.Reasons)
	}

	s.emit(ctx, events.TypeExerciseSetGenerated, course.ID, rendered.Template, res, vars, output)

	return &ExerciseSetResult{
		CourseID:       course.ID,
		GeneratedCount: len(exercises),
		DroppedCount:   dropped,
		ReplacedCount:  replaced,
		Exercises:      exercises,
		Resolution:     res,
	}, nil
}

// TestConnection implements GenerationService.
func (s *generationServiceImpl) TestConnection(
	ctx context.Context,
	creds generation.Credentials,
) (*ConnectionResult, error) {
	provider, res, err := s.providers.Resolve(ctx, creds)
	if err != nil {
		return nil, NewGenerationServiceError("test_connection", "failed to resolve provider", err)
	}
	status := provider.TestConnection(ctx)
	logger.FromContextOrDefault(ctx, s.logger).Info("provider connection tested",
		"backend", res.Backend,
		"model", res.Model,
		"ok", status.OK,
		"latency_ms", status.Latency.Milliseconds())
	return &ConnectionResult{Status: status, Resolution: res}, nil
}

// sourceCourse loads a course and checks it has text to generate from.
func (s *generationServiceImpl) sourceCourse(ctx context.Context, op string, id uuid.UUID) (*domain.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, NewGenerationServiceError(op, "failed to load course", err)
	}
	if !course.HasSourceText() {
		return nil, NewGenerationServiceError(op, "course has no source text", generation.ErrNoSourceContent)
	}
	return course, nil
}

func (s *generationServiceImpl) exerciseParams(req ExerciseRequest) (int, domain.Difficulty, error) {
	count := req.QuestionCount
	if count == 0 {
		count = s.cfg.DefaultQuestionCount
	}
	if count < 1 || count > s.cfg.MaxQuestionCount {
		return 0, "", fmt.Errorf("%w: question count must be between 1 and %d",
			domain.ErrValidation, s.cfg.MaxQuestionCount)
	}

	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = s.cfg.DefaultDifficulty
	}
	if !difficulty.Valid() {
		return 0, "", fmt.Errorf("%w: %q", domain.ErrInvalidDifficulty, difficulty)
	}
	return count, difficulty, nil
}

// call resolves a provider for creds and runs prompt through it. Blank output
// is reported as generation.ErrEmptyGeneration.
func (s *generationServiceImpl) call(
	ctx context.Context,
	creds generation.Credentials,
	promptText string,
) (string, generation.Resolution, error) {
	provider, res, err := s.providers.Resolve(ctx, creds)
	if err != nil {
		return "", res, err
	}
	output, err := provider.Call(ctx, promptText, s.cfg.CallOptions)
	if err != nil {
		return "", res, err
	}
	if strings.TrimSpace(output) == "" {
		return "", res, fmt.Errorf("%w: %s returned no text", generation.ErrEmptyGeneration, res.Model)
	}
	return output, res, nil
}

// emit publishes an artifact event. Failures are logged; the artifact is
// already persisted.
func (s *generationServiceImpl) emit(
	ctx context.Context,
	eventType string,
	courseID uuid.UUID,
	tmpl *domain.PromptTemplate,
	res generation.Resolution,
	vars map[string]string,
	output string,
) {
	if s.events == nil {
		return
	}
	payload := events.GenerationPayload{
		Model:      res.Model,
		InputData:  vars,
		OutputData: output,
	}
	if tmpl != nil {
		payload.TemplateID = tmpl.ID
		payload.Kind = string(tmpl.Kind)
	}

	event, err := events.NewArtifactEvent(eventType, courseID, payload)
	if err == nil {
		err = s.events.EmitEvent(ctx, event)
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to emit artifact event",
			"error", err,
			"event_type", eventType,
			"course_id", courseID)
	}
}

// courseVariables are the template variables every generation prompt shares.
func courseVariables(c *domain.Course) map[string]string {
	return map[string]string{
		"course_title":   c.Title,
		"grade":          c.GradeLabel,
		"keywords":       c.Keywords,
		"course_content": c.SourceText,
	}
}
