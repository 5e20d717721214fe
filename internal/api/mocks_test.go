package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/scholar-api/internal/api/middleware"
	"github.com/phrazzld/scholar-api/internal/domain"
	"github.com/phrazzld/scholar-api/internal/generation"
	"github.com/phrazzld/scholar-api/internal/service"
	"github.com/stretchr/testify/mock"
)

// MockGenerationService mocks the GenerationService interface
type MockGenerationService struct {
	mock.Mock
}

func (m *MockGenerationService) GenerateKnowledgeSummary(
	ctx context.Context,
	req service.SummaryRequest,
) (*service.SummaryResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SummaryResult), args.Error(1)
}

func (m *MockGenerationService) LatestSummary(ctx context.Context, courseID uuid.UUID) (*domain.KnowledgeSummary, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeSummary), args.Error(1)
}

func (m *MockGenerationService) SummaryHistory(
	ctx context.Context,
	courseID uuid.UUID,
) ([]*domain.KnowledgeSummary, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.KnowledgeSummary), args.Error(1)
}

func (m *MockGenerationService) GenerateExerciseSet(
	ctx context.Context,
	req service.ExerciseRequest,
) (*service.ExerciseSetResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExerciseSetResult), args.Error(1)
}

func (m *MockGenerationService) TestConnection(
	ctx context.Context,
	creds generation.Credentials,
) (*service.ConnectionResult, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ConnectionResult), args.Error(1)
}

// MockVerificationService mocks the VerificationService interface
type MockVerificationService struct {
	mock.Mock
}

func (m *MockVerificationService) Verify(ctx context.Context, req service.VerifyRequest) (domain.EquivalenceVerdict, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.EquivalenceVerdict), args.Error(1)
}

// newTestRouter mounts the handlers the way the server does, behind the
// trace middleware.
func newTestRouter(gen service.GenerationService, ver service.VerificationService) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(nil))
	r.Route("/api/v1", func(r chi.Router) {
		if gen != nil {
			h := NewGenerationHandler(gen, nil)
			r.Post("/courses/{courseID}/summary", h.GenerateSummary)
			r.Get("/courses/{courseID}/summary", h.GetLatestSummary)
			r.Get("/courses/{courseID}/summary/history", h.GetSummaryHistory)
			r.Post("/courses/{courseID}/exercises/generate", h.GenerateExercises)
			r.Post("/providers/test", h.TestProvider)
		}
		if ver != nil {
			r.Post("/answers/check", NewVerificationHandler(ver, nil).CheckAnswer)
		}
	})
	return r
}
