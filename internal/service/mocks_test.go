package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/scholar-api/internal/domain"
	"github.com/phrazzld/scholar-api/internal/events"
	"github.com/phrazzld/scholar-api/internal/prompt"
	"github.com/phrazzld/scholar-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockCourseStore mocks the CourseStore interface
type MockCourseStore struct {
	mock.Mock
}

func (m *MockCourseStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Course), args.Error(1)
}

// MockSummaryStore mocks the SummaryStore interface
type MockSummaryStore struct {
	mock.Mock
}

func (m *MockSummaryStore) Latest(ctx context.Context, courseID uuid.UUID) (*domain.KnowledgeSummary, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeSummary), args.Error(1)
}

func (m *MockSummaryStore) ListByCourse(
	ctx context.Context,
	courseID uuid.UUID,
) ([]*domain.KnowledgeSummary, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.KnowledgeSummary), args.Error(1)
}

func (m *MockSummaryStore) CreateNextVersion(ctx context.Context, summary *domain.KnowledgeSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

func (m *MockSummaryStore) WithTx(tx *sql.Tx) store.SummaryStore {
	args := m.Called(tx)
	return args.Get(0).(store.SummaryStore)
}

// MockExerciseStore mocks the ExerciseStore interface
type MockExerciseStore struct {
	mock.Mock
}

func (m *MockExerciseStore) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*domain.Exercise, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Exercise), args.Error(1)
}

func (m *MockExerciseStore) ReplaceAIGenerated(
	ctx context.Context,
	courseID uuid.UUID,
	exercises []*domain.Exercise,
) (int64, error) {
	args := m.Called(ctx, courseID, exercises)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockExerciseStore) WithTx(tx *sql.Tx) store.ExerciseStore {
	args := m.Called(tx)
	return args.Get(0).(store.ExerciseStore)
}

// MockPromptRenderer mocks the PromptRenderer interface
type MockPromptRenderer struct {
	mock.Mock
}

func (m *MockPromptRenderer) ResolveAndRender(
	ctx context.Context,
	kind domain.TemplateKind,
	subject string,
	vars map[string]string,
) (prompt.Rendered, error) {
	args := m.Called(ctx, kind, subject, vars)
	return args.Get(0).(prompt.Rendered), args.Error(1)
}

// MockEventEmitter mocks the EventEmitter interface
type MockEventEmitter struct {
	mock.Mock
}

func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.ArtifactEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// memorySummaryStore is a SummaryStore backed by a map. Versions are
// assigned under its mutex.
type memorySummaryStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID][]*domain.KnowledgeSummary
}

func newMemorySummaryStore() *memorySummaryStore {
	return &memorySummaryStore{rows: make(map[uuid.UUID][]*domain.KnowledgeSummary)}
}

func (s *memorySummaryStore) Latest(_ context.Context, courseID uuid.UUID) (*domain.KnowledgeSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.rows[courseID]
	if len(rows) == 0 {
		return nil, store.ErrSummaryNotFound
	}
	return rows[len(rows)-1], nil
}

func (s *memorySummaryStore) ListByCourse(_ context.Context, courseID uuid.UUID) ([]*domain.KnowledgeSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]*domain.KnowledgeSummary{}, s.rows[courseID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (s *memorySummaryStore) CreateNextVersion(_ context.Context, summary *domain.KnowledgeSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	summary.Version = len(s.rows[summary.CourseID]) + 1
	s.rows[summary.CourseID] = append(s.rows[summary.CourseID], summary)
	return nil
}

func (s *memorySummaryStore) WithTx(*sql.Tx) store.SummaryStore { return s }
