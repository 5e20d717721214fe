package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeneratedExercise(t *testing.T) {
	courseID := uuid.New()

	t.Run("valid choice", func(t *testing.T) {
		e, err := NewGeneratedExercise(courseID, QuestionChoice, "2+2?", []string{"3", "4"}, "4", "", DifficultyBasic)
		require.NoError(t, err)
		assert.True(t, e.IsAIGenerated)
		assert.NotEqual(t, uuid.Nil, e.ID)
		assert.Equal(t, courseID, e.CourseID)
	})

	t.Run("fill gets empty options", func(t *testing.T) {
		e, err := NewGeneratedExercise(courseID, QuestionFill, "The capital of France is __.", nil, "Paris", "", DifficultyMedium)
		require.NoError(t, err)
		assert.NotNil(t, e.Options)
		assert.Empty(t, e.Options)
	})

	tests := []struct {
		name       string
		qType      QuestionType
		question   string
		options    []string
		answer     string
		difficulty Difficulty
		wantErr    error
	}{
		{"choice without options", QuestionChoice, "Q", nil, "A", DifficultyBasic, ErrValidation},
		{"fill with options", QuestionFill, "Q", []string{"x"}, "A", DifficultyBasic, ErrValidation},
		{"unknown type", QuestionType("essay"), "Q", nil, "A", DifficultyBasic, ErrInvalidQuestionType},
		{"unknown difficulty", QuestionFill, "Q", nil, "A", Difficulty("hard"), ErrInvalidDifficulty},
		{"blank question", QuestionFill, "  ", nil, "A", DifficultyBasic, ErrEmptyContent},
		{"blank answer", QuestionShortAnswer, "Q", nil, "", DifficultyBasic, ErrEmptyContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGeneratedExercise(courseID, tt.qType, tt.question, tt.options, tt.answer, "", tt.difficulty)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}

	t.Run("nil course", func(t *testing.T) {
		_, err := NewGeneratedExercise(uuid.Nil, QuestionFill, "Q", nil, "A", "", DifficultyBasic)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestNewKnowledgeSummary(t *testing.T) {
	s, err := NewKnowledgeSummary(uuid.New(), "Key points")
	require.NoError(t, err)
	assert.Zero(t, s.Version)
	assert.False(t, s.GeneratedAt.IsZero())

	_, err = NewKnowledgeSummary(uuid.New(), " \n")
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = NewKnowledgeSummary(uuid.Nil, "x")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPromptTemplateValidate(t *testing.T) {
	valid := PromptTemplate{
		ID:      uuid.New(),
		Kind:    KindKnowledgeSummary,
		Subject: SubjectAll,
		Content: "Summarize {course_title}",
		Version: 1,
	}
	require.NoError(t, valid.Validate())

	bad := valid
	bad.Kind = "quiz"
	assert.ErrorIs(t, bad.Validate(), ErrInvalidKind)

	bad = valid
	bad.Version = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidVersion)

	bad = valid
	bad.Content = ""
	assert.ErrorIs(t, bad.Validate(), ErrEmptyContent)
}

func TestCourseHasSourceText(t *testing.T) {
	assert.False(t, (&Course{SourceText: " \t\n"}).HasSourceText())
	assert.True(t, (&Course{SourceText: "Photosynthesis"}).HasSourceText())
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, ClampScore(-5))
	assert.Equal(t, 100, ClampScore(150))
	assert.Equal(t, 42, ClampScore(42))
}
