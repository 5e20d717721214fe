package extract

import (
	"testing"

	"github.com/phrazzld/scholar-api/internal/domain"
	"github.com/phrazzld/scholar-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExercises_FourOfFiveValid(t *testing.T) {
	raw := "```json\n" + `[
  {"type": "choice", "question": "2+2?", "options": ["3", "4"], "answer": "4"},
  {"question_type": "fill", "question_text": "H2O is ___", "answer": "water", "difficulty": "hard"},
  {"type": "short_answer", "question": "Explain photosynthesis", "answer": "Light to chemical energy", "analysis": "Chlorophyll"},
  {"type": "choice", "question": "Pick a prime", "answer": "B"},
  {"type": "multiple_choice", "question": "Largest?", "choices": {"B": "10", "A": "1"}, "answer": 10}
]` + "\n```"

	batch, err := Exercises(raw, domain.DifficultyMedium)
	require.NoError(t, err)
	require.Len(t, batch.Items, 4)
	assert.Equal(t, 1, batch.Dropped)
	require.Len(t, batch.Reasons, 1)
	assert.Contains(t, batch.Reasons[0], "item 3")

	assert.Equal(t, domain.QuestionChoice, batch.Items[0].Type)
	assert.Equal(t, []string{"3", "4"}, batch.Items[0].Options)
	assert.Equal(t, domain.DifficultyMedium, batch.Items[0].Difficulty)

	assert.Equal(t, domain.QuestionFill, batch.Items[1].Type)
	assert.Equal(t, "H2O is ___", batch.Items[1].Question)
	assert.Equal(t, domain.DifficultyAdvanced, batch.Items[1].Difficulty)
	assert.Empty(t, batch.Items[1].Options)

	assert.Equal(t, "Chlorophyll", batch.Items[2].Explanation)

	assert.Equal(t, domain.QuestionChoice, batch.Items[3].Type)
	assert.Equal(t, []string{"A. 1", "B. 10"}, batch.Items[3].Options)
	assert.Equal(t, "10", batch.Items[3].Answer)
}

func TestExercises_CoercionRules(t *testing.T) {
	tests := []struct {
		name    string
		element string
		check   func(t *testing.T, d ExerciseDraft)
		dropped bool
	}{
		{
			name:    "missing type with options infers choice",
			element: `{"question": "Q", "options": ["a", "b"], "answer": "a"}`,
			check:   func(t *testing.T, d ExerciseDraft) { assert.Equal(t, domain.QuestionChoice, d.Type) },
		},
		{
			name:    "missing type without options infers short answer",
			element: `{"question": "Q", "answer": "a"}`,
			check:   func(t *testing.T, d ExerciseDraft) { assert.Equal(t, domain.QuestionShortAnswer, d.Type) },
		},
		{
			name:    "fill drops stray options",
			element: `{"type": "Fill-In-The-Blank", "question": "Q", "options": ["x"], "answer": "a"}`,
			check: func(t *testing.T, d ExerciseDraft) {
				assert.Equal(t, domain.QuestionFill, d.Type)
				assert.Empty(t, d.Options)
			},
		},
		{
			name:    "unknown difficulty uses default",
			element: `{"type": "essay", "question": "Q", "answer": "a", "difficulty": "legendary"}`,
			check:   func(t *testing.T, d ExerciseDraft) { assert.Equal(t, domain.DifficultyBasic, d.Difficulty) },
		},
		{
			name:    "chinese type label",
			element: `{"type": "填空题", "question": "Q", "answer": "a"}`,
			check:   func(t *testing.T, d ExerciseDraft) { assert.Equal(t, domain.QuestionFill, d.Type) },
		},
		{name: "unknown type", element: `{"type": "matching", "question": "Q", "answer": "a"}`, dropped: true},
		{name: "missing answer", element: `{"type": "fill", "question": "Q"}`, dropped: true},
		{name: "blank question", element: `{"type": "fill", "question": "  ", "answer": "a"}`, dropped: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `[` + tt.element + `, {"type": "fill", "question": "anchor", "answer": "x"}]`
			batch, err := Exercises(raw, domain.DifficultyBasic)
			require.NoError(t, err)
			if tt.dropped {
				assert.Equal(t, 1, batch.Dropped)
				assert.Len(t, batch.Items, 1)
				return
			}
			require.Len(t, batch.Items, 2)
			tt.check(t, batch.Items[0])
		})
	}
}

func TestExercises_NoneValid(t *testing.T) {
	batch, err := Exercises(`[{"type": "choice", "question": "Q", "answer": "A"}, "oops"]`, domain.DifficultyBasic)
	require.Error(t, err)
	assert.ErrorIs(t, err, generation.ErrNoValidExercises)
	assert.NotErrorIs(t, err, generation.ErrExtractionFailed)
	assert.Equal(t, 2, batch.Dropped)
}

func TestExercises_StrayEmptyListInProse(t *testing.T) {
	raw := `old items [] and here is the new set: [{"type": "fill", "question": "1+1 = ___", "answer": "2"}]`

	batch, err := Exercises(raw, domain.DifficultyBasic)
	require.NoError(t, err)
	require.Len(t, batch.Items, 1)
	assert.Equal(t, "1+1 = ___", batch.Items[0].Question)
	assert.Zero(t, batch.Dropped)
}

func TestExercises_Unparsable(t *testing.T) {
	_, err := Exercises("Here are some questions: 1. What is 2+2?", domain.DifficultyBasic)
	require.Error(t, err)
	assert.ErrorIs(t, err, generation.ErrExtractionFailed)
}

func TestNormalizeDifficulty(t *testing.T) {
	assert.Equal(t, domain.DifficultyBasic, NormalizeDifficulty("Easy", domain.DifficultyMedium))
	assert.Equal(t, domain.DifficultyAdvanced, NormalizeDifficulty(" HARD ", domain.DifficultyBasic))
	assert.Equal(t, domain.DifficultyMedium, NormalizeDifficulty("", domain.DifficultyMedium))
}
