package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// QuestionType is the answer format of an exercise.
type QuestionType string

// Supported question types.
const (
	QuestionChoice      QuestionType = "choice"
	QuestionFill        QuestionType = "fill"
	QuestionShortAnswer QuestionType = "short_answer"
)

// Valid reports whether q is a supported question type.
func (q QuestionType) Valid() bool {
	switch q {
	case QuestionChoice, QuestionFill, QuestionShortAnswer:
		return true
	}
	return false
}

// Difficulty is the target level of an exercise.
type Difficulty string

// Supported difficulties.
const (
	DifficultyBasic    Difficulty = "basic"
	DifficultyMedium   Difficulty = "medium"
	DifficultyAdvanced Difficulty = "advanced"
)

// Valid reports whether d is a supported difficulty.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBasic, DifficultyMedium, DifficultyAdvanced:
		return true
	}
	return false
}

// Exercise is a single question attached to a course. Rows created by the
// generator carry IsAIGenerated and are replaced wholesale on regeneration;
// manually authored rows are left alone.
type Exercise struct {
	ID            uuid.UUID    `json:"id"`
	CourseID      uuid.UUID    `json:"course_id"`
	QuestionType  QuestionType `json:"question_type"`
	QuestionText  string       `json:"question_text"`
	Options       []string     `json:"options"`
	Answer        string       `json:"answer"`
	Explanation   string       `json:"explanation"`
	Difficulty    Difficulty   `json:"difficulty"`
	IsAIGenerated bool         `json:"is_ai_generated"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// NewGeneratedExercise builds an AI-generated exercise for courseID and
// validates it.
func NewGeneratedExercise(
	courseID uuid.UUID,
	qType QuestionType,
	question string,
	options []string,
	answer string,
	explanation string,
	difficulty Difficulty,
) (*Exercise, error) {
	now := time.Now().UTC()
	if options == nil {
		options = []string{}
	}
	e := &Exercise{
		ID:            uuid.New(),
		CourseID:      courseID,
		QuestionType:  qType,
		QuestionText:  question,
		Options:       options,
		Answer:        answer,
		Explanation:   explanation,
		Difficulty:    difficulty,
		IsAIGenerated: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks if the Exercise has valid data. Options are required for
// choice questions and must be empty otherwise.
func (e *Exercise) Validate() error {
	if e.ID == uuid.Nil {
		return fmt.Errorf("%w: exercise ID cannot be empty", ErrValidation)
	}
	if e.CourseID == uuid.Nil {
		return fmt.Errorf("%w: course ID cannot be empty", ErrValidation)
	}
	if !e.QuestionType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidQuestionType, e.QuestionType)
	}
	if !e.Difficulty.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDifficulty, e.Difficulty)
	}
	if strings.TrimSpace(e.QuestionText) == "" {
		return fmt.Errorf("%w: question text", ErrEmptyContent)
	}
	if strings.TrimSpace(e.Answer) == "" {
		return fmt.Errorf("%w: answer", ErrEmptyContent)
	}
	switch {
	case e.QuestionType == QuestionChoice && len(e.Options) == 0:
		return fmt.Errorf("%w: choice questions require options", ErrValidation)
	case e.QuestionType != QuestionChoice && len(e.Options) > 0:
		return fmt.Errorf("%w: only choice questions take options", ErrValidation)
	}
	return nil
}
