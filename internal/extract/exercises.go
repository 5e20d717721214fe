package extract

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/phrazzld/scholar-api/internal/domain"
	"github.com/phrazzld/scholar-api/internal/generation"
)

// ExerciseDraft is a coerced exercise not yet bound to a course.
type ExerciseDraft struct {
	Type        domain.QuestionType
	Question    string
	Options     []string
	Answer      string
	Explanation string
	Difficulty  domain.Difficulty
}

// ExerciseBatch is the outcome of coercing a generated exercise list.
// Dropped counts elements rejected individually; Reasons holds one entry per
// dropped element.
type ExerciseBatch struct {
	Items   []ExerciseDraft
	Dropped int
	Reasons []string
}

var fieldSynonyms = map[string][]string{
	"type":        {"type", "question_type", "questiontype", "kind"},
	"question":    {"question", "question_text", "questiontext", "stem", "prompt", "content"},
	"options":     {"options", "choices", "answers_options", "option_list"},
	"answer":      {"answer", "correct_answer", "correctanswer", "standard_answer", "solution"},
	"explanation": {"explanation", "analysis", "rationale", "reason", "explain"},
	"difficulty":  {"difficulty", "level"},
}

var typeSynonyms = map[string]domain.QuestionType{
	"choice":            domain.QuestionChoice,
	"multiple_choice":   domain.QuestionChoice,
	"single_choice":     domain.QuestionChoice,
	"mcq":               domain.QuestionChoice,
	"select":            domain.QuestionChoice,
	"选择":                domain.QuestionChoice,
	"选择题":               domain.QuestionChoice,
	"fill":              domain.QuestionFill,
	"fill_blank":        domain.QuestionFill,
	"fill_in_blank":     domain.QuestionFill,
	"fill_in_the_blank": domain.QuestionFill,
	"blank":             domain.QuestionFill,
	"cloze":             domain.QuestionFill,
	"填空":                domain.QuestionFill,
	"填空题":               domain.QuestionFill,
	"short_answer":      domain.QuestionShortAnswer,
	"short":             domain.QuestionShortAnswer,
	"essay":             domain.QuestionShortAnswer,
	"open":              domain.QuestionShortAnswer,
	"open_ended":        domain.QuestionShortAnswer,
	"简答":                domain.QuestionShortAnswer,
	"简答题":               domain.QuestionShortAnswer,
	"解答题":               domain.QuestionShortAnswer,
}

var difficultySynonyms = map[string]domain.Difficulty{
	"basic":        domain.DifficultyBasic,
	"easy":         domain.DifficultyBasic,
	"simple":       domain.DifficultyBasic,
	"基础":           domain.DifficultyBasic,
	"简单":           domain.DifficultyBasic,
	"medium":       domain.DifficultyMedium,
	"intermediate": domain.DifficultyMedium,
	"moderate":     domain.DifficultyMedium,
	"normal":       domain.DifficultyMedium,
	"中等":           domain.DifficultyMedium,
	"advanced":     domain.DifficultyAdvanced,
	"hard":         domain.DifficultyAdvanced,
	"difficult":    domain.DifficultyAdvanced,
	"challenging":  domain.DifficultyAdvanced,
	"提高":           domain.DifficultyAdvanced,
	"困难":           domain.DifficultyAdvanced,
}

// NormalizeQuestionType maps a free-form type label onto a QuestionType.
func NormalizeQuestionType(label string) (domain.QuestionType, bool) {
	key := strings.ToLower(strings.TrimSpace(label))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	t, ok := typeSynonyms[key]
	return t, ok
}

// NormalizeDifficulty maps a free-form difficulty label, returning fallback
// when the label is unknown.
func NormalizeDifficulty(label string, fallback domain.Difficulty) domain.Difficulty {
	if d, ok := difficultySynonyms[strings.ToLower(strings.TrimSpace(label))]; ok {
		return d
	}
	return fallback
}

// Exercises extracts a list of exercises from raw and coerces each element.
// Elements that cannot be coerced are dropped and counted. If nothing
// survives the error matches generation.ErrNoValidExercises; if no list can
// be found at all it is an *ExtractionError.
func Exercises(raw string, defaultDifficulty domain.Difficulty) (ExerciseBatch, error) {
	if !defaultDifficulty.Valid() {
		defaultDifficulty = domain.DifficultyBasic
	}

	data, err := Extract(raw, ShapeArray)
	if err != nil {
		return ExerciseBatch{}, err
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return ExerciseBatch{}, newExtractionError(raw, ShapeArray, err)
	}

	var batch ExerciseBatch
	for i, el := range elements {
		draft, err := coerceExercise(el, defaultDifficulty)
		if err != nil {
			batch.Dropped++
			batch.Reasons = append(batch.Reasons, fmt.Sprintf("item %d: %v", i, err))
			continue
		}
		batch.Items = append(batch.Items, draft)
	}

	if len(batch.Items) == 0 {
		return batch, fmt.Errorf("%w: %d of %d items rejected", generation.ErrNoValidExercises, batch.Dropped, len(elements))
	}
	return batch, nil
}

func coerceExercise(el json.RawMessage, defaultDifficulty domain.Difficulty) (ExerciseDraft, error) {
	var fields map[string]any
	if err := json.Unmarshal(el, &fields); err != nil {
		return ExerciseDraft{}, fmt.Errorf("not an object")
	}
	lookup := lowerKeys(fields)

	draft := ExerciseDraft{
		Question:    text(pick(lookup, "question")),
		Answer:      text(pick(lookup, "answer")),
		Explanation: text(pick(lookup, "explanation")),
		Options:     options(pick(lookup, "options")),
		Difficulty:  NormalizeDifficulty(text(pick(lookup, "difficulty")), defaultDifficulty),
	}

	if label := text(pick(lookup, "type")); label != "" {
		t, ok := NormalizeQuestionType(label)
		if !ok {
			return ExerciseDraft{}, fmt.Errorf("unknown question type %q", label)
		}
		draft.Type = t
	} else if len(draft.Options) > 0 {
		draft.Type = domain.QuestionChoice
	} else {
		draft.Type = domain.QuestionShortAnswer
	}

	switch {
	case draft.Question == "":
		return ExerciseDraft{}, fmt.Errorf("missing question text")
	case draft.Answer == "":
		return ExerciseDraft{}, fmt.Errorf("missing answer")
	case draft.Type == domain.QuestionChoice && len(draft.Options) == 0:
		return ExerciseDraft{}, fmt.Errorf("choice question without options")
	case draft.Type != domain.QuestionChoice:
		draft.Options = []string{}
	}
	return draft, nil
}

func lowerKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}

func pick(fields map[string]any, canonical string) any {
	for _, name := range fieldSynonyms[canonical] {
		if v, ok := fields[name]; ok && v != nil {
			return v
		}
	}
	return nil
}

// text renders a scalar JSON value as a trimmed string. Lists are joined.
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := text(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// options accepts a list, a letter-keyed object, or newline-separated text.
func options(v any) []string {
	var out []string
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if s := text(item); s != "" {
				out = append(out, s)
			}
		}
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if s := text(t[k]); s != "" {
				out = append(out, k+". "+s)
			}
		}
	case string:
		for _, line := range strings.Split(t, "\n") {
			if s := strings.TrimSpace(line); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
