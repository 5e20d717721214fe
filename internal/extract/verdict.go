package extract

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/phrazzld/scholar-api/internal/domain"
)

// Verdict extracts an equivalence verdict from raw and fills defaults:
// correct is false, score is 100 when correct and 0 otherwise, feedback is
// domain.DefaultVerdictFeedback and hint is empty. Scores are clamped to
// 0..100.
func Verdict(raw string) (domain.EquivalenceVerdict, error) {
	data, err := Extract(raw, ShapeObject)
	if err != nil {
		return domain.EquivalenceVerdict{}, err
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return domain.EquivalenceVerdict{}, newExtractionError(raw, ShapeObject, err)
	}
	f := lowerKeys(fields)

	var v domain.EquivalenceVerdict
	v.Correct = truthy(first(f, "correct", "is_correct", "equivalent", "is_equivalent"))

	if score, ok := number(first(f, "score", "points")); ok {
		v.Score = domain.ClampScore(score)
	} else if v.Correct {
		v.Score = 100
	}

	v.Feedback = text(first(f, "feedback", "comment", "explanation"))
	if v.Feedback == "" {
		v.Feedback = domain.DefaultVerdictFeedback
	}
	v.Hint = text(first(f, "hint", "suggestion"))
	return v, nil
}

func first(fields map[string]any, names ...string) any {
	for _, n := range names {
		if v, ok := fields[n]; ok && v != nil {
			return v
		}
	}
	return nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "y", "1", "correct", "right", "正确", "对", "是":
			return true
		}
	}
	return false
}

// number reads a score. Non-finite values count as absent; finite values
// are clamped to 0..100 before conversion.
func number(v any) (int, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		s := strings.TrimSuffix(strings.TrimSpace(t), "%")
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(math.Round(math.Max(0, math.Min(100, f)))), true
}
