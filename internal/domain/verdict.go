package domain

// DefaultVerdictFeedback is used when the judge omits feedback.
const DefaultVerdictFeedback = "Answer checked."

// EquivalenceVerdict is the judged outcome of comparing a student's answer
// with the standard answer. All four fields are always populated.
type EquivalenceVerdict struct {
	Correct  bool   `json:"correct"`
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
	Hint     string `json:"hint"`
}

// ClampScore bounds a score to 0..100.
func ClampScore(score int) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return score
}
