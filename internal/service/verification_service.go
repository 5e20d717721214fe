package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/scholar-api/internal/domain"
	"github.com/phrazzld/scholar-api/internal/extract"
	"github.com/phrazzld/scholar-api/internal/generation"
	"github.com/phrazzld/scholar-api/internal/platform/logger"
	"github.com/phrazzld/scholar-api/internal/prompt"
)

// judgePrompt asks the model for a JSON verdict. Double braces render as
// literal braces.
const judgePrompt = `You are grading a student's answer.

Question type: {question_type}
Question: {question_text}
Standard answer: {standard_answer}
Student answer: {user_answer}

Decide whether the student's answer is equivalent to the standard answer. Rules:
1. Mathematically equal expressions are equivalent, for example 1/2, 0.5 and 50%.
2. Reordered terms or operands are equivalent, for example x+1 and 1+x.
3. Notation variants are equivalent, for example x^2 and x², * and ×.
4. Expanded, factored and unsimplified forms are equivalent, for example (x+1)² and x²+2x+1, or 2/4 and 1/2.
5. Ignore differences in letter case, whitespace, punctuation and unit formatting.
6. For choice questions, the option letter and the option text are equivalent.
7. For short answers, compare the key points; wording may differ.
8. Synonyms and equivalent phrasing are acceptable.

Respond only with a JSON object in this format:
{{"correct": true, "score": 100, "feedback": "one sentence on the answer", "hint": "a hint if the answer is wrong"}}`

// Judge calls are short and should be as deterministic as the model allows.
const (
	judgeTemperature     float32 = 0.2
	judgeMaxOutputTokens         = 1000
)

// VerifyRequest asks whether UserAnswer is equivalent to StandardAnswer.
type VerifyRequest struct {
	QuestionText   string
	QuestionType   string
	StandardAnswer string
	UserAnswer     string
	Credentials    generation.Credentials
}

// VerificationService judges student answers. It persists nothing.
type VerificationService interface {
	// Verify returns the verdict for req.
	Verify(ctx context.Context, req VerifyRequest) (domain.EquivalenceVerdict, error)
}

type verificationServiceImpl struct {
	providers ProviderResolver
	opts      generation.CallOptions
	logger    *slog.Logger
}

// NewVerificationService creates a VerificationService. Timeout and system
// prompt are taken from opts; temperature and output length are fixed for
// judging.
func NewVerificationService(
	providers ProviderResolver,
	opts generation.CallOptions,
	logger *slog.Logger,
) (VerificationService, error) {
	if providers == nil {
		return nil, &GenerationServiceError{
			Operation: "create_service",
			Message:   "providers cannot be nil",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts.Temperature = judgeTemperature
	opts.MaxOutputTokens = judgeMaxOutputTokens

	return &verificationServiceImpl{
		providers: providers,
		opts:      opts,
		logger:    logger.With("component", "verification_service"),
	}, nil
}

// Verify implements VerificationService.
func (s *verificationServiceImpl) Verify(
	ctx context.Context,
	req VerifyRequest,
) (domain.EquivalenceVerdict, error) {
	const op = "verify_answer"
	log := logger.FromContextOrDefault(ctx, s.logger)

	if strings.TrimSpace(req.UserAnswer) == "" {
		return domain.EquivalenceVerdict{}, NewGenerationServiceError(op, "user answer is blank",
			generation.ErrMissingAnswer)
	}
	if strings.TrimSpace(req.StandardAnswer) == "" {
		return domain.EquivalenceVerdict{}, NewGenerationServiceError(op, "standard answer is blank",
			generation.ErrMissingAnswer)
	}

	questionType := strings.TrimSpace(req.QuestionType)
	if qt, ok := extract.NormalizeQuestionType(questionType); ok {
		questionType = string(qt)
	}

	text, err := prompt.Render(judgePrompt, map[string]string{
		"question_type":   questionType,
		"question_text":   req.QuestionText,
		"standard_answer": req.StandardAnswer,
		"user_answer":     req.UserAnswer,
	})
	if err != nil {
		return domain.EquivalenceVerdict{}, NewGenerationServiceError(op, "failed to build prompt", err)
	}

	provider, res, err := s.providers.Resolve(ctx, req.Credentials)
	if err != nil {
		return domain.EquivalenceVerdict{}, NewGenerationServiceError(op, "failed to resolve provider", err)
	}

	output, err := provider.Call(ctx, text, s.opts)
	if err != nil {
		return domain.EquivalenceVerdict{}, NewGenerationServiceError(op, "provider call failed", err)
	}
	if strings.TrimSpace(output) == "" {
		return domain.EquivalenceVerdict{}, NewGenerationServiceError(op, "provider call failed",
			fmt.Errorf("%w: %s returned no text", generation.ErrEmptyGeneration, res.Model))
	}

	verdict, err := extract.Verdict(output)
	if err != nil {
		log.Warn("judge reply unusable", "model", res.Model, "error", err)
		return domain.EquivalenceVerdict{}, NewGenerationServiceError(op, "failed to parse verdict", err)
	}

	log.Debug("answer verified",
		"model", res.Model,
		"correct", verdict.Correct,
		"score", verdict.Score)
	return verdict, nil
}
