package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/scholar-api/internal/api/shared"
	"github.com/phrazzld/scholar-api/internal/service"
)

// VerificationHandler handles answer checking requests.
type VerificationHandler struct {
	verifier service.VerificationService
	logger   *slog.Logger
}

// NewVerificationHandler creates a new VerificationHandler.
func NewVerificationHandler(verifier service.VerificationService, logger *slog.Logger) *VerificationHandler {
	if verifier == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("verification service cannot be nil for VerificationHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &VerificationHandler{
		verifier: verifier,
		logger:   logger.With(slog.String("component", "verification_handler")),
	}
}

// CheckAnswer handles POST /answers/check.
func (h *VerificationHandler) CheckAnswer(w http.ResponseWriter, r *http.Request) {
	var req CheckAnswerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	verdict, err := h.verifier.Verify(r.Context(), service.VerifyRequest{
		QuestionText:   req.QuestionText,
		QuestionType:   req.QuestionType,
		StandardAnswer: req.StandardAnswer,
		UserAnswer:     req.UserAnswer,
		Credentials:    req.toDomain(),
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to check answer")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, VerdictResponse{
		Correct:  verdict.Correct,
		Score:    verdict.Score,
		Feedback: verdict.Feedback,
		Hint:     verdict.Hint,
	})
}
