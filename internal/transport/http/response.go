package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"dotnet-quiz-service/internal/domain"
)

var (
	errInvalidPayload     = errors.New("invalid payload")
	errUnsupportedMessage = errors.New("unsupported message type")
)

type errorBody struct {
	Error string `json:"error"`
}

// resultBody is the review payload: the raw result plus the derived headline.
type resultBody struct {
	AttemptID string `json:"attemptId,omitempty"`
	domain.QuizResult
	Percentage int    `json:"percentage"`
	Message    string `json:"message"`
}

func newResultBody(attemptID string, result domain.QuizResult) resultBody {
	return resultBody{
		AttemptID:  attemptID,
		QuizResult: result,
		Percentage: result.Percentage(),
		Message:    result.Message(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "err", err)
	}
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

// writeDomainError maps provider and handoff failures onto status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidTopic):
		errorResponse(w, http.StatusBadRequest, "Invalid topic")
	case errors.Is(err, domain.ErrNoQuestionsAvailable):
		errorResponse(w, http.StatusNotFound, "No questions found for this topic")
	case errors.Is(err, domain.ErrResultNotFound):
		errorResponse(w, http.StatusNotFound, "Result not found")
	default:
		slog.Error("request failed", "err", err)
		errorResponse(w, http.StatusInternalServerError, "request failed")
	}
}

// parseCount reads the count query parameter. Missing, malformed and
// non-positive values fall back to fallback; the result is clamped to the
// supported range.
func parseCount(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		n = fallback
	}
	return domain.ClampQuestionCount(n)
}
