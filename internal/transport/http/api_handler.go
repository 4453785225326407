package http

import (
	"net/http"

	"dotnet-quiz-service/internal/app"
	"dotnet-quiz-service/internal/domain"
	"github.com/go-chi/chi/v5"
)

// APIHandler serves the JSON endpoints.
type APIHandler struct {
	service *app.QuizService
}

func NewAPIHandler(service *app.QuizService) *APIHandler {
	return &APIHandler{service: service}
}

// Questions handles GET /api/questions?topic=&count=.
func (h *APIHandler) Questions(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	count := parseCount(r.URL.Query().Get("count"), domain.DefaultQuestionCount)

	questions, err := h.service.Questions(r.Context(), topic, count)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

// Topics handles GET /api/topics.
func (h *APIHandler) Topics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, domain.Topics())
}

// Result handles GET /api/results/{attemptID}. A result can be read once.
func (h *APIHandler) Result(w http.ResponseWriter, r *http.Request) {
	attemptID := chi.URLParam(r, "attemptID")
	result, err := h.service.TakeResult(r.Context(), attemptID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newResultBody(attemptID, result))
}
