package http

import (
	"net/http"

	"dotnet-quiz-service/internal/app"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires the JSON API and the quiz websocket onto one chi router.
func NewRouter(service *app.QuizService, driverOpts ...app.DriverOption) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	api := NewAPIHandler(service)
	r.Route("/api", func(r chi.Router) {
		r.Get("/questions", api.Questions)
		r.Get("/topics", api.Topics)
		r.Get("/results/{attemptID}", api.Result)
	})

	r.Get("/ws", NewWSHandler(service, driverOpts...).ServeWS)
	return r
}
