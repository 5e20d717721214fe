package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/scholar-api/internal/api"
	apiMiddleware "github.com/phrazzld/scholar-api/internal/api/middleware"
	"github.com/phrazzld/scholar-api/internal/api/shared"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	generationHandler := api.NewGenerationHandler(app.generationService, app.logger)
	verificationHandler := api.NewVerificationHandler(app.verificationService, app.logger)

	r.Route("/api/v1", func(r chi.Router) {
		if app.jwtService != nil {
			r.Use(apiMiddleware.NewAuthMiddleware(app.jwtService).Authenticate)
		}

		r.Route("/courses/{courseID}", func(r chi.Router) {
			r.Post("/summary", generationHandler.GenerateSummary)
			r.Get("/summary", generationHandler.GetLatestSummary)
			r.Get("/summary/history", generationHandler.GetSummaryHistory)
			r.Post("/exercises/generate", generationHandler.GenerateExercises)
		})
		r.Post("/providers/test", generationHandler.TestProvider)
		r.Post("/answers/check", verificationHandler.CheckAnswer)
	})

	r.Get("/health", app.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(app.metrics, promhttp.HandlerOpts{}))

	return r
}

// handleHealth reports whether the database is reachable.
func (app *application) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := app.db.PingContext(ctx); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
