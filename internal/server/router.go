package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/session"
)

func NewRouter(sessions *session.Handler) http.Handler {

	r := chi.NewRouter()

	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)

	r.Get("/health", handlers.Health)

	r.Handle("/metrics", observability.PrometheusHandler())

	calculator.RegisterRoutes(r)
	sessions.RegisterRoutes(r)

	return r
}
