package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"
)

// NewRouter wires the middleware stack, the operational endpoints and the
// calculator API mounted under basePath (e.g. /api/v1, or "" for the root).
func NewRouter(basePath string, svc *calculator.Service) http.Handler {

	r := chi.NewRouter()

	r.Use(middlewareStack()...)

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	r.Get("/health", handlers.Health)

	r.Handle("/metrics", observability.PrometheusHandler())

	api := calculator.NewHandler(svc)
	if basePath == "" {
		calculator.RegisterRoutes(r, api)
		return r
	}

	r.Route(basePath, func(r chi.Router) {
		calculator.RegisterRoutes(r, api)
	})

	return r
}

// middlewareStack lists the router middlewares, outermost first. Recovery
// sits innermost so a panic's 500 reaches the access log and the request
// metrics.
func middlewareStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		observability.RequestIDMiddleware,
		observability.TracingMiddleware,
		observability.LoggingMiddleware,
		observability.MetricsMiddleware,
		observability.RecoverMiddleware,
	}
}
