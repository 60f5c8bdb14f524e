package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/gigsight/gigsight/internal/api/middleware"
	"github.com/gigsight/gigsight/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	RateLimit *mw.RateLimit

	HealthHandler       http.HandlerFunc
	AskHandler          http.HandlerFunc
	ListAnalysesHandler http.HandlerFunc
	RunAnalysisHandler  http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public health check
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	// Rate-limited query routes
	r.Group(func(r chi.Router) {
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit.Limit)
		}

		r.Post("/api/v1/ask", orNotImplemented(deps.AskHandler))
		r.Get("/api/v1/analyses", orNotImplemented(deps.ListAnalysesHandler))
		r.Get("/api/v1/analyses/{kind}", orNotImplemented(deps.RunAnalysisHandler))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
