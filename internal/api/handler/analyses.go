package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gigsight/gigsight/internal/analysis"
	"github.com/gigsight/gigsight/internal/api/response"
	"github.com/gigsight/gigsight/internal/dataset"
	"github.com/gigsight/gigsight/internal/intent"
)

// Runner defines the interface the analyses handlers depend on: direct
// invocation of a named analysis, bypassing classification.
type Runner interface {
	Run(ctx context.Context, kind string, p analysis.Params) (analysis.Result, string, error)
	Kinds() []analysis.Kind
}

// NewListAnalysesHandler returns an http.HandlerFunc for GET /api/v1/analyses.
func NewListAnalysesHandler(svc Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, map[string]any{"analyses": svc.Kinds()})
	}
}

// NewRunAnalysisHandler returns an http.HandlerFunc for
// GET /api/v1/analyses/{kind}.
func NewRunAnalysisHandler(svc Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := chi.URLParam(r, "kind")

		var params analysis.Params
		if raw := r.URL.Query().Get("top_n"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"top_n must be a positive integer", nil)
				return
			}
			params.TopN = n
		}

		res, text, err := svc.Run(r.Context(), kind, params)
		if err != nil {
			var unknown *intent.UnknownAnalysisError
			var column *dataset.ColumnError
			switch {
			case errors.As(err, &unknown):
				response.Error(w, http.StatusNotFound, "UNKNOWN_ANALYSIS",
					"No such analysis", map[string]any{"analyses": svc.Kinds()})
			case errors.As(err, &column):
				response.Error(w, http.StatusUnprocessableEntity, "MISSING_COLUMN",
					err.Error(), nil)
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"An unexpected error occurred", nil)
			}
			return
		}

		response.JSON(w, map[string]any{
			"analysis_type": res.Kind,
			"result":        res.Payload,
			"text":          text,
		})
	}
}
