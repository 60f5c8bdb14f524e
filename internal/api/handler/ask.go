package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gigsight/gigsight/internal/answer"
	"github.com/gigsight/gigsight/internal/api/response"
	"github.com/gigsight/gigsight/pkg/models"
)

const maxQuestionLen = 1000

// Asker defines the interface the ask handler depends on.
type Asker interface {
	Answer(ctx context.Context, question string) (*answer.Result, error)
}

// NewAskHandler returns an http.HandlerFunc for POST /api/v1/ask.
func NewAskHandler(svc Asker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Question string `json:"question"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		question := strings.TrimSpace(req.Question)
		if question == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "question is required", nil)
			return
		}
		if len(question) > maxQuestionLen {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "question is too long", nil)
			return
		}

		result, err := svc.Answer(r.Context(), question)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrInferenceTimeout), errors.Is(err, context.DeadlineExceeded):
				response.Error(w, http.StatusGatewayTimeout, "CLASSIFIER_TIMEOUT",
					"Question classification took too long and was cancelled", nil)
			case errors.Is(err, models.ErrProviderUnavailable):
				response.Error(w, http.StatusBadGateway, "CLASSIFIER_UNAVAILABLE",
					"The classification provider is not available", nil)
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"An unexpected error occurred", nil)
			}
			return
		}

		response.JSON(w, result)
	}
}
