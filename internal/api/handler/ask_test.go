package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigsight/gigsight/internal/answer"
	"github.com/gigsight/gigsight/internal/api/handler"
	"github.com/gigsight/gigsight/pkg/models"
)

type stubAsker struct {
	fn func(ctx context.Context, question string) (*answer.Result, error)
}

func (s *stubAsker) Answer(ctx context.Context, question string) (*answer.Result, error) {
	return s.fn(ctx, question)
}

func postAsk(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/v1/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok, "expected error envelope, got %s", w.Body.String())
	return errObj["code"].(string)
}

func TestAskHandler(t *testing.T) {
	h := handler.NewAskHandler(&stubAsker{fn: func(_ context.Context, question string) (*answer.Result, error) {
		return &answer.Result{
			Question:     question,
			Answer:       "Earnings by Region:\n- EU: $250.00",
			AnalysisType: "earnings_by_region",
			Provider:     "mock",
		}, nil
	}})

	w := postAsk(t, h, `{"question": "How do earnings differ by region?"}`)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data answer.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "earnings_by_region", body.Data.AnalysisType)
	assert.Contains(t, body.Data.Answer, "- EU: $250.00")
	assert.False(t, body.Data.Cached)
}

func TestAskHandler_InvalidBody(t *testing.T) {
	h := handler.NewAskHandler(&stubAsker{fn: func(context.Context, string) (*answer.Result, error) {
		t.Fatal("service must not be called on invalid input")
		return nil, nil
	}})

	tests := []struct {
		name string
		body string
	}{
		{name: "not JSON", body: "question please"},
		{name: "empty question", body: `{"question": ""}`},
		{name: "whitespace question", body: `{"question": "   "}`},
		{name: "too long", body: `{"question": "` + strings.Repeat("x", 1001) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postAsk(t, h, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "INVALID_REQUEST", errorCode(t, w))
		})
	}
}

func TestAskHandler_ClassifierErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "timeout",
			err:        models.ErrInferenceTimeout,
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   "CLASSIFIER_TIMEOUT",
		},
		{
			name:       "deadline exceeded",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   "CLASSIFIER_TIMEOUT",
		},
		{
			name:       "provider unavailable",
			err:        models.ErrProviderUnavailable,
			wantStatus: http.StatusBadGateway,
			wantCode:   "CLASSIFIER_UNAVAILABLE",
		},
		{
			name:       "anything else",
			err:        assert.AnError,
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewAskHandler(&stubAsker{fn: func(context.Context, string) (*answer.Result, error) {
				return nil, tt.err
			}})

			w := postAsk(t, h, `{"question": "anything"}`)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, w))
		})
	}
}
