// Package answer composes classification, resolution, and rendering into the
// single caller-facing operation: question in, text out.
package answer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gigsight/gigsight/internal/analysis"
	"github.com/gigsight/gigsight/internal/cache"
	"github.com/gigsight/gigsight/internal/dataset"
	"github.com/gigsight/gigsight/internal/intent"
	"github.com/gigsight/gigsight/internal/render"
	"github.com/gigsight/gigsight/pkg/models"
)

const answerTTL = 10 * time.Minute

// Service answers natural-language questions over the loaded dataset.
type Service struct {
	classifier models.Classifier
	resolver   *intent.Resolver
	reg        *analysis.Registry
	cache      cache.Cache
	timeout    time.Duration
}

// NewService creates a Service. The registry must already be built over a
// loaded dataset.
func NewService(classifier models.Classifier, reg *analysis.Registry, ca cache.Cache, timeout time.Duration) *Service {
	return &Service{
		classifier: classifier,
		resolver:   intent.NewResolver(reg),
		reg:        reg,
		cache:      ca,
		timeout:    timeout,
	}
}

// Result is one answered question.
type Result struct {
	Question     string `json:"question"`
	Answer       string `json:"answer"`
	AnalysisType string `json:"analysis_type,omitempty"`
	Provider     string `json:"provider"`
	Cached       bool   `json:"cached"`
}

// Answer classifies the question, runs the resolved analysis, and renders
// the result. Recoverable engine errors (unparsable classification, unknown
// analysis type, missing dataset column) come back as a one-line diagnostic
// answer; classifier transport failures propagate as errors.
func (s *Service) Answer(ctx context.Context, question string) (*Result, error) {
	key := cache.AnswerKey(question)
	if raw, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var cached Result
		if json.Unmarshal(raw, &cached) == nil {
			cached.Cached = true
			return &cached, nil
		}
	}

	classifyCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := s.classifier.Classify(classifyCtx, question)
	if err != nil {
		return nil, err
	}

	c, err := intent.Parse(reply)
	if err != nil {
		slog.Warn("classification unusable", "error", err)
		return s.diagnostic(question, err), nil
	}

	res, err := s.resolver.Resolve(ctx, c)
	if err != nil {
		if recoverable(err) {
			slog.Warn("analysis not resolved", "analysis_type", c.AnalysisType, "error", err)
			return s.diagnostic(question, err), nil
		}
		return nil, err
	}

	text, err := render.Text(res)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Question:     question,
		Answer:       text,
		AnalysisType: string(res.Kind),
		Provider:     s.classifier.Name(),
	}
	if raw, err := json.Marshal(result); err == nil {
		_ = s.cache.Set(ctx, key, raw, answerTTL)
	}
	slog.Info("question answered", "analysis_type", res.Kind, "provider", s.classifier.Name())
	return result, nil
}

// Run invokes one analysis by name with explicit parameters, bypassing
// classification. Unknown kinds return an *intent.UnknownAnalysisError.
func (s *Service) Run(ctx context.Context, kind string, p analysis.Params) (analysis.Result, string, error) {
	op, ok := s.reg.Lookup(analysis.Kind(kind))
	if !ok {
		return analysis.Result{}, "", &intent.UnknownAnalysisError{AnalysisType: kind}
	}

	payload, err := op.Run(ctx, p)
	if err != nil {
		return analysis.Result{}, "", err
	}
	res := analysis.Result{Kind: op.Kind, Payload: payload}

	text, err := render.Text(res)
	if err != nil {
		return analysis.Result{}, "", err
	}
	return res, text, nil
}

// Kinds lists the available analyses.
func (s *Service) Kinds() []analysis.Kind {
	return s.reg.Kinds()
}

func (s *Service) diagnostic(question string, err error) *Result {
	return &Result{
		Question: question,
		Answer:   render.ErrorText(err),
		Provider: s.classifier.Name(),
	}
}

func recoverable(err error) bool {
	var unknown *intent.UnknownAnalysisError
	var parse *intent.ParseError
	var column *dataset.ColumnError
	return errors.As(err, &unknown) || errors.As(err, &parse) || errors.As(err, &column)
}
