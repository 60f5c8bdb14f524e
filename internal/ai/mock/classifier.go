package mock

import (
	"context"

	"github.com/gigsight/gigsight/pkg/models"
)

// MockClassifier satisfies models.Classifier for testing.
type MockClassifier struct {
	Name_        string
	ClassifyFunc func(ctx context.Context, question string) (string, error)
}

func (m *MockClassifier) Name() string { return m.Name_ }

func (m *MockClassifier) Classify(ctx context.Context, question string) (string, error) {
	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, question)
	}
	return `{"analysis_type": "earnings_by_region"}`, nil
}

// NewMockClassifier returns a MockClassifier that always picks the given
// analysis type.
func NewMockClassifier(analysisType string) *MockClassifier {
	return &MockClassifier{
		Name_: "mock",
		ClassifyFunc: func(_ context.Context, _ string) (string, error) {
			return `{"analysis_type": "` + analysisType + `"}`, nil
		},
	}
}

// NewRawClassifier returns a MockClassifier that always replies with the
// given raw text, useful for exercising the parse path.
func NewRawClassifier(raw string) *MockClassifier {
	return &MockClassifier{
		Name_: "mock",
		ClassifyFunc: func(_ context.Context, _ string) (string, error) {
			return raw, nil
		},
	}
}

// NewFailingClassifier returns a MockClassifier that always returns the
// given error.
func NewFailingClassifier(err error) *MockClassifier {
	return &MockClassifier{
		Name_: "mock-failing",
		ClassifyFunc: func(_ context.Context, _ string) (string, error) {
			return "", err
		},
	}
}

// NewTimeoutClassifier returns a MockClassifier that blocks until the
// context is cancelled.
func NewTimeoutClassifier() *MockClassifier {
	return &MockClassifier{
		Name_: "mock-timeout",
		ClassifyFunc: func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()
			return "", models.ErrInferenceTimeout
		},
	}
}

// Compile-time check that MockClassifier implements Classifier.
var _ models.Classifier = (*MockClassifier)(nil)
