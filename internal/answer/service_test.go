package answer_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gigsight/gigsight/internal/ai/mock"
	"github.com/gigsight/gigsight/internal/analysis"
	"github.com/gigsight/gigsight/internal/answer"
	"github.com/gigsight/gigsight/internal/dataset"
	"github.com/gigsight/gigsight/internal/intent"
	"github.com/gigsight/gigsight/pkg/models"
)

// fakeCache is an in-memory cache.Cache for tests.
type fakeCache struct {
	m      map[string][]byte
	counts map[string]int64
}

func newFakeCache() *fakeCache {
	return &fakeCache{m: map[string][]byte{}, counts: map[string]int64{}}
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	f.m[key] = value
	return nil
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := f.m[key]
	return v, ok, nil
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	delete(f.m, key)
	return nil
}

func (f *fakeCache) Ping(context.Context) error { return nil }

func (f *fakeCache) IncrWithExpiry(_ context.Context, key string, _ time.Duration) (int64, error) {
	f.counts[key]++
	return f.counts[key], nil
}

const testCSV = "earnings,region,skills\n200,EU,\"go, sql\"\n300,EU,go\n100,US,sql\n"

func newService(t *testing.T, classifier models.Classifier) *answer.Service {
	t.Helper()
	s, err := dataset.Load(context.Background(), strings.NewReader(testCSV))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return answer.NewService(classifier, analysis.NewRegistry(s), newFakeCache(), time.Second)
}

func TestAnswer(t *testing.T) {
	svc := newService(t, mock.NewMockClassifier("earnings_by_region"))

	res, err := svc.Answer(context.Background(), "How do earnings differ by region?")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}

	if res.AnalysisType != "earnings_by_region" {
		t.Errorf("expected analysis_type earnings_by_region, got %q", res.AnalysisType)
	}
	if !strings.Contains(res.Answer, "- EU: $250.00") || !strings.Contains(res.Answer, "- US: $100.00") {
		t.Errorf("unexpected answer:\n%s", res.Answer)
	}
	if res.Provider != "mock" || res.Cached {
		t.Errorf("unexpected result metadata: %+v", res)
	}
}

func TestAnswer_SecondCallIsCached(t *testing.T) {
	calls := 0
	classifier := &mock.MockClassifier{
		Name_: "mock",
		ClassifyFunc: func(context.Context, string) (string, error) {
			calls++
			return `{"analysis_type": "earnings_by_region"}`, nil
		},
	}
	svc := newService(t, classifier)

	first, err := svc.Answer(context.Background(), "earnings by region?")
	if err != nil {
		t.Fatalf("first Answer: %v", err)
	}
	second, err := svc.Answer(context.Background(), "Earnings   BY region?")
	if err != nil {
		t.Fatalf("second Answer: %v", err)
	}

	if calls != 1 {
		t.Errorf("expected a single classifier call, got %d", calls)
	}
	if !second.Cached {
		t.Error("second answer should be served from cache")
	}
	if first.Answer != second.Answer {
		t.Errorf("cached answer diverged:\n%s\n%s", first.Answer, second.Answer)
	}
}

func TestAnswer_UnparsableClassification(t *testing.T) {
	svc := newService(t, mock.NewRawClassifier("no json here, sorry"))

	res, err := svc.Answer(context.Background(), "anything")
	if err != nil {
		t.Fatalf("parse failures are recoverable, got error: %v", err)
	}
	if !strings.HasPrefix(res.Answer, "Error: ") {
		t.Errorf("expected a diagnostic answer, got %q", res.Answer)
	}
	if res.AnalysisType != "" {
		t.Errorf("diagnostic results carry no analysis_type, got %q", res.AnalysisType)
	}
}

func TestAnswer_UnknownAnalysisType(t *testing.T) {
	svc := newService(t, mock.NewMockClassifier("forecast_earnings"))

	res, err := svc.Answer(context.Background(), "predict next year")
	if err != nil {
		t.Fatalf("unknown kinds are recoverable, got error: %v", err)
	}
	if !strings.Contains(res.Answer, "forecast_earnings") {
		t.Errorf("diagnostic must name the unknown kind, got %q", res.Answer)
	}
}

func TestAnswer_ClassifierFailure(t *testing.T) {
	svc := newService(t, mock.NewFailingClassifier(models.ErrProviderUnavailable))

	_, err := svc.Answer(context.Background(), "anything")
	if !errors.Is(err, models.ErrProviderUnavailable) {
		t.Fatalf("transport failures must propagate, got %v", err)
	}
}

func TestAnswer_ClassifierTimeout(t *testing.T) {
	s, err := dataset.Load(context.Background(), strings.NewReader(testCSV))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	svc := answer.NewService(mock.NewTimeoutClassifier(), analysis.NewRegistry(s), newFakeCache(), 10*time.Millisecond)

	_, err = svc.Answer(context.Background(), "anything")
	if !errors.Is(err, models.ErrInferenceTimeout) {
		t.Fatalf("expected inference timeout, got %v", err)
	}
}

func TestRun(t *testing.T) {
	svc := newService(t, mock.NewMockClassifier("earnings_by_region"))

	res, text, err := svc.Run(context.Background(), "top_skills", analysis.Params{TopN: 1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Kind != analysis.KindTopSkills {
		t.Errorf("expected kind top_skills, got %q", res.Kind)
	}
	if skills := res.Payload.([]analysis.SkillMean); len(skills) != 1 {
		t.Errorf("expected top_n applied, got %+v", skills)
	}
	if !strings.Contains(text, "Top Skills by Earnings:") {
		t.Errorf("unexpected rendering:\n%s", text)
	}
}

func TestRun_UnknownKind(t *testing.T) {
	svc := newService(t, mock.NewMockClassifier("earnings_by_region"))

	_, _, err := svc.Run(context.Background(), "nope", analysis.Params{})
	var unknown *intent.UnknownAnalysisError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownAnalysisError, got %v", err)
	}
}

func TestKinds(t *testing.T) {
	svc := newService(t, mock.NewMockClassifier("earnings_by_region"))
	if kinds := svc.Kinds(); len(kinds) != 6 {
		t.Errorf("expected 6 analyses, got %v", kinds)
	}
}
