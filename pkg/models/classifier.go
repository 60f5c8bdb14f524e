// Package models contains shared data models used across the GigSight codebase.
package models

import "context"

// Classifier is the core interface that all question-classification
// integrations must implement. Callers inject this interface rather than a
// concrete LLM backend.
type Classifier interface {
	// Classify maps a natural-language question to a raw JSON reply that is
	// expected to contain an analysis_type field and optional parameters.
	// The reply is untrusted text; parsing and validation happen downstream.
	Classify(ctx context.Context, question string) (string, error)
	// Name returns the provider identifier (e.g., "openai", "ollama").
	Name() string
}

// Classification is the structured output of the external classifier after
// parsing: which analysis to run and with which parameters.
type Classification struct {
	AnalysisType string               `json:"analysis_type"`
	Parameters   ClassificationParams `json:"parameters"`
}

// ClassificationParams carries the optional per-analysis parameters the
// classifier may supply. Only top_skills reads TopN.
type ClassificationParams struct {
	TopN int `json:"top_n"`
}
