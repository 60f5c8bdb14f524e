// Package intent bridges the external classifier's output to a concrete
// analysis call. The classifier's reply is untrusted text: it is parsed and
// its analysis_type validated against the registry before anything runs.
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gigsight/gigsight/internal/analysis"
	"github.com/gigsight/gigsight/pkg/models"
)

// ParseError indicates the classifier's reply could not be interpreted as a
// classification object.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "classification parse: " + e.Reason
}

// UnknownAnalysisError carries an analysis_type outside the fixed set. The
// resolver never falls back to a default analysis.
type UnknownAnalysisError struct {
	AnalysisType string
}

func (e *UnknownAnalysisError) Error() string {
	return fmt.Sprintf("unknown analysis type %q", e.AnalysisType)
}

// Parse extracts the classification object from a raw classifier reply. The
// reply may wrap the JSON in code fences or prose; the first balanced JSON
// object is used.
func Parse(raw string) (models.Classification, error) {
	var c models.Classification

	obj, ok := extractJSONObject(raw)
	if !ok {
		return c, &ParseError{Reason: "no JSON object in classifier reply"}
	}
	if err := json.Unmarshal([]byte(obj), &c); err != nil {
		return c, &ParseError{Reason: err.Error()}
	}
	if strings.TrimSpace(c.AnalysisType) == "" {
		return c, &ParseError{Reason: "missing analysis_type field"}
	}
	return c, nil
}

// extractJSONObject finds the first balanced JSON object in s, respecting
// string literals and escapes.
func extractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					candidate := s[start : i+1]
					if json.Valid([]byte(candidate)) {
						return candidate, true
					}
					return "", false
				}
			}
		}
	}
	return "", false
}

// Resolver validates classifications and dispatches them to the registry.
type Resolver struct {
	reg *analysis.Registry
}

// NewResolver creates a Resolver over a built registry.
func NewResolver(reg *analysis.Registry) *Resolver {
	return &Resolver{reg: reg}
}

// Resolve validates the classification's analysis_type, applies parameters
// where the operation accepts them, and runs the matching analysis.
func (r *Resolver) Resolve(ctx context.Context, c models.Classification) (analysis.Result, error) {
	kind := analysis.Kind(strings.TrimSpace(c.AnalysisType))
	op, ok := r.reg.Lookup(kind)
	if !ok {
		return analysis.Result{}, &UnknownAnalysisError{AnalysisType: c.AnalysisType}
	}

	payload, err := op.Run(ctx, analysis.Params{TopN: c.Parameters.TopN})
	if err != nil {
		return analysis.Result{}, err
	}
	return analysis.Result{Kind: kind, Payload: payload}, nil
}
