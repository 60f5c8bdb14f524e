// Package ai selects and configures the question classifier backend.
package ai

import (
	"fmt"

	"github.com/gigsight/gigsight/internal/ai/ollama"
	"github.com/gigsight/gigsight/internal/ai/openai"
	"github.com/gigsight/gigsight/internal/config"
	"github.com/gigsight/gigsight/pkg/models"
)

// NewProvider constructs the appropriate classifier based on config.
// Called once at server startup.
func NewProvider(cfg config.AIConfig) (models.Classifier, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewProvider(cfg.OpenAI, SystemPrompt), nil
	case "ollama":
		return ollama.NewProvider(cfg.Ollama, SystemPrompt), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of openai, ollama", cfg.Provider)
	}
}
