package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gopenai "github.com/sashabaranov/go-openai"

	"github.com/gigsight/gigsight/internal/config"
	"github.com/gigsight/gigsight/pkg/models"
)

// Provider implements models.Classifier using an OpenAI-compatible chat
// completion endpoint.
type Provider struct {
	client *gopenai.Client
	model  string
	prompt string
}

// NewProvider creates an OpenAI classifier. BaseURL may point at any
// OpenAI-compatible endpoint.
func NewProvider(cfg config.OpenAIConfig, systemPrompt string) *Provider {
	clientConfig := gopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	return &Provider{
		client: gopenai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
		prompt: systemPrompt,
	}
}

func (p *Provider) Name() string { return "openai" }

func (p *Provider) Classify(ctx context.Context, question string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, gopenai.ChatCompletionRequest{
		Model: p.model,
		Messages: []gopenai.ChatCompletionMessage{
			{Role: gopenai.ChatMessageRoleSystem, Content: p.prompt},
			{Role: gopenai.ChatMessageRoleUser, Content: question},
		},
		ResponseFormat: &gopenai.ChatCompletionResponseFormat{
			Type: gopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", models.ErrInferenceTimeout
		}
		return "", fmt.Errorf("%w: %v", models.ErrProviderUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", models.ErrInvalidResponse
	}
	return resp.Choices[0].Message.Content, nil
}

var _ models.Classifier = (*Provider)(nil)
