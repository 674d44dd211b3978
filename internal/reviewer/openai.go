package reviewer

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/aglm/review-api/pkg/config"
)

// OpenAIReviewer talks to any OpenAI-compatible chat completion API,
// including Ollama's /v1 endpoint.
type OpenAIReviewer struct {
	client *openai.Client
	cfg    config.ReviewerConfig
}

// NewOpenAI builds a reviewer from config.
func NewOpenAI(cfg config.ReviewerConfig) *OpenAIReviewer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIReviewer{client: openai.NewClientWithConfig(clientCfg), cfg: cfg}
}

// Review sends the guided-feedback prompt and returns the model's text.
func (r *OpenAIReviewer) Review(ctx context.Context, req Request) (string, error) {
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(req)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
