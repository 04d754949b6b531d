package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is a small, fast model that is good enough for
// three-line poems.
const DefaultAnthropicModel = "claude-3-haiku-20240307"

// AnthropicLLM calls the Anthropic Messages API.
type AnthropicLLM struct {
	client anthropic.Client
	model  string
}

// NewAnthropicLLM builds a backend from settings. The SDK's automatic
// retries are disabled; a failed call fails the session.
func NewAnthropicLLM(cfg Settings) (*AnthropicLLM, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic api key missing; set api_key or ANTHROPIC_API_KEY")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultAnthropicModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &AnthropicLLM{
		client: anthropic.NewClient(opts...),
		model:  model,
	}, nil
}

func (a *AnthropicLLM) Complete(ctx context.Context, req Request) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(req.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", req.label("anthropic"), err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%s: %w", req.label("anthropic"), ErrEmptyResponse)
	}
	return sb.String(), nil
}
