package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAILLM uses chat completions on OpenAI or any compatible endpoint
// (OpenRouter, DeepSeek, a local gateway) selected through BaseURL.
type OpenAILLM struct {
	client openai.Client
	model  string
}

func NewOpenAILLM(cfg Settings) (*OpenAILLM, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key missing; set api_key or OPENAI_API_KEY")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAILLM{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

func (o *OpenAILLM) Complete(ctx context.Context, req Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", req.label("openai"), err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%s: %w", req.label("openai"), ErrEmptyResponse)
	}
	return resp.Choices[0].Message.Content, nil
}
