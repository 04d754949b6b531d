package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "llama3.2"
)

// OllamaLLM talks to a self-hosted Ollama server through its generate
// endpoint with streaming turned off.
type OllamaLLM struct {
	client *api.Client
	model  string
}

func NewOllamaLLM(cfg Settings) (*OllamaLLM, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url %q: %w", baseURL, err)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOllamaModel
	}

	return &OllamaLLM{
		client: api.NewClient(u, http.DefaultClient),
		model:  model,
	}, nil
}

func (o *OllamaLLM) Complete(ctx context.Context, req Request) (string, error) {
	stream := false
	genReq := &api.GenerateRequest{
		Model:  o.model,
		Prompt: req.Prompt,
		Stream: &stream,
	}
	if req.MaxTokens > 0 {
		genReq.Options = map[string]any{"num_predict": req.MaxTokens}
	}

	var sb strings.Builder
	err := o.client.Generate(ctx, genReq, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", req.label("ollama"), err)
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("%s: %w", req.label("ollama"), ErrEmptyResponse)
	}
	return sb.String(), nil
}
