package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/valpere/haikuloop/internal/llm"
)

// CritiqueAgent is the LLM-backed Critic. The critique is returned exactly
// as the model wrote it.
type CritiqueAgent struct {
	llm       llm.Completer
	maxTokens int
}

// NewCritiqueAgent creates a critic. maxTokens <= 0 selects DefaultCriticMaxTokens.
func NewCritiqueAgent(completer llm.Completer, maxTokens int) (*CritiqueAgent, error) {
	if completer == nil {
		return nil, errors.New("llm client is required")
	}
	if maxTokens <= 0 {
		maxTokens = DefaultCriticMaxTokens
	}
	return &CritiqueAgent{llm: completer, maxTokens: maxTokens}, nil
}

func (a *CritiqueAgent) Critique(ctx context.Context, poem string) (string, error) {
	out, err := a.llm.Complete(ctx, llm.Request{
		Role:      "critic",
		Prompt:    buildCritiquePrompt(poem),
		MaxTokens: a.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("critique failed: %w", err)
	}
	return out, nil
}
