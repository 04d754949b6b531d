package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/valpere/haikuloop/internal/llm"
	"github.com/valpere/haikuloop/internal/postprocess"
)

// HaikuAgent is the LLM-backed Generator.
type HaikuAgent struct {
	llm       llm.Completer
	maxTokens int
}

// NewHaikuAgent creates a poet. maxTokens <= 0 selects DefaultGeneratorMaxTokens.
func NewHaikuAgent(completer llm.Completer, maxTokens int) (*HaikuAgent, error) {
	if completer == nil {
		return nil, errors.New("llm client is required")
	}
	if maxTokens <= 0 {
		maxTokens = DefaultGeneratorMaxTokens
	}
	return &HaikuAgent{llm: completer, maxTokens: maxTokens}, nil
}

func (a *HaikuAgent) Generate(ctx context.Context, topic string, feedback *string) (string, error) {
	prompt := buildDraftPrompt(topic)
	if feedback != nil {
		prompt = buildRevisionPrompt(topic, *feedback)
	}

	raw, err := a.llm.Complete(ctx, llm.Request{
		Role:      "generator",
		Prompt:    prompt,
		MaxTokens: a.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("haiku generation failed: %w", err)
	}

	// Keep the raw text when cleanup would leave nothing behind.
	if cleaned := postprocess.Clean(raw); cleaned != "" {
		return cleaned, nil
	}
	return strings.TrimSpace(raw), nil
}
