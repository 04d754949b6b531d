package llm

import (
	"fmt"
	"strings"
)

// Providers lists the backend names accepted by NewFromSettings.
var Providers = []string{"anthropic", "openai", "openrouter", "deepseek", "ollama"}

const openRouterURL = "https://openrouter.ai/api/v1"

// NewFromSettings builds the backend named by cfg.Provider.
func NewFromSettings(cfg Settings) (Completer, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "anthropic":
		return NewAnthropicLLM(cfg)
	case "openai":
		return NewOpenAILLM(cfg)
	case "openrouter":
		if cfg.BaseURL == "" {
			cfg.BaseURL = openRouterURL
		}
		return NewOpenAILLM(cfg)
	case "deepseek":
		// DeepSeek only speaks the OpenAI protocol through its own gateway.
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return NewOpenAILLM(cfg)
	case "ollama":
		return NewOllamaLLM(cfg)
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.Provider)
	}
}

// IsSupported reports whether provider is a known backend name.
func IsSupported(provider string) bool {
	p := strings.ToLower(provider)
	for _, name := range Providers {
		if p == name {
			return true
		}
	}
	return false
}
