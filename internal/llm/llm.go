// Package llm is the text-generation capability used by the haiku and
// critique agents. Each backend turns a role-tagged prompt and an output
// length limit into a single completion.
package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("empty response from model")

// Request is a single prompt sent to a model.
type Request struct {
	// Role names the agent that sends the prompt ("generator" or "critic")
	// so backend errors say which side of the session failed.
	Role      string
	Prompt    string
	MaxTokens int
}

func (r Request) label(provider string) string {
	if r.Role == "" {
		return provider
	}
	return provider + " " + r.Role
}

// Completer produces a completion for a prompt. Calls block until the
// provider answers or ctx is done.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Settings configure a backend. Credentials are always passed in explicitly.
type Settings struct {
	Provider string `mapstructure:"provider" json:"provider"`
	Model    string `mapstructure:"model" json:"model"`
	APIKey   string `mapstructure:"api_key" json:"api_key"`
	BaseURL  string `mapstructure:"base_url" json:"base_url"`
}
