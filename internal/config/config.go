// Package config loads haikuloop settings from a config file, HAIKULOOP_*
// environment variables and command-line flags through viper.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/valpere/haikuloop/internal/agent"
	"github.com/valpere/haikuloop/internal/llm"
)

const (
	EnvPrefix       = "HAIKULOOP"
	DefaultDBPath   = "./data/haikuloop.db"
	DefaultAddr     = ":8080"
	DefaultProvider = "anthropic"
)

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type Config struct {
	Provider           string       `mapstructure:"provider"`
	Model              string       `mapstructure:"model"`
	APIKey             string       `mapstructure:"api_key"`
	BaseURL            string       `mapstructure:"base_url"`
	GeneratorMaxTokens int          `mapstructure:"generator_max_tokens"`
	CriticMaxTokens    int          `mapstructure:"critic_max_tokens"`
	DBPath             string       `mapstructure:"db"`
	LogLevel           string       `mapstructure:"log_level"`
	Server             ServerConfig `mapstructure:"server"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("provider", DefaultProvider)
	v.SetDefault("generator_max_tokens", agent.DefaultGeneratorMaxTokens)
	v.SetDefault("critic_max_tokens", agent.DefaultCriticMaxTokens)
	v.SetDefault("db", DefaultDBPath)
	v.SetDefault("log_level", "info")
	v.SetDefault("server.addr", DefaultAddr)
}

// Load decodes v into a Config. When no api_key is configured, the
// provider's conventional environment variable is consulted through lookup.
func Load(v *viper.Viper, lookup func(string) string) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.APIKey == "" && lookup != nil {
		if name := APIKeyEnv(cfg.Provider); name != "" {
			cfg.APIKey = lookup(name)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// APIKeyEnv returns the environment variable that conventionally holds the
// key for provider, or "" when the provider needs none.
func APIKeyEnv(provider string) string {
	switch provider {
	case "anthropic", "":
		return "ANTHROPIC_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	case "openrouter":
		return "OPENROUTER_API_KEY"
	case "deepseek":
		return "DEEPSEEK_API_KEY"
	}
	return ""
}

func (c *Config) Validate() error {
	if !llm.IsSupported(c.Provider) {
		return fmt.Errorf("unsupported provider %q (supported: %s)", c.Provider, strings.Join(llm.Providers, ", "))
	}
	if c.GeneratorMaxTokens <= 0 || c.CriticMaxTokens <= 0 {
		return errors.New("generator_max_tokens and critic_max_tokens must be positive")
	}
	if c.DBPath == "" {
		return errors.New("db path must not be empty")
	}
	return nil
}

// LLMSettings returns the backend settings derived from c.
func (c *Config) LLMSettings() llm.Settings {
	return llm.Settings{
		Provider: c.Provider,
		Model:    c.Model,
		APIKey:   c.APIKey,
		BaseURL:  c.BaseURL,
	}
}
