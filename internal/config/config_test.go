package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	env := map[string]string{"ANTHROPIC_API_KEY": "from-env"}

	cfg, err := Load(newViper(), func(k string) string { return env[k] })
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Provider != "anthropic" {
		t.Errorf("expected provider anthropic, got %q", cfg.Provider)
	}
	if cfg.APIKey != "from-env" {
		t.Errorf("expected api key from env, got %q", cfg.APIKey)
	}
	if cfg.GeneratorMaxTokens != 200 || cfg.CriticMaxTokens != 300 {
		t.Errorf("unexpected token limits %d/%d", cfg.GeneratorMaxTokens, cfg.CriticMaxTokens)
	}
	if cfg.DBPath != DefaultDBPath || cfg.Server.Addr != DefaultAddr {
		t.Errorf("unexpected paths: %+v", cfg)
	}
}

func TestLoad_ExplicitKeyWins(t *testing.T) {
	v := newViper()
	v.Set("api_key", "explicit")

	cfg, err := Load(v, func(string) string { return "from-env" })
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIKey != "explicit" {
		t.Errorf("expected explicit key, got %q", cfg.APIKey)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "haikuloop.yaml")
	content := `provider: Ollama
model: gemma3
base_url: http://gpu-box:11434
critic_max_tokens: 500
server:
  addr: ":9090"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig failed: %v", err)
	}

	cfg, err := Load(v, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Provider != "ollama" || cfg.Model != "gemma3" {
		t.Errorf("unexpected provider/model %q/%q", cfg.Provider, cfg.Model)
	}
	if cfg.CriticMaxTokens != 500 || cfg.GeneratorMaxTokens != 200 {
		t.Errorf("unexpected token limits %d/%d", cfg.GeneratorMaxTokens, cfg.CriticMaxTokens)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("expected addr :9090, got %q", cfg.Server.Addr)
	}

	settings := cfg.LLMSettings()
	if settings.BaseURL != "http://gpu-box:11434" || settings.APIKey != "" {
		t.Errorf("unexpected llm settings %+v", settings)
	}
}

func TestLoad_UnsupportedProvider(t *testing.T) {
	v := newViper()
	v.Set("provider", "palm")

	if _, err := Load(v, nil); err == nil {
		t.Error("expected error for unsupported provider")
	}
}

func TestLoad_InvalidTokens(t *testing.T) {
	v := newViper()
	v.Set("generator_max_tokens", 0)

	if _, err := Load(v, nil); err == nil {
		t.Error("expected error for zero token limit")
	}
}

func TestAPIKeyEnv(t *testing.T) {
	if APIKeyEnv("openai") != "OPENAI_API_KEY" {
		t.Error("unexpected openai env name")
	}
	if APIKeyEnv("ollama") != "" {
		t.Error("ollama needs no key")
	}
}
