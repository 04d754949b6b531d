/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valpere/haikuloop/internal/config"
	"github.com/valpere/haikuloop/internal/logger"
)

var version = "0.1.0"

var (
	cfgFile string
	v       = viper.New()
	cfg     *config.Config
	log     *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "haikuloop",
	Short: "Refine a haiku with a poet and a critic agent",
	Long: `A CLI application that lets two LLM-backed agents refine a haiku together.

The poet writes a draft on odd turns, the critic reviews it on even turns.
The session stops when the critic starts its review with "APPROVED:" or
when the turn budget is used up.

Supported providers: anthropic, openai, openrouter, deepseek, ollama

Use "haikuloop run --help" for session options.`,
	Version:      version,
	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	config.SetDefaults(v)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default ./haikuloop.yaml or ~/.config/haikuloop/haikuloop.yaml)")
	pf.String("provider", config.DefaultProvider, "LLM provider: anthropic, openai, openrouter, deepseek, ollama")
	pf.String("model", "", "Model name (provider default if empty)")
	pf.String("api-key", "", "Provider API key (falls back to the provider's usual env variable)")
	pf.String("base-url", "", "Provider base URL (OpenAI-compatible gateway or Ollama server)")
	pf.String("db", config.DefaultDBPath, "Database path for session history")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")

	for key, flag := range map[string]string{
		"provider":  "provider",
		"model":     "model",
		"api_key":   "api-key",
		"base_url":  "base-url",
		"db":        "db",
		"log_level": "log-level",
	} {
		_ = v.BindPFlag(key, pf.Lookup(flag))
	}
}

func initConfig() error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("haikuloop")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "haikuloop"))
		}
	}

	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	loaded, err := config.Load(v, os.Getenv)
	if err != nil {
		return err
	}
	cfg = loaded
	log = logger.New(cfg.LogLevel, os.Stderr)
	if used := v.ConfigFileUsed(); used != "" {
		log.Debug("config loaded", "file", used)
	}
	return nil
}
