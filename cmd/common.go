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
	"fmt"
	"os"
	"path/filepath"

	"github.com/valpere/haikuloop/internal/agent"
	"github.com/valpere/haikuloop/internal/llm"
	"github.com/valpere/haikuloop/internal/service"
	"github.com/valpere/haikuloop/internal/store"
)

// openStore opens the history database, creating its directory if needed.
func openStore(dbPath string) (*store.Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// buildService wires the configured provider into both agents. When
// withStore is false, sessions are run without being recorded. The returned
// close function must always be called.
func buildService(withStore bool) (*service.Service, func(), error) {
	completer, err := llm.NewFromSettings(cfg.LLMSettings())
	if err != nil {
		return nil, nil, err
	}

	poet, err := agent.NewHaikuAgent(completer, cfg.GeneratorMaxTokens)
	if err != nil {
		return nil, nil, err
	}
	critic, err := agent.NewCritiqueAgent(completer, cfg.CriticMaxTokens)
	if err != nil {
		return nil, nil, err
	}

	svcCfg := service.Config{Provider: cfg.Provider, Model: cfg.Model}
	if !withStore {
		return service.New(poet, critic, nil, svcCfg, log), func() {}, nil
	}

	db, err := openStore(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := db.Close(); err != nil {
			log.Warn("failed to close database", "error", err)
		}
	}
	return service.New(poet, critic, db, svcCfg, log), closeFn, nil
}
