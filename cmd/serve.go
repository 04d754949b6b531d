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
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/valpere/haikuloop/internal/logger"
	"github.com/valpere/haikuloop/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the session API over HTTP",
	Long: `Start a JSON API for running and browsing refinement sessions.

  POST   /v1/sessions        {"topic": "...", "max_turns": 4}
  GET    /v1/sessions        ?topic=&approved=&limit=
  GET    /v1/sessions/:id
  DELETE /v1/sessions/:id
  GET    /healthz`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := buildService(true)
		if err != nil {
			return err
		}
		defer closeFn()

		addr := cfg.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}

		srvLog := logger.WithComponent(log, "server")
		e := server.New(svc, srvLog)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			srvLog.Info("listening", "addr", addr, "provider", cfg.Provider)
			errCh <- e.Start(addr)
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srvLog.Info("shutting down")
		return e.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr, default :8080)")
}
