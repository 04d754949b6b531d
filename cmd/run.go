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
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valpere/haikuloop/internal/orchestrator"
	"github.com/valpere/haikuloop/internal/session"
)

var (
	topic       string
	maxTurns    int
	saveFile    bool
	outputFile  string
	noStore     bool
	showSummary bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a haiku refinement session",
	Long: `Run a haiku refinement session between the poet and the critic.

Odd turns:   the poet writes or revises the haiku
Even turns:  the critic reviews it and may approve it
Early stop:  the session ends when a critique starts with "APPROVED:"

When --topic or --max-turns are omitted and the terminal is interactive,
you are asked for them. Finished sessions are recorded in the history
database unless --no-store is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		interactive := isInteractive()

		if !cmd.Flags().Changed("topic") && interactive {
			t, err := promptTopic()
			if err != nil {
				return err
			}
			topic = t
		}
		if !cmd.Flags().Changed("max-turns") && interactive {
			n, err := promptMaxTurns()
			if err != nil {
				return err
			}
			maxTurns = n
		}

		t, n, err := resolveRunInput(topic, maxTurns)
		if err != nil {
			return err
		}
		topic, maxTurns = t, n

		svc, closeFn, err := buildService(!noStore)
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		out := sessionPrinter{w: cmd.OutOrStdout()}
		out.header(topic, maxTurns)

		log.Debug("session starting", "topic", topic, "max_turns", maxTurns, "provider", cfg.Provider)
		rec, err := svc.RunSession(ctx, topic, maxTurns, out.turn)
		if err != nil {
			return fmt.Errorf("session failed: %w", err)
		}
		out.footer(rec.Session)

		if showSummary {
			fmt.Fprint(cmd.OutOrStdout(), session.Summary(rec.Session))
		}
		switch {
		case rec.Stored:
			fmt.Fprintf(cmd.ErrOrStderr(), "Session recorded as %s\n", rec.ID)
		case !noStore:
			fmt.Fprintln(cmd.ErrOrStderr(), "Warning: session was not recorded in the history database")
		}

		save := saveFile || cmd.Flags().Changed("output")
		if !save && interactive {
			if save, err = confirmSave(); err != nil {
				return err
			}
		}
		if !save {
			return nil
		}

		path := outputFile
		if path == "" {
			path = session.DefaultFileName(rec.Session.Topic)
		}
		if err := session.SaveFile(path, rec.Session); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Session saved to %s\n", path)
		return nil
	},
}

// resolveRunInput checks the run parameters before anything is printed. A
// blank topic falls back to the default one.
func resolveRunInput(topic string, maxTurns int) (string, int, error) {
	if maxTurns < orchestrator.MinTurns {
		return "", 0, fmt.Errorf("%w: got %d", orchestrator.ErrInvalidMaxTurns, maxTurns)
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = defaultTopic
	}
	return topic, maxTurns, nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&topic, "topic", "t", defaultTopic, "Haiku topic")
	runCmd.Flags().IntVarP(&maxTurns, "max-turns", "n", defaultMaxTurns, "Maximum number of turns (at least 2, even recommended)")
	runCmd.Flags().BoolVar(&saveFile, "save", false, "Save the session as a JSON document without asking")
	runCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Session JSON file (default haiku_session_<topic>.json)")
	runCmd.Flags().BoolVar(&noStore, "no-store", false, "Do not record the session in the history database")
	runCmd.Flags().BoolVar(&showSummary, "summary", false, "Print a plain-text session summary at the end")
}
