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
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/haikuloop/internal/session"
	"github.com/valpere/haikuloop/internal/store"
)

var (
	historyTopic    string
	historyApproved bool
	historyLimit    int
	showJSON        bool
	exportFile      string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded refinement sessions",
	Long:  `List, show, export and delete sessions stored in the SQLite history database.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded sessions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		entries, err := db.ListSessions(context.Background(), store.ListFilter{
			Topic:        historyTopic,
			ApprovedOnly: historyApproved,
			Limit:        historyLimit,
		})
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}

		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No sessions recorded.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTOPIC\tTURNS\tAPPROVED\tPROVIDER\tCREATED\tFIRST LINE")
		for _, e := range entries {
			firstLine, _, _ := strings.Cut(e.FinalHaiku, "\n")
			if r := []rune(firstLine); len(r) > 40 {
				firstLine = string(r[:37]) + "..."
			}
			fmt.Fprintf(w, "%s\t%s\t%d/%d\t%v\t%s\t%s\t%s\n",
				e.ID, e.Topic, e.ActualTurns, e.MaxTurns, e.Approved,
				e.Provider, e.CreatedAt.Local().Format("2006-01-02 15:04"), firstLine)
		}
		return w.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id | file.json>",
	Short: "Show a recorded session or a saved session document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession(args[0])
		if err != nil {
			return err
		}
		if showJSON {
			return session.WriteJSON(cmd.OutOrStdout(), s)
		}
		fmt.Fprint(cmd.OutOrStdout(), session.Summary(s))
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Write a recorded session as a JSON document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession(args[0])
		if err != nil {
			return err
		}
		path := exportFile
		if path == "" {
			path = session.DefaultFileName(s.Topic)
		}
		if err := session.SaveFile(path, s); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Session saved to %s\n", path)
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a recorded session by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.DeleteSession(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted session: %s\n", args[0])
		return nil
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show session history statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.Stats(context.Background())
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Total sessions:    %d\n", stats.TotalSessions)
		fmt.Fprintf(out, "Approved sessions: %d\n", stats.ApprovedSessions)
		fmt.Fprintf(out, "Average turns:     %.2f\n", stats.AverageTurns)
		fmt.Fprintf(out, "Distinct topics:   %d\n", stats.DistinctTopics)
		return nil
	},
}

// loadSession resolves ref as a session document on disk when it names a
// .json file, and as a history ID otherwise.
func loadSession(ref string) (*session.Session, error) {
	if strings.HasSuffix(ref, ".json") {
		if _, err := os.Stat(ref); err == nil {
			return session.LoadFile(ref)
		}
	}

	db, err := openStore(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rec, err := db.GetSession(context.Background(), ref)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return rec.Session, nil
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyListCmd.Flags().StringVar(&historyTopic, "topic", "", "Only sessions about this topic (case-insensitive)")
	historyListCmd.Flags().BoolVar(&historyApproved, "approved", false, "Only approved sessions")
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of sessions to list (0 = all)")
	historyShowCmd.Flags().BoolVar(&showJSON, "json", false, "Print the session as JSON")
	historyExportCmd.Flags().StringVarP(&exportFile, "output", "o", "", "Output file (default haiku_session_<topic>.json)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyStatsCmd)
}
