// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litscope/internal/report"
	"github.com/pdiddy/litscope/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report [run-id]",
	Short: "Render a stored analysis run",
	Long: `Report loads a previously saved run from the store and renders it as a
terminal report, a markdown file, or a CSV paper listing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		ctx := cmd.Context()

		var runID int64
		if _, err := fmt.Sscanf(args[0], "%d", &runID); err != nil {
			return fmt.Errorf("invalid run ID %q", args[0])
		}

		s, err := store.NewStore(cfg.Store)
		if err != nil {
			return err
		}
		defer s.Close()

		res, err := s.LoadRun(ctx, runID)
		if err != nil {
			return err
		}

		wrote := false
		if mdPath, _ := cmd.Flags().GetString("markdown"); mdPath != "" {
			if mdPath == "auto" {
				mdPath = filepath.Join(cfg.Report.OutputDir, fmt.Sprintf("run-%d.md", runID))
			}
			if err := os.MkdirAll(filepath.Dir(mdPath), 0o755); err != nil {
				return fmt.Errorf("creating report directory: %w", err)
			}
			if err := report.WriteMarkdown(res, mdPath); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Wrote markdown report to %s\n", mdPath)
			wrote = true
		}

		if csvPath, _ := cmd.Flags().GetString("csv"); csvPath != "" {
			if err := os.MkdirAll(filepath.Dir(csvPath), 0o755); err != nil {
				return fmt.Errorf("creating report directory: %w", err)
			}
			if err := report.WriteCSV(res, csvPath); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Wrote CSV listing to %s\n", csvPath)
			wrote = true
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return report.WriteJSON(res, os.Stdout)
		}
		if !wrote {
			report.WriteText(res, os.Stdout)
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().String("markdown", "", `markdown output path ("auto" uses the configured report directory)`)
	reportCmd.Flags().String("csv", "", "CSV paper listing output path")
	reportCmd.Flags().Bool("json", false, "output the full result as JSON")

	rootCmd.AddCommand(reportCmd)
}
