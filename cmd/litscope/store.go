// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litscope/internal/store"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect stored analysis runs",
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.NewStore(loadConfig().Store)
		if err != nil {
			return err
		}
		defer s.Close()

		runs, err := s.ListRuns(cmd.Context())
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No stored runs.")
			return nil
		}

		fmt.Printf("%-4s  %-40s  %-16s  %-6s  %-6s  %s\n",
			"ID", "Query", "Created", "Papers", "HQ", "Spots")
		fmt.Println(strings.Repeat("-", 88))
		for _, r := range runs {
			fmt.Printf("%-4d  %-40s  %-16s  %-6d  %-6d  %d\n",
				r.ID, truncate(r.Query, 40), r.CreatedAt.Format("2006-01-02 15:04"),
				r.TotalPapers, r.HighQualityPapers, r.BlindSpots)
		}
		return nil
	},
}

var storeSearchCmd = &cobra.Command{
	Use:   "search [terms]",
	Short: "Full-text search stored paper titles and abstracts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.NewStore(loadConfig().Store)
		if err != nil {
			return err
		}
		defer s.Close()

		maxResults, _ := cmd.Flags().GetInt("max-results")
		results, err := s.SearchPapers(cmd.Context(), strings.Join(args, " "), maxResults)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No matching papers.")
			return nil
		}

		for _, r := range results {
			fmt.Printf("run %d (%s)\n  %s\n  score %.2f, %s\n",
				r.RunID, r.RunQuery, r.Title, r.OverallScore, r.Category)
		}
		return nil
	},
}

var storeExportCmd = &cobra.Command{
	Use:   "export [run-id]",
	Short: "Export a stored run to JSON or CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.NewStore(loadConfig().Store)
		if err != nil {
			return err
		}
		defer s.Close()

		var runID int64
		if _, err := fmt.Sscanf(args[0], "%d", &runID); err != nil {
			return fmt.Errorf("invalid run ID %q", args[0])
		}

		format, _ := cmd.Flags().GetString("format")
		path, _ := cmd.Flags().GetString("out")
		if path == "" {
			path = fmt.Sprintf("run-%d.%s", runID, format)
		}

		switch format {
		case "json":
			err = s.ExportJSON(cmd.Context(), runID, path)
		case "csv":
			err = s.ExportCSV(cmd.Context(), runID, path)
		default:
			return fmt.Errorf("unknown export format %q (json or csv)", format)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Exported run %d to %s\n", runID, path)
		return nil
	},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func init() {
	storeSearchCmd.Flags().Int("max-results", 0, "maximum number of results")
	storeExportCmd.Flags().String("format", "json", "export format: json or csv")
	storeExportCmd.Flags().String("out", "", "output path (default run-<id>.<format>)")

	storeCmd.AddCommand(storeListCmd, storeSearchCmd, storeExportCmd)
	rootCmd.AddCommand(storeCmd)
}
