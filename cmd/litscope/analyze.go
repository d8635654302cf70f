// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litscope/internal/analysis"
	"github.com/pdiddy/litscope/internal/demographics"
	"github.com/pdiddy/litscope/internal/report"
	"github.com/pdiddy/litscope/internal/retrieve"
	"github.com/pdiddy/litscope/internal/store"
	"github.com/pdiddy/litscope/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score papers and detect demographic blind spots",
	Long: `Analyze runs the full pipeline on a set of papers: quality scoring,
demographic extraction over the high-quality subset, coverage
aggregation, and blind spot detection. Papers come from a saved
paper-set file (--papers) or are retrieved inline (--query).

Demographic extraction defaults to the deterministic keyword tables;
set extraction.mode to "model" in the config to classify through the
Anthropic API instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		ctx := cmd.Context()

		var (
			papers []types.PaperRecord
			query  string
		)

		if path, _ := cmd.Flags().GetString("papers"); path != "" {
			ps, err := retrieve.ReadPaperSet(path)
			if err != nil {
				return err
			}
			papers = ps.Papers
			query = ps.Query.Disease
			if q, _ := cmd.Flags().GetString("query"); q != "" {
				query = q
			}
		} else {
			q, err := queryFromFlags(cmd)
			if err != nil {
				return err
			}
			out, err := retrieve.Retrieve(ctx, q, enabledBackends(cfg.Retrieval), cfg.Retrieval, os.Stderr)
			if err != nil {
				return err
			}
			papers = out.Papers
			query = q.Disease
		}

		extractor, err := buildExtractor(cfg.Extraction)
		if err != nil {
			return err
		}

		pipeline := analysis.New(cfg.Analysis, extractor)
		res, err := pipeline.Run(ctx, query, papers, os.Stderr)
		if err != nil {
			return err
		}

		if save, _ := cmd.Flags().GetBool("save"); save {
			s, err := store.NewStore(cfg.Store)
			if err != nil {
				return err
			}
			defer s.Close()
			runID, err := s.SaveRun(ctx, *res)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Saved run %d\n", runID)
		}

		if path, _ := cmd.Flags().GetString("markdown"); path != "" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("creating report directory: %w", err)
			}
			if err := report.WriteMarkdown(*res, path); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Wrote markdown report to %s\n", path)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return report.WriteJSON(*res, os.Stdout)
		}

		report.WriteText(*res, os.Stdout)
		return nil
	},
}

// buildExtractor selects the demographic extraction strategy.
func buildExtractor(cfg types.ExtractionConfig) (demographics.Strategy, error) {
	switch cfg.Mode {
	case types.ModeModel:
		backend, err := demographics.NewAnthropicBackend(cfg.AIConfig)
		if err != nil {
			return nil, err
		}
		return demographics.NewModelStrategy(backend, cfg.MaxRetries), nil
	case types.ModeKeyword, "":
		return demographics.KeywordStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown extraction mode %q", cfg.Mode)
	}
}

func init() {
	analyzeCmd.Flags().String("papers", "", "paper-set YAML file from a previous retrieve")
	analyzeCmd.Flags().String("query", "", "disease or research question")
	analyzeCmd.Flags().String("keywords", "", "additional keywords (comma-separated, inline retrieval)")
	analyzeCmd.Flags().Int("year-from", 0, "earliest publication year (inline retrieval)")
	analyzeCmd.Flags().Int("year-to", 0, "latest publication year (inline retrieval)")
	analyzeCmd.Flags().Bool("exclude-pediatric", false, "drop pediatric-only studies (inline retrieval)")
	analyzeCmd.Flags().Bool("save", false, "persist the run to the store")
	analyzeCmd.Flags().String("markdown", "", "write a markdown report to this path")
	analyzeCmd.Flags().Bool("json", false, "output the full result as JSON")

	rootCmd.AddCommand(analyzeCmd)
}
