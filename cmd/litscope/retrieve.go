// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litscope/internal/retrieve"
	"github.com/pdiddy/litscope/pkg/types"
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve",
	Short: "Retrieve papers from literature databases",
	Long: `Retrieve queries PubMed, Europe PMC, and arXiv for papers matching a
disease or research question. Results are deduplicated across sources,
preferring peer-reviewed copies, and can be saved to a paper-set file
for later analysis.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		query, err := queryFromFlags(cmd)
		if err != nil {
			return err
		}
		if max, _ := cmd.Flags().GetInt("max-results"); max > 0 {
			cfg.Retrieval.MaxResults = max
		}

		backends := enabledBackends(cfg.Retrieval)

		out, err := retrieve.Retrieve(cmd.Context(), query, backends, cfg.Retrieval, os.Stderr)
		if err != nil {
			return err
		}

		if path, _ := cmd.Flags().GetString("save"); path != "" {
			names := make([]string, len(backends))
			for i, b := range backends {
				names[i] = b.Name()
			}
			if err := retrieve.WritePaperSet(path, query, cfg.Retrieval, names, out); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Saved %d papers to %s\n", len(out.Papers), path)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out.Papers)
		}

		retrieve.FormatTable(out, os.Stdout)
		return nil
	},
}

// queryFromFlags builds a retrieval query from the retrieve/analyze flags.
func queryFromFlags(cmd *cobra.Command) (retrieve.Query, error) {
	disease, _ := cmd.Flags().GetString("query")
	keywords, _ := cmd.Flags().GetString("keywords")
	yearFrom, _ := cmd.Flags().GetInt("year-from")
	yearTo, _ := cmd.Flags().GetInt("year-to")
	excludePediatric, _ := cmd.Flags().GetBool("exclude-pediatric")

	q := retrieve.Query{
		Disease:          strings.TrimSpace(disease),
		YearFrom:         yearFrom,
		YearTo:           yearTo,
		ExcludePediatric: excludePediatric,
	}
	for _, kw := range strings.Split(keywords, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			q.Keywords = append(q.Keywords, kw)
		}
	}
	if q.IsEmpty() {
		return q, fmt.Errorf("provide a disease or research question via --query")
	}
	return q, nil
}

// enabledBackends assembles the configured backend set.
func enabledBackends(cfg types.RetrievalConfig) []retrieve.Backend {
	client := &http.Client{Timeout: cfg.Timeout}

	var backends []retrieve.Backend
	if cfg.EnablePubMed {
		backends = append(backends, &retrieve.PubMedBackend{Client: client, APIKey: cfg.NCBIAPIKey})
	}
	if cfg.EnableEuropePMC {
		backends = append(backends, &retrieve.EuropePMCBackend{Client: client, Email: cfg.ContactEmail})
	}
	if cfg.EnableArxiv {
		backends = append(backends, &retrieve.ArxivBackend{Client: client})
	}
	return backends
}

func init() {
	retrieveCmd.Flags().String("query", "", "disease or research question")
	retrieveCmd.Flags().String("keywords", "", "additional keywords (comma-separated)")
	retrieveCmd.Flags().Int("year-from", 0, "earliest publication year (inclusive)")
	retrieveCmd.Flags().Int("year-to", 0, "latest publication year (inclusive)")
	retrieveCmd.Flags().Bool("exclude-pediatric", false, "drop pediatric-only studies")
	retrieveCmd.Flags().Int("max-results", 0, "maximum number of papers to keep")
	retrieveCmd.Flags().String("save", "", "save retrieved papers to a paper-set YAML file")
	retrieveCmd.Flags().Bool("json", false, "output papers as JSON")

	rootCmd.AddCommand(retrieveCmd)
}
