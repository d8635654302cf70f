// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/litscope/pkg/types"
)

func init() {
	viper.SetDefault("retrieval.timeout", 30*time.Second)
	viper.SetDefault("retrieval.user_agent", "litscope/"+version)
	viper.SetDefault("retrieval.max_results", 50)
	viper.SetDefault("retrieval.enable_pubmed", true)
	viper.SetDefault("retrieval.enable_europepmc", true)
	viper.SetDefault("retrieval.enable_arxiv", true)
	viper.SetDefault("retrieval.inter_backend_delay", 200*time.Millisecond)

	viper.SetDefault("extraction.mode", string(types.ModeKeyword))
	viper.SetDefault("extraction.model", "claude-sonnet-4-5-20250929")
	viper.SetDefault("extraction.max_retries", 3)

	viper.SetDefault("analysis.top_blind_spots", 5)

	viper.SetDefault("store.data_dir", "data")
	viper.SetDefault("store.max_results", 20)

	viper.SetDefault("report.output_dir", "output/reports")
}

// loadConfig assembles the pipeline configuration from viper (config
// file, env, defaults) and the secrets directory.
func loadConfig() types.PipelineConfig {
	cfg := types.PipelineConfig{
		Retrieval: types.RetrievalConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("retrieval.timeout"),
				UserAgent: viper.GetString("retrieval.user_agent"),
			},
			MaxResults:        viper.GetInt("retrieval.max_results"),
			EnablePubMed:      viper.GetBool("retrieval.enable_pubmed"),
			EnableEuropePMC:   viper.GetBool("retrieval.enable_europepmc"),
			EnableArxiv:       viper.GetBool("retrieval.enable_arxiv"),
			NCBIAPIKey:        secretDefault("ncbi-api-key", viper.GetString("retrieval.ncbi_api_key")),
			ContactEmail:      secretDefault("europepmc-email", viper.GetString("retrieval.contact_email")),
			InterBackendDelay: viper.GetDuration("retrieval.inter_backend_delay"),
		},
		Extraction: types.ExtractionConfig{
			AIConfig: types.AIConfig{
				Model:      viper.GetString("extraction.model"),
				APIKey:     secretDefault("anthropic-api-key", viper.GetString("extraction.api_key")),
				MaxRetries: viper.GetInt("extraction.max_retries"),
			},
			Mode: types.ExtractionMode(viper.GetString("extraction.mode")),
		},
		Analysis: types.AnalysisConfig{
			TopBlindSpots: viper.GetInt("analysis.top_blind_spots"),
		},
		Store: types.StoreConfig{
			DataDir:    viper.GetString("store.data_dir"),
			MaxResults: viper.GetInt("store.max_results"),
		},
		Report: types.ReportConfig{
			OutputDir: viper.GetString("report.output_dir"),
		},
	}
	return cfg
}
