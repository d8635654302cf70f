package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "litscope/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RetrievalConfig holds settings for the literature retrieval stage.
type RetrievalConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the maximum number of records to return (default 50).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// EnablePubMed controls whether the PubMed E-utilities backend is used.
	EnablePubMed bool `json:"enable_pubmed" yaml:"enable_pubmed"`

	// EnableEuropePMC controls whether the Europe PMC backend is used.
	EnableEuropePMC bool `json:"enable_europepmc" yaml:"enable_europepmc"`

	// EnableArxiv controls whether the arXiv backend is used.
	EnableArxiv bool `json:"enable_arxiv" yaml:"enable_arxiv"`

	// NCBIAPIKey is an optional E-utilities key for higher rate limits.
	NCBIAPIKey string `json:"ncbi_api_key,omitempty" yaml:"ncbi_api_key,omitempty"`

	// ContactEmail is sent to APIs that ask for a maintainer contact.
	ContactEmail string `json:"contact_email,omitempty" yaml:"contact_email,omitempty"`

	// InterBackendDelay is the delay between API calls to different backends.
	InterBackendDelay time.Duration `json:"inter_backend_delay" yaml:"inter_backend_delay"`
}

// ExtractionMode selects the demographic extraction strategy.
type ExtractionMode string

const (
	// ModeKeyword uses the deterministic keyword tables.
	ModeKeyword ExtractionMode = "keyword"

	// ModeModel classifies papers through a generative AI backend.
	ModeModel ExtractionMode = "model"
)

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier.
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ExtractionConfig holds settings for the demographic extraction stage.
type ExtractionConfig struct {
	AIConfig `yaml:",inline"`

	// Mode selects the strategy: keyword or model.
	Mode ExtractionMode `json:"mode" yaml:"mode"`
}

// AnalysisConfig holds settings for the analysis pipeline.
type AnalysisConfig struct {
	// TopBlindSpots caps how many ranked blind spots the report summary
	// lists (default 5).
	TopBlindSpots int `json:"top_blind_spots" yaml:"top_blind_spots"`
}

// StoreConfig holds settings for the analysis run store.
type StoreConfig struct {
	// DataDir is the directory holding the run database.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ReportConfig holds settings for report rendering.
type ReportConfig struct {
	// OutputDir is the directory for rendered reports (e.g. "output/reports/").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Retrieval  RetrievalConfig  `json:"retrieval" yaml:"retrieval"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Analysis   AnalysisConfig   `json:"analysis" yaml:"analysis"`
	Store      StoreConfig      `json:"store" yaml:"store"`
	Report     ReportConfig     `json:"report" yaml:"report"`
}
