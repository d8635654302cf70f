// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/litscope/pkg/types"
)

// PaperSet is the on-disk representation of a retrieval run. The analyst
// can save retrieved papers to a file and feed them to analysis later
// without re-querying the literature APIs.
type PaperSet struct {
	Query   QueryParams         `yaml:"query"`
	Config  PaperSetConfig      `yaml:"config"`
	Papers  []types.PaperRecord `yaml:"papers"`
	Summary PaperSetSummary     `yaml:"summary"`
}

// QueryParams stores the query parameters in a serializable form.
type QueryParams struct {
	Disease          string   `yaml:"disease,omitempty"`
	Keywords         []string `yaml:"keywords,omitempty"`
	YearFrom         int      `yaml:"year_from,omitempty"`
	YearTo           int      `yaml:"year_to,omitempty"`
	ExcludePediatric bool     `yaml:"exclude_pediatric,omitempty"`
}

// PaperSetConfig stores the retrieval configuration that produced the papers.
type PaperSetConfig struct {
	MaxResults int      `yaml:"max_results"`
	Backends   []string `yaml:"backends,omitempty"`
}

// PaperSetSummary stores result statistics and a timestamp.
type PaperSetSummary struct {
	Total             int       `yaml:"total"`
	DuplicatesRemoved int       `yaml:"duplicates_removed"`
	BackendErrors     []string  `yaml:"backend_errors,omitempty"`
	Timestamp         time.Time `yaml:"timestamp"`
}

// WritePaperSet saves query parameters and retrieved papers to a YAML file.
func WritePaperSet(path string, query Query, cfg types.RetrievalConfig, backends []string, out Output) error {
	ps := PaperSet{
		Query: QueryParams{
			Disease:          query.Disease,
			Keywords:         query.Keywords,
			YearFrom:         query.YearFrom,
			YearTo:           query.YearTo,
			ExcludePediatric: query.ExcludePediatric,
		},
		Config: PaperSetConfig{
			MaxResults: cfg.MaxResults,
			Backends:   backends,
		},
		Papers: out.Papers,
		Summary: PaperSetSummary{
			Total:             len(out.Papers),
			DuplicatesRemoved: out.DupsRemoved,
			BackendErrors:     out.BackendErrors,
			Timestamp:         time.Now(),
		},
	}

	data, err := yaml.Marshal(&ps)
	if err != nil {
		return fmt.Errorf("marshaling paper set: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadPaperSet loads a previously saved paper set from disk.
func ReadPaperSet(path string) (*PaperSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading paper set: %w", err)
	}
	var ps PaperSet
	if err := yaml.Unmarshal(data, &ps); err != nil {
		return nil, fmt.Errorf("parsing paper set: %w", err)
	}
	return &ps, nil
}

// ToQuery converts stored QueryParams back into a Query struct.
func (p QueryParams) ToQuery() Query {
	return Query{
		Disease:          p.Disease,
		Keywords:         p.Keywords,
		YearFrom:         p.YearFrom,
		YearTo:           p.YearTo,
		ExcludePediatric: p.ExcludePediatric,
	}
}
