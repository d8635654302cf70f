// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analysis orchestrates the pipeline: quality scoring, filtering,
// demographic extraction, coverage aggregation, blind spot detection,
// and synthesis into a report summary.
package analysis

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pdiddy/litscope/internal/blindspot"
	"github.com/pdiddy/litscope/internal/coverage"
	"github.com/pdiddy/litscope/internal/demographics"
	"github.com/pdiddy/litscope/internal/quality"
	"github.com/pdiddy/litscope/internal/synthesis"
	"github.com/pdiddy/litscope/pkg/types"
)

// Result holds every artifact of one pipeline run.
type Result struct {
	// Query is the disease or research question the run analyzed.
	Query string `json:"query" yaml:"query"`

	// Assessments maps paper identifier to its quality assessment,
	// covering included and excluded papers alike.
	Assessments map[string]types.QualityAssessment `json:"assessments" yaml:"assessments"`

	// HighQuality is the subset that cleared the quality threshold, in
	// input order. Every paper here has Included == true.
	HighQuality []types.PaperRecord `json:"high_quality" yaml:"high_quality"`

	// Coverage is the aggregated demographic coverage of HighQuality.
	Coverage types.PopulationCoverage `json:"coverage" yaml:"coverage"`

	// BlindSpots is the ranked gap list, critical first.
	BlindSpots []types.BlindSpot `json:"blind_spots" yaml:"blind_spots"`

	// Summary is the derived report summary.
	Summary types.ReportSummary `json:"summary" yaml:"summary"`
}

// Pipeline wires the stages together. Construct with New; the extraction
// strategy and clock are injected so runs are testable without network
// or wall-clock coupling.
type Pipeline struct {
	scorer    *quality.Scorer
	extractor demographics.Strategy
	cfg       types.AnalysisConfig
	now       func() time.Time
}

// Option adjusts pipeline construction.
type Option func(*Pipeline)

// WithClock fixes the pipeline clock, for deterministic scoring and
// summary timestamps in tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
		p.scorer = quality.NewScorerAt(now)
	}
}

// New builds a pipeline around the given extraction strategy.
func New(cfg types.AnalysisConfig, extractor demographics.Strategy, opts ...Option) *Pipeline {
	p := &Pipeline{
		scorer:    quality.NewScorer(),
		extractor: extractor,
		cfg:       cfg,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the pipeline over the paper set. An empty query is a
// caller defect and fails fast; data problems never do. An extraction
// backend failure is recovered by substituting neutral coverage and
// flagging the run with an error-category blind spot.
func (p *Pipeline) Run(ctx context.Context, query string, papers []types.PaperRecord, w io.Writer) (*Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is empty: the pipeline needs a disease or research question")
	}

	assessments, highQuality := p.scorer.Filter(papers, query)
	fmt.Fprintf(w, "scored %d papers, %d high-quality\n", len(papers), len(highQuality))

	var spots []types.BlindSpot
	var cov types.PopulationCoverage

	if len(highQuality) == 0 {
		cov = coverage.Aggregate(nil)
		spots = []types.BlindSpot{blindspot.NoData()}
	} else {
		signals, err := p.extractor.Extract(ctx, highQuality)
		if err != nil {
			// Extraction failures degrade to neutral coverage; the run
			// continues and the report carries the error blind spot.
			fmt.Fprintf(w, "warning: %s extraction failed: %v\n", p.extractor.Name(), err)
			signals = neutralSignals(len(highQuality))
			spots = append(spots, blindspot.ExtractionFailure(err))
		}

		cov = coverage.Aggregate(signals)
		spots = append(spots, blindspot.Detect(cov)...)
	}

	ranked := synthesis.Rank(spots)
	summary := synthesis.Summarize(len(papers), highQuality, ranked, p.cfg.TopBlindSpots, p.now())

	fmt.Fprintf(w, "detected %d blind spots\n", len(ranked))

	return &Result{
		Query:       query,
		Assessments: assessments,
		HighQuality: highQuality,
		Coverage:    cov,
		BlindSpots:  ranked,
		Summary:     summary,
	}, nil
}

func neutralSignals(n int) []types.DemographicSignals {
	signals := make([]types.DemographicSignals, n)
	for i := range signals {
		signals[i] = types.NeutralSignals()
	}
	return signals
}
