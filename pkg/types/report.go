// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// KeyMetrics holds the headline numbers of an analysis run.
type KeyMetrics struct {
	// TotalPapers is the number of papers that entered scoring.
	TotalPapers int `json:"total_papers" yaml:"total_papers"`

	// HighQualityPapers is the number that cleared the quality threshold.
	HighQualityPapers int `json:"high_quality_papers" yaml:"high_quality_papers"`

	// YearRange is "YYYY-YYYY" over the high-quality papers' publication
	// years, a single "YYYY" when min equals max, or empty when no year
	// could be resolved.
	YearRange string `json:"year_range,omitempty" yaml:"year_range,omitempty"`
}

// ReportSummary is the derived, read-only output of a pipeline run.
type ReportSummary struct {
	// ExecutiveSummary is a templated paragraph covering paper counts,
	// the leading critical gaps, and the high-severity gap count.
	ExecutiveSummary string `json:"executive_summary" yaml:"executive_summary"`

	// Metrics holds the headline numbers.
	Metrics KeyMetrics `json:"metrics" yaml:"metrics"`

	// TopBlindSpots lists the highest-ranked blind spots, at most five.
	TopBlindSpots []BlindSpot `json:"top_blind_spots,omitempty" yaml:"top_blind_spots,omitempty"`

	// Recommendations lists deduplicated recommendation sentences,
	// at most five, in first-seen order.
	Recommendations []string `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`

	// GeneratedAt records when the summary was built.
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
}
