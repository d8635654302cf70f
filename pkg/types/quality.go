// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// QualityAssessment holds the per-paper quality sub-scores and the
// inclusion decision. Created once during scoring and never mutated
// afterward. All scores lie in [0, 1].
type QualityAssessment struct {
	// PaperID keys the assessment back to its PaperRecord.
	PaperID string `json:"paper_id" yaml:"paper_id"`

	// SourceScore reflects the reputation of the source category.
	SourceScore float64 `json:"source_score" yaml:"source_score"`

	// RecencyScore decays with publication age.
	RecencyScore float64 `json:"recency_score" yaml:"recency_score"`

	// RelevanceScore measures query-term hits in title and abstract.
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`

	// OverallScore is the weighted combination of the sub-scores.
	OverallScore float64 `json:"overall_score" yaml:"overall_score"`

	// Included reports whether the paper cleared the quality threshold.
	Included bool `json:"included" yaml:"included"`

	// Rationale is a human-readable inclusion or exclusion explanation
	// embedding the numeric score and the threshold.
	Rationale string `json:"rationale" yaml:"rationale"`
}
