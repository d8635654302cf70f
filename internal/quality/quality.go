// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package quality scores retrieved papers and filters them to the
// high-quality subset the rest of the pipeline analyzes.
package quality

import (
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/litscope/pkg/types"
)

// Threshold is the overall score at or above which a paper is included.
const Threshold = 0.5

// Sub-score weights. Overall = 0.4·recency + 0.4·relevance + 0.2·source.
const (
	weightRecency   = 0.4
	weightRelevance = 0.4
	weightSource    = 0.2
)

// sourceScores maps source categories to reputation constants. The
// ordering is the contract: peer-reviewed ≥ mixed ≥ preprint ≥ unknown.
var sourceScores = map[types.SourceCategory]float64{
	types.SourcePubMed:    0.9,
	types.SourceEuropePMC: 0.7,
	types.SourceArxiv:     0.6,
}

// defaultSourceScore is used for unknown source categories.
const defaultSourceScore = 0.5

// staleRecencyScore is the floor recency score. Papers whose publication
// year cannot be resolved are treated as maximally stale rather than
// rejected, so malformed dates degrade the score instead of failing.
const staleRecencyScore = 0.2

// genericTerms are disease-suffix words excluded from relevance terms;
// they appear in nearly every query and carry no discriminating signal.
var genericTerms = map[string]bool{
	"disease":    true,
	"diseases":   true,
	"syndrome":   true,
	"syndromes":  true,
	"disorder":   true,
	"disorders":  true,
	"condition":  true,
	"conditions": true,
}

// Scorer computes quality assessments. The zero value is not usable;
// construct with NewScorer.
type Scorer struct {
	// now supplies the current time for recency scoring. Injected so
	// tests are deterministic.
	now func() time.Time
}

// NewScorer returns a Scorer using the real clock.
func NewScorer() *Scorer {
	return &Scorer{now: time.Now}
}

// NewScorerAt returns a Scorer whose clock is fixed, for deterministic
// scoring in tests and replays.
func NewScorerAt(now func() time.Time) *Scorer {
	return &Scorer{now: now}
}

// Score computes the quality assessment for one paper against the query.
// It is a pure function of the paper, the query, and the scorer's clock;
// malformed input degrades sub-scores but never fails.
func (s *Scorer) Score(paper types.PaperRecord, query string) types.QualityAssessment {
	a := types.QualityAssessment{
		PaperID:        paper.ID(),
		SourceScore:    sourceScore(paper.Category),
		RecencyScore:   s.recencyScore(paper),
		RelevanceScore: relevanceScore(paper, RelevanceTerms(query)),
	}

	a.OverallScore = weightRecency*a.RecencyScore +
		weightRelevance*a.RelevanceScore +
		weightSource*a.SourceScore

	a.Included = a.OverallScore >= Threshold
	if a.Included {
		a.Rationale = fmt.Sprintf("included: overall score %.2f meets threshold %.2f", a.OverallScore, Threshold)
	} else {
		a.Rationale = fmt.Sprintf("excluded: overall score %.2f below threshold %.2f", a.OverallScore, Threshold)
	}
	return a
}

// Filter scores every paper and returns the assessments keyed by paper
// identifier alongside the high-quality subset in input order. Papers
// without any usable identifier are keyed "unidentified-N" by input
// position so their assessments are still reported.
func (s *Scorer) Filter(papers []types.PaperRecord, query string) (map[string]types.QualityAssessment, []types.PaperRecord) {
	assessments := make(map[string]types.QualityAssessment, len(papers))
	var included []types.PaperRecord

	for i, p := range papers {
		a := s.Score(p, query)
		if a.PaperID == "" {
			a.PaperID = fmt.Sprintf("unidentified-%d", i)
		}
		assessments[a.PaperID] = a
		if a.Included {
			included = append(included, p)
		}
	}
	return assessments, included
}

// sourceScore looks up the reputation constant for a source category.
func sourceScore(c types.SourceCategory) float64 {
	if score, ok := sourceScores[c]; ok {
		return score
	}
	return defaultSourceScore
}

// recencyScore is a step function of paper age in years: ≤2y → 1.0,
// ≤5y → 0.8, ≤10y → 0.6, ≤15y → 0.4, else max(0.2, 1 − age/20).
func (s *Scorer) recencyScore(paper types.PaperRecord) float64 {
	year := paper.Year()
	if year == 0 {
		return staleRecencyScore
	}

	age := s.now().Year() - year
	switch {
	case age <= 2:
		return 1.0
	case age <= 5:
		return 0.8
	case age <= 10:
		return 0.6
	case age <= 15:
		return 0.4
	default:
		score := 1.0 - float64(age)/20.0
		if score < staleRecencyScore {
			return staleRecencyScore
		}
		return score
	}
}

// RelevanceTerms tokenizes the query into scoring terms: lowercased
// words longer than three characters, excluding generic disease-suffix
// words.
func RelevanceTerms(query string) []string {
	var terms []string
	for _, word := range strings.Fields(strings.ToLower(query)) {
		if len(word) <= 3 || genericTerms[word] {
			continue
		}
		terms = append(terms, word)
	}
	return terms
}

// relevanceScore awards 2 points per term found in the title and 1 per
// term found in the abstract (case-insensitive substring), normalized by
// 3·termCount and clamped to [0, 1]. With no usable terms the score is a
// neutral 0.5.
func relevanceScore(paper types.PaperRecord, terms []string) float64 {
	if len(terms) == 0 {
		return 0.5
	}

	title := strings.ToLower(paper.Title)
	abstract := strings.ToLower(paper.Abstract)

	points := 0
	for _, term := range terms {
		if strings.Contains(title, term) {
			points += 2
		}
		if strings.Contains(abstract, term) {
			points++
		}
	}

	score := float64(points) / float64(3*len(terms))
	if score > 1.0 {
		return 1.0
	}
	return score
}
