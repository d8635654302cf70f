// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package synthesis ranks blind spots, derives recommendations, and
// builds the report summary that closes a pipeline run.
package synthesis

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/litscope/pkg/types"
)

// maxRecommendations caps the recommendation list.
const maxRecommendations = 5

// defaultTopBlindSpots caps how many ranked blind spots the summary lists.
const defaultTopBlindSpots = 5

// Rank returns the blind spots sorted by severity, critical first. The
// sort is stable: spots of equal severity keep their detection order.
// The input slice is not modified.
func Rank(spots []types.BlindSpot) []types.BlindSpot {
	ranked := make([]types.BlindSpot, len(spots))
	copy(ranked, spots)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Severity.Rank() < ranked[j].Severity.Rank()
	})
	return ranked
}

// recommendation maps a (category, gap-substring) pair to a templated
// sentence. An empty gapContains matches any gap in the category, so
// category fallbacks sit after their specific entries.
type recommendation struct {
	category    string
	gapContains string
	sentence    string
}

var recommendationTable = []recommendation{
	{string(types.DimensionAge), "pediatric", "Include pediatric-focused studies or note that findings may not extend to patients under 18."},
	{string(types.DimensionAge), "oldest-old", "Seek studies enrolling patients over 75; efficacy and safety in the oldest old are frequently unestablished."},
	{string(types.DimensionAge), "", "Broaden the search to cover under-represented age groups."},
	{string(types.DimensionGender), "unspecified", "Prefer studies that report participant sex; unreported sex composition masks differential effects."},
	// The female entry sits above the male entry: "female" gaps would
	// otherwise substring-match "male" first.
	{string(types.DimensionGender), "female", "Add studies with female participants; findings from male-dominated cohorts may not generalize."},
	{string(types.DimensionGender), "male", "Add studies with male participants to balance the sex composition of the evidence base."},
	{string(types.DimensionGender), "", "Balance the sex composition of the analyzed studies."},
	{string(types.DimensionPregnancy), "", "Search for pregnancy-specific evidence or flag that safety during pregnancy is unknown."},
	{string(types.DimensionGeography), "Asia", "Include studies from Asian populations; genetic and healthcare-system differences can change outcomes."},
	{string(types.DimensionGeography), "", "Seek geographically diverse studies before generalizing across regions."},
	{types.CategoryData, "", "Broaden the query or relax quality filters to obtain an analyzable paper set."},
	{types.CategoryError, "", "Re-run demographic extraction; the last run fell back to neutral coverage."},
}

// Recommend derives recommendation sentences from blind spots using the
// fixed lookup table. Identical sentences are deduplicated and the
// result is capped at five entries, preserving first-seen order.
func Recommend(spots []types.BlindSpot) []string {
	var recs []string
	seen := make(map[string]bool)

	for _, spot := range spots {
		sentence, ok := lookupRecommendation(spot)
		if !ok || seen[sentence] {
			continue
		}
		seen[sentence] = true
		recs = append(recs, sentence)
		if len(recs) == maxRecommendations {
			break
		}
	}
	return recs
}

func lookupRecommendation(spot types.BlindSpot) (string, bool) {
	for _, r := range recommendationTable {
		if r.category != spot.Category {
			continue
		}
		if r.gapContains == "" || strings.Contains(spot.Gap, r.gapContains) {
			return r.sentence, true
		}
	}
	return "", false
}

// Summarize builds the report summary from the run's outputs. spots must
// already be ranked; topN ≤ 0 uses the default of 5.
func Summarize(totalPapers int, highQuality []types.PaperRecord, spots []types.BlindSpot, topN int, now time.Time) types.ReportSummary {
	if topN <= 0 {
		topN = defaultTopBlindSpots
	}
	top := spots
	if len(top) > topN {
		top = top[:topN]
	}

	return types.ReportSummary{
		ExecutiveSummary: executiveSummary(totalPapers, len(highQuality), spots),
		Metrics: types.KeyMetrics{
			TotalPapers:       totalPapers,
			HighQualityPapers: len(highQuality),
			YearRange:         YearRange(highQuality),
		},
		TopBlindSpots:   top,
		Recommendations: Recommend(spots),
		GeneratedAt:     now,
	}
}

// executiveSummary renders the templated summary paragraph: paper
// counts, up to the first three critical gaps joined with "; ", the
// high-severity gap count, and a closing boilerplate sentence. With no
// critical or high gaps a neutral sentence substitutes for both.
func executiveSummary(total, highQuality int, spots []types.BlindSpot) string {
	var criticalGaps []string
	highCount := 0
	for _, s := range spots {
		switch s.Severity {
		case types.SeverityCritical:
			if len(criticalGaps) < 3 {
				criticalGaps = append(criticalGaps, s.Gap)
			}
		case types.SeverityHigh:
			highCount++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyzed %d papers, of which %d met the quality threshold. ", total, highQuality)

	if len(criticalGaps) == 0 && highCount == 0 {
		b.WriteString("No critical or high-severity blind spots were detected. ")
	} else {
		if len(criticalGaps) > 0 {
			fmt.Fprintf(&b, "Critical gaps: %s. ", strings.Join(criticalGaps, "; "))
		}
		if highCount > 0 {
			fmt.Fprintf(&b, "%d high-severity gap(s) were detected. ", highCount)
		}
	}

	b.WriteString("Demographic coverage percentages reflect keyword or model classification of titles and abstracts and should be read as indicative, not exact.")
	return b.String()
}

// YearRange derives the publication year span of the papers as
// "YYYY-YYYY", a single "YYYY" when min equals max, or "" when no year
// is resolvable.
func YearRange(papers []types.PaperRecord) string {
	minYear, maxYear := 0, 0
	for _, p := range papers {
		year := p.Year()
		if year == 0 {
			continue
		}
		if minYear == 0 || year < minYear {
			minYear = year
		}
		if year > maxYear {
			maxYear = year
		}
	}

	switch {
	case minYear == 0:
		return ""
	case minYear == maxYear:
		return fmt.Sprintf("%d", minYear)
	default:
		return fmt.Sprintf("%d-%d", minYear, maxYear)
	}
}
