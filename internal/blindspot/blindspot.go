// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package blindspot applies threshold rules to aggregated coverage and
// emits severity-tagged demographic gaps.
package blindspot

import (
	"fmt"

	"github.com/pdiddy/litscope/pkg/types"
)

// rule is one independently evaluated threshold check. check returns
// whether the rule fired plus the gap and details text for the emitted
// blind spot.
type rule struct {
	category string
	severity types.Severity
	check    func(cov types.PopulationCoverage) (bool, string, string)
}

// rules is the fixed rule table. Rules are independent and
// non-exclusive: any subset can fire for a given coverage snapshot.
var rules = []rule{
	{
		category: string(types.DimensionAge),
		severity: types.SeverityCritical,
		check: func(cov types.PopulationCoverage) (bool, string, string) {
			if cov.Percent(types.DimensionAge, types.AgeChild) != 0 {
				return false, "", ""
			}
			return true, "no pediatric (0-18) coverage: 0% of papers",
				"no analyzed paper mentions pediatric populations"
		},
	},
	{
		category: string(types.DimensionAge),
		severity: types.SeverityHigh,
		check: func(cov types.PopulationCoverage) (bool, string, string) {
			p := cov.Percent(types.DimensionAge, types.AgeChild)
			if p <= 0 || p >= 10 {
				return false, "", ""
			}
			return true, fmt.Sprintf("sparse pediatric (0-18) coverage: %d%% of papers", p), ""
		},
	},
	{
		category: string(types.DimensionAge),
		severity: types.SeverityCritical,
		check: func(cov types.PopulationCoverage) (bool, string, string) {
			if cov.Percent(types.DimensionAge, types.AgeOldest) != 0 {
				return false, "", ""
			}
			return true, "no oldest-old (>75) coverage: 0% of papers",
				"no analyzed paper mentions patients over 75"
		},
	},
	{
		category: string(types.DimensionAge),
		severity: types.SeverityHigh,
		check: func(cov types.PopulationCoverage) (bool, string, string) {
			p := cov.Percent(types.DimensionAge, types.AgeOldest)
			if p <= 0 || p >= 10 {
				return false, "", ""
			}
			return true, fmt.Sprintf("sparse oldest-old (>75) coverage: %d%% of papers", p), ""
		},
	},
	{
		category: string(types.DimensionGender),
		severity: types.SeverityHigh,
		check: func(cov types.PopulationCoverage) (bool, string, string) {
			p := cov.Percent(types.DimensionGender, types.NotSpecified)
			if p <= 70 {
				return false, "", ""
			}
			return true, fmt.Sprintf("gender unspecified in %d%% of papers", p),
				"most papers do not report sex or gender of participants"
		},
	},
	{
		category: string(types.DimensionGender),
		severity: types.SeverityCritical,
		check: func(cov types.PopulationCoverage) (bool, string, string) {
			if cov.Percent(types.DimensionGender, types.GenderMale) != 0 {
				return false, "", ""
			}
			return true, "no male coverage: 0% of papers", ""
		},
	},
	{
		category: string(types.DimensionGender),
		severity: types.SeverityCritical,
		check: func(cov types.PopulationCoverage) (bool, string, string) {
			if cov.Percent(types.DimensionGender, types.GenderFemale) != 0 {
				return false, "", ""
			}
			return true, "no female coverage: 0% of papers", ""
		},
	},
	{
		category: string(types.DimensionPregnancy),
		severity: types.SeverityCritical,
		check: func(cov types.PopulationCoverage) (bool, string, string) {
			if cov.Percent(types.DimensionPregnancy, types.PregnancyPregnant) != 0 {
				return false, "", ""
			}
			return true, "no pregnancy coverage: 0% of papers",
				"no analyzed paper mentions pregnant populations"
		},
	},
	{
		category: string(types.DimensionGeography),
		severity: types.SeverityMedium,
		check: func(cov types.PopulationCoverage) (bool, string, string) {
			specified := 100 - cov.Percent(types.DimensionGeography, types.NotSpecified)
			if specified >= 30 {
				return false, "", ""
			}
			return true, fmt.Sprintf("geography specified in only %d%% of papers", specified), ""
		},
	},
	{
		category: string(types.DimensionGeography),
		severity: types.SeverityHigh,
		check: func(cov types.PopulationCoverage) (bool, string, string) {
			if cov.Percent(types.DimensionGeography, types.RegionAsia) != 0 {
				return false, "", ""
			}
			return true, "no Asia coverage: 0% of papers", ""
		},
	},
}

// Detect evaluates every rule against the coverage snapshot and returns
// the fired blind spots in rule-table order. Detection is a pure
// function of the coverage: feeding the same snapshot back in always
// reproduces the same set. An empty paper set short-circuits to a single
// critical "no data" blind spot.
func Detect(cov types.PopulationCoverage) []types.BlindSpot {
	if cov.TotalPapers == 0 {
		return []types.BlindSpot{NoData()}
	}

	var spots []types.BlindSpot
	for _, r := range rules {
		fired, gap, details := r.check(cov)
		if !fired {
			continue
		}
		spots = append(spots, types.BlindSpot{
			Category: r.category,
			Gap:      gap,
			Severity: r.severity,
			Details:  details,
		})
	}
	return spots
}

// NoData is the sentinel blind spot for an empty high-quality paper set.
func NoData() types.BlindSpot {
	return types.BlindSpot{
		Category: types.CategoryData,
		Gap:      "no analyzable data: 0 papers passed quality filtering",
		Severity: types.SeverityCritical,
		Details:  "broaden the query or relax retrieval filters",
	}
}

// ExtractionFailure is the blind spot the pipeline attaches when the
// extraction backend failed and neutral coverage was substituted.
func ExtractionFailure(err error) types.BlindSpot {
	return types.BlindSpot{
		Category: types.CategoryError,
		Gap:      "demographic extraction failed; coverage reflects a neutral fallback",
		Severity: types.SeverityHigh,
		Details:  err.Error(),
	}
}
