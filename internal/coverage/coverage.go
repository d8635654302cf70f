// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package coverage aggregates per-paper demographic signals into
// population-level percentages.
package coverage

import (
	"math"

	"github.com/pdiddy/litscope/pkg/types"
)

// Aggregate sums bucket membership across all papers and converts each
// bucket's count to a rounded integer percentage of the paper set.
// Percentages within a dimension are independent and need not sum to
// 100. An empty signal list yields the degenerate 100% not_specified
// coverage across every dimension, by convention.
func Aggregate(signals []types.DemographicSignals) types.PopulationCoverage {
	total := len(signals)
	cov := types.PopulationCoverage{
		TotalPapers: total,
		Dimensions:  make(map[types.Dimension]map[string]int, len(types.Dimensions)),
	}

	for _, dim := range types.Dimensions {
		buckets := make(map[string]int, len(types.Buckets(dim))+1)
		for _, b := range types.Buckets(dim) {
			buckets[b] = 0
		}
		buckets[types.NotSpecified] = 0
		cov.Dimensions[dim] = buckets
	}

	if total == 0 {
		for _, dim := range types.Dimensions {
			cov.Dimensions[dim][types.NotSpecified] = 100
		}
		return cov
	}

	counts := make(map[types.Dimension]map[string]int, len(types.Dimensions))
	for _, dim := range types.Dimensions {
		counts[dim] = make(map[string]int)
	}
	for _, sig := range signals {
		for _, dim := range types.Dimensions {
			for _, bucket := range sig.Matched[dim] {
				counts[dim][bucket]++
			}
		}
	}

	for dim, buckets := range cov.Dimensions {
		for bucket := range buckets {
			buckets[bucket] = percent(counts[dim][bucket], total)
		}
	}
	return cov
}

// percent is round(100·count/total) to the nearest integer.
func percent(count, total int) int {
	return int(math.Round(100 * float64(count) / float64(total)))
}
