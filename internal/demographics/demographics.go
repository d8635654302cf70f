// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package demographics maps paper text to coarse demographic signals
// across four independent dimensions: age, gender, pregnancy, geography.
// Two interchangeable strategies implement the same contract, so the
// aggregator and detector never know which one produced the signals.
package demographics

import (
	"context"
	"strings"

	"github.com/pdiddy/litscope/pkg/types"
)

// Strategy extracts per-paper demographic signals. Implementations must
// return one DemographicSignals per input paper, in input order.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, papers []types.PaperRecord) ([]types.DemographicSignals, error)
}

// KeywordStrategy classifies papers by substring matching against the
// dimension keyword tables. It is deterministic and never fails.
type KeywordStrategy struct{}

// Name returns the strategy identifier.
func (KeywordStrategy) Name() string { return "keyword" }

// Extract classifies every paper independently. The error is always nil;
// it exists only to satisfy the Strategy contract.
func (KeywordStrategy) Extract(_ context.Context, papers []types.PaperRecord) ([]types.DemographicSignals, error) {
	signals := make([]types.DemographicSignals, len(papers))
	for i, p := range papers {
		signals[i] = Classify(p.Title + " " + p.Abstract)
	}
	return signals, nil
}

// Classify maps free text to demographic signals. The text is lowercased
// once; for each dimension, every bucket whose keyword list has at least
// one substring hit is recorded exactly once, and a dimension with no
// hits records NotSpecified instead. NotSpecified never combines with a
// real match in the same dimension.
func Classify(text string) types.DemographicSignals {
	lower := strings.ToLower(text)

	matched := make(map[types.Dimension][]string, len(types.Dimensions))
	for _, dim := range types.Dimensions {
		var buckets []string
		for _, bk := range dimensionTables[dim] {
			if containsAny(lower, bk.keywords) {
				buckets = append(buckets, bk.bucket)
			}
		}
		if len(buckets) == 0 {
			buckets = []string{types.NotSpecified}
		}
		matched[dim] = buckets
	}
	return types.DemographicSignals{Matched: matched}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
