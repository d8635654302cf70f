// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Dimension names one of the demographic axes the extractor classifies
// papers along. Each dimension is analyzed independently.
type Dimension string

const (
	DimensionAge       Dimension = "age"
	DimensionGender    Dimension = "gender"
	DimensionPregnancy Dimension = "pregnancy"
	DimensionGeography Dimension = "geography"
)

// NotSpecified is the catch-all bucket a paper falls into when its text
// matched no real bucket for a dimension. It is exclusive with real
// matches: a paper is never counted both in a bucket and in NotSpecified
// for the same dimension.
const NotSpecified = "not_specified"

// Age bucket names.
const (
	AgeChild   = "0-18"
	AgeAdult   = "18-65"
	AgeSenior  = "65-75"
	AgeOldest  = ">75"
)

// Gender bucket names.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// PregnancyPregnant is the single real bucket for the pregnancy dimension.
const PregnancyPregnant = "pregnant"

// Geography bucket names.
const (
	RegionNorthAmerica = "North America"
	RegionEurope       = "Europe"
	RegionAsia         = "Asia"
	RegionOther        = "Other"
)

// Dimensions lists all demographic axes in canonical order.
var Dimensions = []Dimension{
	DimensionAge,
	DimensionGender,
	DimensionPregnancy,
	DimensionGeography,
}

// dimensionBuckets maps each dimension to its real buckets in check
// order. NotSpecified is not listed; it is implicit in every dimension.
var dimensionBuckets = map[Dimension][]string{
	DimensionAge:       {AgeChild, AgeAdult, AgeSenior, AgeOldest},
	DimensionGender:    {GenderMale, GenderFemale},
	DimensionPregnancy: {PregnancyPregnant},
	DimensionGeography: {RegionNorthAmerica, RegionEurope, RegionAsia, RegionOther},
}

// Buckets returns the real bucket names for a dimension in canonical
// order, excluding NotSpecified. The returned slice must not be modified.
func Buckets(d Dimension) []string {
	return dimensionBuckets[d]
}

// DemographicSignals records which buckets one paper's text matched, per
// dimension. A paper may match several buckets within a dimension but
// each bucket at most once; a dimension with no matches carries exactly
// [NotSpecified].
type DemographicSignals struct {
	Matched map[Dimension][]string `json:"matched" yaml:"matched"`
}

// Has reports whether the signals include the named bucket for d.
func (s DemographicSignals) Has(d Dimension, bucket string) bool {
	for _, b := range s.Matched[d] {
		if b == bucket {
			return true
		}
	}
	return false
}

// NeutralSignals returns signals with every dimension marked
// NotSpecified, the deterministic stand-in for a paper the extractor
// could not classify.
func NeutralSignals() DemographicSignals {
	m := make(map[Dimension][]string, len(Dimensions))
	for _, d := range Dimensions {
		m[d] = []string{NotSpecified}
	}
	return DemographicSignals{Matched: m}
}

// PopulationCoverage aggregates per-paper signals into integer
// percentages of the analyzed paper set, per dimension and bucket.
// Percentages within one dimension need not sum to 100: a paper can
// match several buckets, and rounding is independent per bucket.
type PopulationCoverage struct {
	// TotalPapers is the size of the analyzed (high-quality) paper set.
	TotalPapers int `json:"total_papers" yaml:"total_papers"`

	// Dimensions maps dimension → bucket → percent in [0, 100]. Every
	// canonical bucket plus NotSpecified is present, zero-filled.
	Dimensions map[Dimension]map[string]int `json:"dimensions" yaml:"dimensions"`
}

// Percent returns the coverage percentage for a bucket, 0 when absent.
func (c PopulationCoverage) Percent(d Dimension, bucket string) int {
	return c.Dimensions[d][bucket]
}

// Severity ranks a blind spot. The total order is fixed:
// critical > high > medium > low.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Rank returns the sort rank of the severity; lower sorts first.
// Unknown severities sort after low.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	default:
		return 4
	}
}

// Blind spot categories beyond the four dimensions.
const (
	// CategoryData flags that no analyzable papers reached the detector.
	CategoryData = "data"

	// CategoryError flags an extraction-backend failure the pipeline
	// recovered from with neutral coverage.
	CategoryError = "error"
)

// BlindSpot is a demographic coverage gap derived from aggregated
// coverage. Blind spots are recomputed each run, never persisted as
// source-of-truth state.
type BlindSpot struct {
	// Category is one of the four dimension names, or a meta category
	// (CategoryData, CategoryError).
	Category string `json:"category" yaml:"category"`

	// Gap is a human-readable description embedding the triggering
	// percentage.
	Gap string `json:"gap" yaml:"gap"`

	// Severity is the fixed severity assigned by the triggering rule.
	Severity Severity `json:"severity" yaml:"severity"`

	// Details optionally elaborates on the gap.
	Details string `json:"details,omitempty" yaml:"details,omitempty"`
}
