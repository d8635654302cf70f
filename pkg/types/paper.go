// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the litscope pipeline:
// paper records, quality assessments, demographic coverage, blind spots,
// and report summaries, plus the configuration structs passed into each
// stage constructor.
package types

import "strings"

// SourceCategory classifies where a paper record came from. The quality
// scorer maps each category to a source reputation constant, so the set
// here is ordered in practice: peer-reviewed indexes rank above mixed
// aggregators, which rank above preprint servers.
type SourceCategory string

const (
	SourcePubMed    SourceCategory = "pubmed"
	SourceEuropePMC SourceCategory = "europepmc"
	SourceArxiv     SourceCategory = "arxiv"
	SourceOther     SourceCategory = "other"
)

// PaperRecord holds the metadata for one retrieved paper. Records are
// immutable once retrieval produces them; every downstream stage reads
// but never writes them.
type PaperRecord struct {
	// DOI is the canonical identifier when the source provides one.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// URL is the landing page or abstract URL.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Title is the paper title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Journal is the journal or venue name.
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`

	// Date is the publication date as a year-resolvable string
	// (e.g. "2023-05-01", "2023 May", "2023"). Kept verbatim from the
	// source; use Year to resolve it.
	Date string `json:"date,omitempty" yaml:"date,omitempty"`

	// Abstract is the paper abstract or summary.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Category identifies which backend produced the record.
	Category SourceCategory `json:"category" yaml:"category"`
}

// ID returns the paper identifier used to key assessments and store rows:
// DOI when present, then URL, then title. Returns "" when all three are
// empty; callers that need a non-empty key supply their own fallback.
func (p PaperRecord) ID() string {
	if doi := strings.TrimSpace(p.DOI); doi != "" {
		return doi
	}
	if u := strings.TrimSpace(p.URL); u != "" {
		return u
	}
	return strings.TrimSpace(p.Title)
}

// Year resolves the publication year from the Date string by scanning for
// the first run of exactly four digits that reads as a plausible year.
// Returns 0 when no year can be resolved.
func (p PaperRecord) Year() int {
	digits := 0
	value := 0
	for i := 0; i <= len(p.Date); i++ {
		if i < len(p.Date) && p.Date[i] >= '0' && p.Date[i] <= '9' {
			digits++
			value = value*10 + int(p.Date[i]-'0')
			continue
		}
		if digits == 4 && value >= 1000 && value <= 2999 {
			return value
		}
		digits = 0
		value = 0
	}
	return 0
}
