package retrieve

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/litscope/pkg/types"
)

// --- mock backend ---

type mockBackend struct {
	name   string
	papers []types.PaperRecord
	err    error
}

func (m *mockBackend) Name() string { return m.name }

func (m *mockBackend) Search(_ context.Context, _ Query, _ types.RetrievalConfig) ([]types.PaperRecord, error) {
	return m.papers, m.err
}

func testCfg() types.RetrievalConfig {
	return types.RetrievalConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "test/0.1",
		},
		MaxResults:        20,
		InterBackendDelay: 0,
	}
}

// --- Query ---

func TestQueryIsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  bool
	}{
		{"empty", Query{}, true},
		{"disease", Query{Disease: "hypertension"}, false},
		{"keywords only", Query{Keywords: []string{"treatment"}}, false},
		{"whitespace disease is empty", Query{Disease: "  "}, true},
		{"year bounds only is empty", Query{YearFrom: 2020}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

// --- Deduplication ---

func TestDeduplicateByDOI(t *testing.T) {
	papers := []types.PaperRecord{
		{DOI: "10.1000/abc", Title: "Paper A", Category: types.SourcePubMed},
		{DOI: "10.1000/ABC", Title: "Paper A (EPMC)", Category: types.SourceEuropePMC, Abstract: "An abstract."},
		{DOI: "10.1000/xyz", Title: "Paper B", Category: types.SourcePubMed},
	}

	deduped, removed := deduplicate(papers)
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if len(deduped) != 2 {
		t.Fatalf("len(deduped) = %d, want 2", len(deduped))
	}
	// The canonical copy keeps its own fields and fills gaps from the dup.
	if deduped[0].Title != "Paper A" {
		t.Errorf("Title = %q, want canonical copy's title", deduped[0].Title)
	}
	if deduped[0].Abstract != "An abstract." {
		t.Error("Abstract should be filled from the duplicate")
	}
}

func TestDeduplicateByTitle(t *testing.T) {
	papers := []types.PaperRecord{
		{URL: "https://pubmed.ncbi.nlm.nih.gov/1/", Title: "Hypertension in Older Adults", Category: types.SourcePubMed},
		{DOI: "10.1000/dup", Title: "hypertension in older adults!", Category: types.SourceEuropePMC},
	}

	deduped, removed := deduplicate(papers)
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if len(deduped) != 1 {
		t.Fatalf("len(deduped) = %d, want 1", len(deduped))
	}
	if deduped[0].DOI != "10.1000/dup" {
		t.Error("DOI should be filled from the duplicate")
	}
}

func TestDeduplicateNoDuplicates(t *testing.T) {
	papers := []types.PaperRecord{
		{DOI: "10.1000/a", Title: "Paper A"},
		{DOI: "10.1000/b", Title: "Paper B"},
	}

	deduped, removed := deduplicate(papers)
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
	if len(deduped) != 2 {
		t.Errorf("len(deduped) = %d, want 2", len(deduped))
	}
}

// --- Retrieve ---

func TestRetrieveEmptyQuery(t *testing.T) {
	var buf bytes.Buffer
	_, err := Retrieve(context.Background(), Query{}, []Backend{&mockBackend{name: "mock"}}, testCfg(), &buf)
	if err == nil || !strings.Contains(err.Error(), "empty") {
		t.Errorf("expected empty query error, got: %v", err)
	}
}

func TestRetrieveNoBackends(t *testing.T) {
	var buf bytes.Buffer
	_, err := Retrieve(context.Background(), Query{Disease: "asthma"}, nil, testCfg(), &buf)
	if err == nil || !strings.Contains(err.Error(), "no retrieval backends") {
		t.Errorf("expected no backends error, got: %v", err)
	}
}

func TestRetrieveContinuesAfterBackendFailure(t *testing.T) {
	failing := &mockBackend{name: "failing", err: fmt.Errorf("network error")}
	working := &mockBackend{
		name: "working",
		papers: []types.PaperRecord{
			{DOI: "10.1000/a", Title: "Paper A", Category: types.SourcePubMed},
		},
	}

	var buf bytes.Buffer
	out, err := Retrieve(context.Background(), Query{Disease: "asthma"}, []Backend{failing, working}, testCfg(), &buf)
	if err != nil {
		t.Fatalf("Retrieve should not fail entirely: %v", err)
	}
	if len(out.Papers) != 1 {
		t.Errorf("len(Papers) = %d, want 1", len(out.Papers))
	}
	if len(out.BackendErrors) != 1 {
		t.Errorf("len(BackendErrors) = %d, want 1", len(out.BackendErrors))
	}
	if !strings.Contains(buf.String(), "warning:") {
		t.Error("output should contain warning about failed backend")
	}
}

func TestRetrievePeerReviewedCopySurvivesDedup(t *testing.T) {
	arxiv := &mockBackend{
		name: "arxiv",
		papers: []types.PaperRecord{
			{DOI: "10.1000/shared", Title: "Shared Paper (preprint)", Category: types.SourceArxiv},
		},
	}
	pubmed := &mockBackend{
		name: "pubmed",
		papers: []types.PaperRecord{
			{DOI: "10.1000/shared", Title: "Shared Paper", Journal: "The Lancet", Category: types.SourcePubMed},
		},
	}

	var buf bytes.Buffer
	out, err := Retrieve(context.Background(), Query{Disease: "asthma"}, []Backend{arxiv, pubmed}, testCfg(), &buf)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if out.DupsRemoved != 1 {
		t.Errorf("DupsRemoved = %d, want 1", out.DupsRemoved)
	}
	if len(out.Papers) != 1 {
		t.Fatalf("len(Papers) = %d, want 1", len(out.Papers))
	}
	if out.Papers[0].Category != types.SourcePubMed {
		t.Errorf("Category = %q, the peer-reviewed copy should be canonical", out.Papers[0].Category)
	}
	if out.Papers[0].Journal != "The Lancet" {
		t.Errorf("Journal = %q", out.Papers[0].Journal)
	}
}

func TestRetrieveMaxResults(t *testing.T) {
	var papers []types.PaperRecord
	for i := 0; i < 30; i++ {
		papers = append(papers, types.PaperRecord{
			DOI:      fmt.Sprintf("10.1000/p%d", i),
			Title:    fmt.Sprintf("Paper %d", i),
			Category: types.SourcePubMed,
		})
	}

	cfg := testCfg()
	cfg.MaxResults = 10
	var buf bytes.Buffer
	out, err := Retrieve(context.Background(), Query{Disease: "asthma"}, []Backend{&mockBackend{name: "mock", papers: papers}}, cfg, &buf)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(out.Papers) != 10 {
		t.Errorf("len(Papers) = %d, want 10", len(out.Papers))
	}
}

// --- Filters ---

func TestApplyFiltersYearBounds(t *testing.T) {
	papers := []types.PaperRecord{
		{DOI: "a", Title: "Old", Date: "2010"},
		{DOI: "b", Title: "In range", Date: "2020"},
		{DOI: "c", Title: "Too new", Date: "2025"},
		{DOI: "d", Title: "No date"},
	}

	got := applyFilters(papers, Query{YearFrom: 2015, YearTo: 2022})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (in-range plus undated)", len(got))
	}
	if got[0].Title != "In range" || got[1].Title != "No date" {
		t.Errorf("unexpected survivors: %q, %q", got[0].Title, got[1].Title)
	}
}

func TestApplyFiltersYearBoundsInclusive(t *testing.T) {
	papers := []types.PaperRecord{
		{DOI: "a", Title: "At from", Date: "2015"},
		{DOI: "b", Title: "At to", Date: "2022"},
	}

	got := applyFilters(papers, Query{YearFrom: 2015, YearTo: 2022})
	if len(got) != 2 {
		t.Errorf("len = %d, want 2: bounds are inclusive", len(got))
	}
}

func TestApplyFiltersExcludePediatric(t *testing.T) {
	papers := []types.PaperRecord{
		{DOI: "a", Title: "Asthma in Children", Date: "2020"},
		{DOI: "b", Title: "Paediatric asthma outcomes", Date: "2020"},
		{DOI: "c", Title: "Asthma in adults", Date: "2020", Abstract: "Excludes children under 18."},
	}

	got := applyFilters(papers, Query{ExcludePediatric: true})
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	// Abstract mentions of children do not trigger the exclusion.
	if got[0].DOI != "c" {
		t.Errorf("survivor = %q, want the adult study", got[0].DOI)
	}
}

// --- Output formatting ---

func TestFormatTable(t *testing.T) {
	out := Output{
		Papers: []types.PaperRecord{
			{Title: "Paper A", Journal: "The Lancet", Date: "2023", Category: types.SourcePubMed},
			{Title: "Paper B", Journal: "BMJ", Date: "2022", Category: types.SourceEuropePMC},
		},
		DupsRemoved: 1,
	}

	var buf bytes.Buffer
	FormatTable(out, &buf)
	s := buf.String()

	if !strings.Contains(s, "Paper A") {
		t.Error("table should contain 'Paper A'")
	}
	if !strings.Contains(s, "Paper B") {
		t.Error("table should contain 'Paper B'")
	}
	if !strings.Contains(s, "1 duplicates removed") {
		t.Error("table should mention duplicates removed")
	}
}

func TestFormatTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(Output{}, &buf)
	if !strings.Contains(buf.String(), "No papers") {
		t.Error("empty output should say 'No papers'")
	}
}

// --- Helper functions ---

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Hypertension in Older Adults", "hypertension in older adults"},
		{"hypertension in older adults!", "hypertension in older adults"},
		{"  BERT:  Pre-training  ", "bert pretraining"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := normalizeTitle(tt.input)
			if got != tt.want {
				t.Errorf("normalizeTitle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMergeInto(t *testing.T) {
	dst := types.PaperRecord{
		DOI:      "10.1000/a",
		Title:    "Paper A",
		Category: types.SourcePubMed,
	}
	src := types.PaperRecord{
		DOI:      "10.1000/a",
		Title:    "Paper A (extended)",
		Authors:  []string{"Smith", "Jones"},
		Journal:  "The Lancet",
		Date:     "2023-01-17",
		Abstract: "An abstract.",
		Category: types.SourceEuropePMC,
	}

	mergeInto(&dst, src)

	if dst.Title != "Paper A" {
		t.Errorf("Title = %q, canonical copy's title should win", dst.Title)
	}
	if len(dst.Authors) != 2 {
		t.Errorf("Authors should be filled from src, got %v", dst.Authors)
	}
	if dst.Journal != "The Lancet" {
		t.Error("Journal should be filled from src")
	}
	if dst.Date != "2023-01-17" {
		t.Error("Date should be filled from src")
	}
	if dst.Abstract != "An abstract." {
		t.Error("Abstract should be filled from src")
	}
	if dst.Category != types.SourcePubMed {
		t.Errorf("Category = %q, should stay the canonical copy's", dst.Category)
	}
}

func TestCategoryRankOrdering(t *testing.T) {
	if !(categoryRank(types.SourcePubMed) < categoryRank(types.SourceEuropePMC)) {
		t.Error("pubmed should rank before europepmc")
	}
	if !(categoryRank(types.SourceEuropePMC) < categoryRank(types.SourceArxiv)) {
		t.Error("europepmc should rank before arxiv")
	}
	if !(categoryRank(types.SourceArxiv) < categoryRank(types.SourceOther)) {
		t.Error("arxiv should rank before other")
	}
}
