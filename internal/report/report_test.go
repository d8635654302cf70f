package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/litscope/internal/analysis"
	"github.com/pdiddy/litscope/pkg/types"
)

func sampleResult() analysis.Result {
	return analysis.Result{
		Query: "hypertension treatment outcomes",
		Assessments: map[string]types.QualityAssessment{
			"10.1000/a": {
				PaperID: "10.1000/a", SourceScore: 0.9, RecencyScore: 1.0,
				RelevanceScore: 1.0, OverallScore: 0.98, Included: true,
			},
			"10.1000/b": {
				PaperID: "10.1000/b", SourceScore: 0.6, RecencyScore: 0.2,
				RelevanceScore: 0.5, OverallScore: 0.44, Included: false,
			},
		},
		HighQuality: []types.PaperRecord{
			{
				DOI: "10.1000/a", Title: "Hypertension treatment outcomes in older adults",
				Journal: "The Lancet", Date: "2024", Category: types.SourcePubMed,
			},
		},
		Coverage: types.PopulationCoverage{
			TotalPapers: 1,
			Dimensions: map[types.Dimension]map[string]int{
				types.DimensionAge: {
					types.AgeChild: 0, types.AgeAdult: 100, types.AgeSenior: 100,
					types.AgeOldest: 0, types.NotSpecified: 0,
				},
				types.DimensionGender: {
					types.GenderMale: 0, types.GenderFemale: 0, types.NotSpecified: 100,
				},
				types.DimensionPregnancy: {
					types.PregnancyPregnant: 0, types.NotSpecified: 100,
				},
				types.DimensionGeography: {
					types.RegionNorthAmerica: 0, types.RegionEurope: 100,
					types.RegionAsia: 0, types.RegionOther: 0, types.NotSpecified: 0,
				},
			},
		},
		BlindSpots: []types.BlindSpot{
			{Category: "age", Gap: "no coverage of age group 0-18", Severity: types.SeverityCritical, Details: "0 of 1 papers"},
			{Category: "geography", Gap: "no coverage of Asia", Severity: types.SeverityHigh},
		},
		Summary: types.ReportSummary{
			ExecutiveSummary: "Analyzed 2 papers; 1 met the quality threshold.",
			Metrics: types.KeyMetrics{
				TotalPapers: 2, HighQualityPapers: 1, YearRange: "2024",
			},
			TopBlindSpots: []types.BlindSpot{
				{Category: "age", Gap: "no coverage of age group 0-18", Severity: types.SeverityCritical},
			},
			Recommendations: []string{"Include pediatric studies in future reviews."},
			GeneratedAt:     time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
		},
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	WriteText(sampleResult(), &buf)
	s := buf.String()

	for _, want := range []string{
		"hypertension treatment outcomes",
		"Analyzed 2 papers",
		"Papers analyzed:     2",
		"High quality:        1",
		"Publication years:   2024",
		"Hypertension treatment outcomes in older adults",
		"The Lancet",
		"0.98",
		"[CRITICAL] age: no coverage of age group 0-18",
		"0 of 1 papers",
		"[HIGH] geography: no coverage of Asia",
		"Include pediatric studies in future reviews.",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("report missing %q", want)
		}
	}

	// Coverage section includes every dimension, not_specified included.
	for _, want := range []string{"age:", "gender:", "pregnancy:", "geography:", "not_specified"} {
		if !strings.Contains(s, want) {
			t.Errorf("coverage section missing %q", want)
		}
	}
}

func TestWriteTextNoPapersNoSpots(t *testing.T) {
	res := sampleResult()
	res.HighQuality = nil
	res.BlindSpots = nil

	var buf bytes.Buffer
	WriteText(res, &buf)
	s := buf.String()

	if !strings.Contains(s, "No high-quality papers.") {
		t.Error("report should note the empty paper set")
	}
	if !strings.Contains(s, "No blind spots detected.") {
		t.Error("report should note the empty blind spot list")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(sampleResult(), &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var parsed analysis.Result
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if parsed.Query != "hypertension treatment outcomes" {
		t.Errorf("Query = %q", parsed.Query)
	}
	if len(parsed.BlindSpots) != 2 {
		t.Errorf("len(BlindSpots) = %d, want 2", len(parsed.BlindSpots))
	}
}

func TestWriteMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	if err := WriteMarkdown(sampleResult(), path); err != nil {
		t.Fatalf("WriteMarkdown: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)

	for _, want := range []string{
		"# Literature Analysis: hypertension treatment outcomes",
		"## Executive Summary",
		"## Key Metrics",
		"| Papers analyzed | 2 |",
		"## High-Quality Papers",
		"| 1 | Hypertension treatment outcomes in older adults | The Lancet | 2024 | 0.98 |",
		"## Demographic Coverage",
		"| age | 18-65 | 100% |",
		"## Blind Spots",
		"| critical | age | no coverage of age group 0-18 | 0 of 1 papers |",
		"## Recommendations",
		"- Include pediatric studies in future reviews.",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestWriteMarkdownEscapesPipes(t *testing.T) {
	res := sampleResult()
	res.HighQuality[0].Title = "Outcomes | a review"

	path := filepath.Join(t.TempDir(), "report.md")
	if err := WriteMarkdown(res, path); err != nil {
		t.Fatalf("WriteMarkdown: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `Outcomes \| a review`) {
		t.Error("pipe in title should be escaped in table cells")
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.csv")
	if err := WriteCSV(sampleResult(), path); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parsing CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want header plus 2 papers", len(rows))
	}
	if rows[1][0] != "10.1000/a" || rows[2][0] != "10.1000/b" {
		t.Errorf("rows should be sorted by paper ID, got %q, %q", rows[1][0], rows[2][0])
	}
	if rows[1][5] != "0.98" {
		t.Errorf("overall score cell = %q", rows[1][5])
	}
	if rows[2][6] != "false" {
		t.Errorf("included cell = %q", rows[2][6])
	}
	// Excluded papers have no record, so no title.
	if rows[2][1] != "" {
		t.Errorf("excluded paper title = %q, want empty", rows[2][1])
	}
}
