// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders analysis results for humans and downstream
// tools: a terminal table view, JSON, a markdown report file, and a CSV
// paper listing.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/litscope/internal/analysis"
	"github.com/pdiddy/litscope/pkg/types"
)

// WriteText renders the full result as a human-readable report to w.
func WriteText(res analysis.Result, w io.Writer) {
	fmt.Fprintf(w, "Analysis: %s\n", res.Query)
	fmt.Fprintf(w, "Generated: %s\n\n", res.Summary.GeneratedAt.Format("2006-01-02 15:04"))

	fmt.Fprintln(w, res.Summary.ExecutiveSummary)
	fmt.Fprintln(w)

	m := res.Summary.Metrics
	fmt.Fprintf(w, "Papers analyzed:     %d\n", m.TotalPapers)
	fmt.Fprintf(w, "High quality:        %d\n", m.HighQualityPapers)
	if m.YearRange != "" {
		fmt.Fprintf(w, "Publication years:   %s\n", m.YearRange)
	}
	fmt.Fprintln(w)

	writePapersTable(res.HighQuality, res.Assessments, w)
	writeCoverage(res.Coverage, w)
	writeBlindSpots(res.BlindSpots, w)

	if len(res.Summary.Recommendations) > 0 {
		fmt.Fprintln(w, "Recommendations:")
		for _, r := range res.Summary.Recommendations {
			fmt.Fprintf(w, "  - %s\n", r)
		}
		fmt.Fprintln(w)
	}
}

func writePapersTable(papers []types.PaperRecord, assessments map[string]types.QualityAssessment, w io.Writer) {
	if len(papers) == 0 {
		fmt.Fprintln(w, "No high-quality papers.")
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintf(w, "%-4s  %-56s  %-20s  %-4s  %s\n",
		"Rank", "Title", "Journal", "Year", "Score")
	fmt.Fprintln(w, strings.Repeat("-", 98))

	for i, p := range papers {
		year := ""
		if y := p.Year(); y != 0 {
			year = strconv.Itoa(y)
		}
		score := ""
		if a, ok := assessments[p.ID()]; ok {
			score = fmt.Sprintf("%.2f", a.OverallScore)
		}
		fmt.Fprintf(w, "%-4d  %-56s  %-20s  %-4s  %s\n",
			i+1, truncate(p.Title, 56), truncate(p.Journal, 20), year, score)
	}
	fmt.Fprintln(w)
}

func writeCoverage(cov types.PopulationCoverage, w io.Writer) {
	fmt.Fprintln(w, "Demographic coverage:")
	for _, dim := range types.Dimensions {
		fmt.Fprintf(w, "  %s:\n", dim)
		for _, bucket := range types.Buckets(dim) {
			fmt.Fprintf(w, "    %-16s %3d%%\n", bucket, cov.Percent(dim, bucket))
		}
		fmt.Fprintf(w, "    %-16s %3d%%\n", types.NotSpecified, cov.Percent(dim, types.NotSpecified))
	}
	fmt.Fprintln(w)
}

func writeBlindSpots(spots []types.BlindSpot, w io.Writer) {
	if len(spots) == 0 {
		fmt.Fprintln(w, "No blind spots detected.")
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintln(w, "Blind spots:")
	for _, b := range spots {
		fmt.Fprintf(w, "  [%s] %s: %s\n", strings.ToUpper(string(b.Severity)), b.Category, b.Gap)
		if b.Details != "" {
			fmt.Fprintf(w, "      %s\n", b.Details)
		}
	}
	fmt.Fprintln(w)
}

// WriteJSON writes the full result as indented JSON to w.
func WriteJSON(res analysis.Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// WriteMarkdown writes a markdown report file to path.
func WriteMarkdown(res analysis.Result, path string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Literature Analysis: %s\n\n", res.Query)
	fmt.Fprintf(&b, "_Generated %s_\n\n", res.Summary.GeneratedAt.Format("2006-01-02 15:04"))

	b.WriteString("## Executive Summary\n\n")
	b.WriteString(res.Summary.ExecutiveSummary)
	b.WriteString("\n\n")

	m := res.Summary.Metrics
	b.WriteString("## Key Metrics\n\n")
	fmt.Fprintf(&b, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Papers analyzed | %d |\n", m.TotalPapers)
	fmt.Fprintf(&b, "| High quality | %d |\n", m.HighQualityPapers)
	if m.YearRange != "" {
		fmt.Fprintf(&b, "| Publication years | %s |\n", m.YearRange)
	}
	b.WriteString("\n")

	if len(res.HighQuality) > 0 {
		b.WriteString("## High-Quality Papers\n\n")
		b.WriteString("| Rank | Title | Journal | Year | Score |\n|---|---|---|---|---|\n")
		for i, p := range res.HighQuality {
			year := ""
			if y := p.Year(); y != 0 {
				year = strconv.Itoa(y)
			}
			score := ""
			if a, ok := res.Assessments[p.ID()]; ok {
				score = fmt.Sprintf("%.2f", a.OverallScore)
			}
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n",
				i+1, escapePipes(p.Title), escapePipes(p.Journal), year, score)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Demographic Coverage\n\n")
	b.WriteString("| Dimension | Bucket | Coverage |\n|---|---|---|\n")
	for _, dim := range types.Dimensions {
		buckets := append(append([]string{}, types.Buckets(dim)...), types.NotSpecified)
		for _, bucket := range buckets {
			fmt.Fprintf(&b, "| %s | %s | %d%% |\n", dim, bucket, res.Coverage.Percent(dim, bucket))
		}
	}
	b.WriteString("\n")

	b.WriteString("## Blind Spots\n\n")
	if len(res.BlindSpots) == 0 {
		b.WriteString("No blind spots detected.\n\n")
	} else {
		b.WriteString("| Severity | Category | Gap | Details |\n|---|---|---|---|\n")
		for _, spot := range res.BlindSpots {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				spot.Severity, spot.Category, escapePipes(spot.Gap), escapePipes(spot.Details))
		}
		b.WriteString("\n")
	}

	if len(res.Summary.Recommendations) > 0 {
		b.WriteString("## Recommendations\n\n")
		for _, r := range res.Summary.Recommendations {
			fmt.Fprintf(&b, "- %s\n", r)
		}
		b.WriteString("\n")
	}

	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// WriteCSV writes the assessed paper listing to path as CSV.
func WriteCSV(res analysis.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating CSV file: %w", err)
	}
	defer f.Close()

	titles := make(map[string]string, len(res.HighQuality))
	for _, p := range res.HighQuality {
		titles[p.ID()] = p.Title
	}

	ids := make([]string, 0, len(res.Assessments))
	for id := range res.Assessments {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	w := csv.NewWriter(f)
	header := []string{"paper_id", "title", "source_score", "recency_score",
		"relevance_score", "overall_score", "included"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, id := range ids {
		a := res.Assessments[id]
		row := []string{
			id,
			titles[id],
			fmt.Sprintf("%.2f", a.SourceScore),
			fmt.Sprintf("%.2f", a.RecencyScore),
			fmt.Sprintf("%.2f", a.RelevanceScore),
			fmt.Sprintf("%.2f", a.OverallScore),
			strconv.FormatBool(a.Included),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
