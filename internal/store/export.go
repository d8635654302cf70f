// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/pdiddy/litscope/pkg/types"
)

// ExportJSON writes a stored run to path as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, runID int64, path string) error {
	res, err := s.LoadRun(ctx, runID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportCSV writes a stored run's paper listing to path as CSV, every
// assessed paper with its scores.
func (s *Store) ExportCSV(ctx context.Context, runID int64, path string) error {
	res, err := s.LoadRun(ctx, runID)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating CSV file: %w", err)
	}
	defer f.Close()

	titles := make(map[string]string, len(res.HighQuality))
	for _, p := range res.HighQuality {
		titles[p.ID()] = p.Title
	}

	w := csv.NewWriter(f)
	header := []string{"paper_id", "title", "source_score", "recency_score",
		"relevance_score", "overall_score", "included", "rationale"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, a := range sortedAssessments(res.Assessments) {
		row := []string{
			a.PaperID,
			titles[a.PaperID],
			formatScore(a.SourceScore),
			formatScore(a.RecencyScore),
			formatScore(a.RelevanceScore),
			formatScore(a.OverallScore),
			strconv.FormatBool(a.Included),
			a.Rationale,
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

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// sortedAssessments returns assessments ordered by paper ID so exports
// are deterministic.
func sortedAssessments(m map[string]types.QualityAssessment) []types.QualityAssessment {
	out := make([]types.QualityAssessment, 0, len(m))
	for _, a := range m {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaperID < out[j].PaperID })
	return out
}
