// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pdiddy/litscope/pkg/types"
)

// StoredPaper is a paper row with its run context, returned by search.
type StoredPaper struct {
	RunID    int64  `json:"run_id" yaml:"run_id"`
	RunQuery string `json:"run_query" yaml:"run_query"`

	types.PaperRecord `yaml:",inline"`

	OverallScore float64 `json:"overall_score" yaml:"overall_score"`
	Included     bool    `json:"included" yaml:"included"`
}

// SearchPapers runs an FTS5 full-text search over stored paper titles
// and abstracts, across all runs. Results are ranked by relevance.
// maxResults zero uses the store default.
func (s *Store) SearchPapers(ctx context.Context, query string, maxResults int) ([]StoredPaper, error) {
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT p.run_id, r.query, p.doi, p.url, p.title, p.authors, p.journal,
			p.date, p.abstract, p.category, p.overall_score, p.included
		 FROM papers_fts
		 JOIN papers p ON p.rowid = papers_fts.rowid
		 JOIN runs r ON r.id = p.run_id
		 WHERE papers_fts MATCH ?
		 ORDER BY papers_fts.rank
		 LIMIT ?`, query, maxResults)
	if err != nil {
		return nil, fmt.Errorf("searching papers: %w", err)
	}
	defer rows.Close()

	var results []StoredPaper
	for rows.Next() {
		var (
			sp          StoredPaper
			authorsJSON sql.NullString
			category    string
			included    int
		)
		if err := rows.Scan(&sp.RunID, &sp.RunQuery, &sp.DOI, &sp.URL, &sp.Title,
			&authorsJSON, &sp.Journal, &sp.Date, &sp.Abstract, &category,
			&sp.OverallScore, &included); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		sp.Category = types.SourceCategory(category)
		sp.Included = included == 1
		if authorsJSON.Valid {
			json.Unmarshal([]byte(authorsJSON.String), &sp.Authors)
		}
		results = append(results, sp)
	}
	return results, rows.Err()
}
