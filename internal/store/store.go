// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists analysis runs in SQLite and indexes paper
// titles and abstracts for full-text search.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/litscope/internal/analysis"
	"github.com/pdiddy/litscope/pkg/types"
)

const dbFile = "litscope.db"

// Store manages the run database.
type Store struct {
	db         *sql.DB
	dataDir    string
	maxResults int
}

// NewStore opens or creates the SQLite database at dataDir/litscope.db.
// It creates the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		dataDir:    cfg.DataDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			query TEXT NOT NULL,
			created_at TEXT NOT NULL,
			total_papers INTEGER NOT NULL,
			high_quality_papers INTEGER NOT NULL,
			year_range TEXT,
			executive_summary TEXT,
			recommendations TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS papers (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			paper_id TEXT NOT NULL,
			doi TEXT,
			url TEXT,
			title TEXT,
			authors TEXT,
			journal TEXT,
			date TEXT,
			abstract TEXT,
			category TEXT,
			source_score REAL,
			recency_score REAL,
			relevance_score REAL,
			overall_score REAL,
			included INTEGER NOT NULL,
			rationale TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_run_id ON papers(run_id)`,
		`CREATE TABLE IF NOT EXISTS blind_spots (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			position INTEGER NOT NULL,
			category TEXT NOT NULL,
			gap TEXT NOT NULL,
			severity TEXT NOT NULL,
			details TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS coverage (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			dimension TEXT NOT NULL,
			bucket TEXT NOT NULL,
			percent INTEGER NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='papers_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE papers_fts USING fts5(title, abstract, content=papers, content_rowid=rowid)`,
			`CREATE TRIGGER papers_ai AFTER INSERT ON papers BEGIN
				INSERT INTO papers_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
			END`,
			`CREATE TRIGGER papers_ad AFTER DELETE ON papers BEGIN
				INSERT INTO papers_fts(papers_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
			END`,
			`CREATE TRIGGER papers_au AFTER UPDATE ON papers BEGIN
				INSERT INTO papers_fts(papers_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
				INSERT INTO papers_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// SaveRun persists a pipeline result and returns the new run ID. The
// whole run is written in one transaction.
func (s *Store) SaveRun(ctx context.Context, res analysis.Result) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	recsJSON, _ := json.Marshal(res.Summary.Recommendations)
	generatedAt := res.Summary.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO runs (query, created_at, total_papers, high_quality_papers, year_range, executive_summary, recommendations)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		res.Query, generatedAt.UTC().Format(time.RFC3339),
		res.Summary.Metrics.TotalPapers, res.Summary.Metrics.HighQualityPapers,
		res.Summary.Metrics.YearRange, res.Summary.ExecutiveSummary, string(recsJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run ID: %w", err)
	}

	included := make(map[string]types.PaperRecord, len(res.HighQuality))
	for _, p := range res.HighQuality {
		included[p.ID()] = p
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO papers (run_id, paper_id, doi, url, title, authors, journal, date, abstract, category,
			source_score, recency_score, relevance_score, overall_score, included, rationale)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing paper insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range sortedAssessments(res.Assessments) {
		p := included[a.PaperID]
		authorsJSON, _ := json.Marshal(p.Authors)
		inc := 0
		if a.Included {
			inc = 1
		}
		_, err := stmt.ExecContext(ctx,
			runID, a.PaperID, p.DOI, p.URL, p.Title, string(authorsJSON),
			p.Journal, p.Date, p.Abstract, string(p.Category),
			a.SourceScore, a.RecencyScore, a.RelevanceScore, a.OverallScore,
			inc, a.Rationale,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting paper %s: %w", a.PaperID, err)
		}
	}

	for i, b := range res.BlindSpots {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO blind_spots (run_id, position, category, gap, severity, details)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			runID, i, b.Category, b.Gap, string(b.Severity), b.Details,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting blind spot: %w", err)
		}
	}

	for dim, buckets := range res.Coverage.Dimensions {
		for bucket, percent := range buckets {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO coverage (run_id, dimension, bucket, percent) VALUES (?, ?, ?, ?)`,
				runID, string(dim), bucket, percent,
			)
			if err != nil {
				return 0, fmt.Errorf("inserting coverage row: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// RunInfo summarizes a stored run for listing.
type RunInfo struct {
	ID                int64     `json:"id" yaml:"id"`
	Query             string    `json:"query" yaml:"query"`
	CreatedAt         time.Time `json:"created_at" yaml:"created_at"`
	TotalPapers       int       `json:"total_papers" yaml:"total_papers"`
	HighQualityPapers int       `json:"high_quality_papers" yaml:"high_quality_papers"`
	BlindSpots        int       `json:"blind_spots" yaml:"blind_spots"`
}

// ListRuns returns stored runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.query, r.created_at, r.total_papers, r.high_quality_papers,
			(SELECT count(*) FROM blind_spots b WHERE b.run_id = r.id)
		 FROM runs r ORDER BY r.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var (
			info      RunInfo
			createdAt string
		)
		if err := rows.Scan(&info.ID, &info.Query, &createdAt,
			&info.TotalPapers, &info.HighQualityPapers, &info.BlindSpots); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if t, parseErr := time.Parse(time.RFC3339, createdAt); parseErr == nil {
			info.CreatedAt = t
		}
		runs = append(runs, info)
	}
	return runs, rows.Err()
}

// LoadRun reconstructs a full pipeline result from the database.
func (s *Store) LoadRun(ctx context.Context, runID int64) (analysis.Result, error) {
	var res analysis.Result

	var (
		createdAt string
		recsJSON  sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT query, created_at, total_papers, high_quality_papers, year_range, executive_summary, recommendations
		 FROM runs WHERE id = ?`, runID,
	).Scan(&res.Query, &createdAt, &res.Summary.Metrics.TotalPapers,
		&res.Summary.Metrics.HighQualityPapers, &res.Summary.Metrics.YearRange,
		&res.Summary.ExecutiveSummary, &recsJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return res, fmt.Errorf("run %d not found", runID)
		}
		return res, fmt.Errorf("loading run: %w", err)
	}
	if t, parseErr := time.Parse(time.RFC3339, createdAt); parseErr == nil {
		res.Summary.GeneratedAt = t
	}
	if recsJSON.Valid {
		json.Unmarshal([]byte(recsJSON.String), &res.Summary.Recommendations)
	}

	if err := s.loadPapers(ctx, runID, &res); err != nil {
		return res, err
	}
	if err := s.loadBlindSpots(ctx, runID, &res); err != nil {
		return res, err
	}
	if err := s.loadCoverage(ctx, runID, &res); err != nil {
		return res, err
	}

	topN := len(res.BlindSpots)
	if topN > 5 {
		topN = 5
	}
	res.Summary.TopBlindSpots = res.BlindSpots[:topN]

	return res, nil
}

func (s *Store) loadPapers(ctx context.Context, runID int64, res *analysis.Result) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT paper_id, doi, url, title, authors, journal, date, abstract, category,
			source_score, recency_score, relevance_score, overall_score, included, rationale
		 FROM papers WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return fmt.Errorf("loading papers: %w", err)
	}
	defer rows.Close()

	res.Assessments = make(map[string]types.QualityAssessment)
	for rows.Next() {
		var (
			a           types.QualityAssessment
			p           types.PaperRecord
			authorsJSON sql.NullString
			category    string
			included    int
		)
		if err := rows.Scan(&a.PaperID, &p.DOI, &p.URL, &p.Title, &authorsJSON,
			&p.Journal, &p.Date, &p.Abstract, &category,
			&a.SourceScore, &a.RecencyScore, &a.RelevanceScore, &a.OverallScore,
			&included, &a.Rationale); err != nil {
			return fmt.Errorf("scanning paper: %w", err)
		}
		a.Included = included == 1
		res.Assessments[a.PaperID] = a

		if a.Included {
			p.Category = types.SourceCategory(category)
			if authorsJSON.Valid {
				json.Unmarshal([]byte(authorsJSON.String), &p.Authors)
			}
			res.HighQuality = append(res.HighQuality, p)
		}
	}
	return rows.Err()
}

func (s *Store) loadBlindSpots(ctx context.Context, runID int64, res *analysis.Result) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, gap, severity, details FROM blind_spots
		 WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return fmt.Errorf("loading blind spots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			b        types.BlindSpot
			severity string
		)
		if err := rows.Scan(&b.Category, &b.Gap, &severity, &b.Details); err != nil {
			return fmt.Errorf("scanning blind spot: %w", err)
		}
		b.Severity = types.Severity(severity)
		res.BlindSpots = append(res.BlindSpots, b)
	}
	return rows.Err()
}

func (s *Store) loadCoverage(ctx context.Context, runID int64, res *analysis.Result) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT dimension, bucket, percent FROM coverage WHERE run_id = ?`, runID)
	if err != nil {
		return fmt.Errorf("loading coverage: %w", err)
	}
	defer rows.Close()

	res.Coverage.TotalPapers = res.Summary.Metrics.HighQualityPapers
	res.Coverage.Dimensions = make(map[types.Dimension]map[string]int)
	for rows.Next() {
		var (
			dimension string
			bucket    string
			percent   int
		)
		if err := rows.Scan(&dimension, &bucket, &percent); err != nil {
			return fmt.Errorf("scanning coverage row: %w", err)
		}
		dim := types.Dimension(dimension)
		if res.Coverage.Dimensions[dim] == nil {
			res.Coverage.Dimensions[dim] = make(map[string]int)
		}
		res.Coverage.Dimensions[dim][bucket] = percent
	}
	return rows.Err()
}
