// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/litscope/internal/httputil"
	"github.com/pdiddy/litscope/pkg/types"
)

var europePMCBase = "https://www.ebi.ac.uk/europepmc/webservices/rest/search"

// EuropePMCBackend queries the Europe PMC REST API.
type EuropePMCBackend struct {
	Client *http.Client
	// Email identifies the caller to the API, as Europe PMC asks of
	// automated clients.
	Email string
}

// Name returns the backend identifier.
func (b *EuropePMCBackend) Name() string { return "europepmc" }

// Search runs a core-result search against Europe PMC.
func (b *EuropePMCBackend) Search(ctx context.Context, query Query, cfg types.RetrievalConfig) ([]types.PaperRecord, error) {
	q := buildEuropePMCQuery(query)
	if q == "" {
		return nil, fmt.Errorf("empty Europe PMC query")
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 50
	}

	params := url.Values{
		"query":      {q},
		"format":     {"json"},
		"resultType": {"core"},
		"pageSize":   {fmt.Sprintf("%d", maxResults)},
	}
	if b.Email != "" {
		params.Set("email", b.Email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, europePMCBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating Europe PMC request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Europe PMC request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Europe PMC returned HTTP %d", resp.StatusCode)
	}

	var er europePMCResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("parsing Europe PMC response: %w", err)
	}

	var papers []types.PaperRecord
	for _, result := range er.ResultList.Results {
		papers = append(papers, result.toRecord())
	}
	return papers, nil
}

func buildEuropePMCQuery(q Query) string {
	var parts []string
	if q.Disease != "" {
		parts = append(parts, quoteIfSpaced(q.Disease))
	}
	for _, kw := range q.Keywords {
		parts = append(parts, quoteIfSpaced(kw))
	}
	query := strings.Join(parts, " AND ")
	if query == "" {
		return ""
	}
	if q.YearFrom > 0 || q.YearTo > 0 {
		from, to := q.YearFrom, q.YearTo
		if from <= 0 {
			from = 1900
		}
		if to <= 0 {
			to = 3000
		}
		query += fmt.Sprintf(" AND PUB_YEAR:[%d TO %d]", from, to)
	}
	return query
}

func quoteIfSpaced(s string) string {
	if strings.ContainsRune(s, ' ') {
		return `"` + s + `"`
	}
	return s
}

type europePMCResponse struct {
	ResultList struct {
		Results []europePMCResult `json:"result"`
	} `json:"resultList"`
}

type europePMCResult struct {
	DOI          string `json:"doi"`
	Title        string `json:"title"`
	AuthorString string `json:"authorString"`
	JournalTitle string `json:"journalTitle"`
	JournalInfo  struct {
		Journal struct {
			Title string `json:"title"`
		} `json:"journal"`
	} `json:"journalInfo"`
	PubYear      string `json:"pubYear"`
	AbstractText string `json:"abstractText"`
	FullTextURLs struct {
		URLs []struct {
			URL string `json:"url"`
		} `json:"fullTextUrl"`
	} `json:"fullTextUrlList"`
}

func (r europePMCResult) toRecord() types.PaperRecord {
	rec := types.PaperRecord{
		DOI:      strings.TrimSpace(r.DOI),
		Title:    strings.TrimSpace(r.Title),
		Journal:  strings.TrimSpace(r.JournalTitle),
		Date:     strings.TrimSpace(r.PubYear),
		Abstract: strings.TrimSpace(r.AbstractText),
		Category: types.SourceEuropePMC,
	}
	if rec.Journal == "" {
		rec.Journal = strings.TrimSpace(r.JournalInfo.Journal.Title)
	}
	if len(r.FullTextURLs.URLs) > 0 {
		rec.URL = r.FullTextURLs.URLs[0].URL
	}
	for _, author := range strings.Split(r.AuthorString, ",") {
		author = strings.TrimSpace(strings.TrimSuffix(author, "."))
		if author != "" {
			rec.Authors = append(rec.Authors, author)
		}
	}
	return rec
}
