// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/litscope/internal/httputil"
	"github.com/pdiddy/litscope/pkg/types"
)

// E-utilities endpoints. Declared as vars so tests can substitute an
// httptest server.
var (
	pubmedSearchBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	pubmedFetchBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
)

// PubMedBackend queries NCBI E-utilities in two steps: esearch for PMIDs,
// then efetch for article metadata and abstracts.
type PubMedBackend struct {
	Client *http.Client
	APIKey string
}

// Name returns the backend identifier.
func (b *PubMedBackend) Name() string { return "pubmed" }

// Search runs esearch then efetch and converts the articles to records.
func (b *PubMedBackend) Search(ctx context.Context, query Query, cfg types.RetrievalConfig) ([]types.PaperRecord, error) {
	term := buildPubMedTerm(query)
	if term == "" {
		return nil, fmt.Errorf("empty PubMed query")
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 50
	}

	ids, err := b.search(ctx, term, query, maxResults, cfg)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	return b.fetch(ctx, ids, cfg)
}

func (b *PubMedBackend) search(ctx context.Context, term string, query Query, maxResults int, cfg types.RetrievalConfig) ([]string, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"term":    {term},
		"retmode": {"json"},
		"retmax":  {fmt.Sprintf("%d", maxResults)},
	}
	if query.YearFrom > 0 {
		params.Set("mindate", fmt.Sprintf("%d", query.YearFrom))
		params.Set("datetype", "pdat")
	}
	if query.YearTo > 0 {
		params.Set("maxdate", fmt.Sprintf("%d", query.YearTo))
		params.Set("datetype", "pdat")
	}
	if b.APIKey != "" {
		params.Set("api_key", b.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pubmedSearchBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating esearch request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("PubMed esearch request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("PubMed esearch returned HTTP %d", resp.StatusCode)
	}

	var sr esearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing esearch response: %w", err)
	}
	return sr.ESearchResult.IDList, nil
}

func (b *PubMedBackend) fetch(ctx context.Context, ids []string, cfg types.RetrievalConfig) ([]types.PaperRecord, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(ids, ",")},
		"retmode": {"xml"},
	}
	if b.APIKey != "" {
		params.Set("api_key", b.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pubmedFetchBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating efetch request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("PubMed efetch request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("PubMed efetch returned HTTP %d", resp.StatusCode)
	}

	var set pubmedArticleSet
	if err := xml.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("parsing efetch response: %w", err)
	}

	var papers []types.PaperRecord
	for _, article := range set.Articles {
		papers = append(papers, article.toRecord())
	}
	return papers, nil
}

// buildPubMedTerm combines query fields into an E-utilities term string.
func buildPubMedTerm(q Query) string {
	var parts []string
	if q.Disease != "" {
		parts = append(parts, q.Disease)
	}
	parts = append(parts, q.Keywords...)
	term := strings.Join(parts, " AND ")
	if term != "" && q.ExcludePediatric {
		term += " NOT pediatric[Title]"
	}
	return term
}

// esearch JSON structures.
type esearchResponse struct {
	ESearchResult struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// efetch PubmedArticleSet XML structures, trimmed to the fields we keep.
type pubmedArticleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	PMID     string `xml:"MedlineCitation>PMID"`
	Title    string `xml:"MedlineCitation>Article>ArticleTitle"`
	Journal  string `xml:"MedlineCitation>Article>Journal>Title"`
	Abstract struct {
		Texts []string `xml:"AbstractText"`
	} `xml:"MedlineCitation>Article>Abstract"`
	PubDate struct {
		Year  string `xml:"Year"`
		Month string `xml:"Month"`
		Day   string `xml:"Day"`
	} `xml:"MedlineCitation>Article>Journal>JournalIssue>PubDate"`
	Authors []struct {
		LastName string `xml:"LastName"`
		ForeName string `xml:"ForeName"`
	} `xml:"MedlineCitation>Article>AuthorList>Author"`
	ArticleIDs []struct {
		IDType string `xml:"IdType,attr"`
		Value  string `xml:",chardata"`
	} `xml:"PubmedData>ArticleIdList>ArticleId"`
}

func (a pubmedArticle) toRecord() types.PaperRecord {
	r := types.PaperRecord{
		Title:    strings.TrimSpace(a.Title),
		Journal:  strings.TrimSpace(a.Journal),
		Abstract: strings.TrimSpace(strings.Join(a.Abstract.Texts, " ")),
		Category: types.SourcePubMed,
	}

	for _, id := range a.ArticleIDs {
		if id.IDType == "doi" {
			r.DOI = strings.TrimSpace(id.Value)
			break
		}
	}
	if a.PMID != "" {
		r.URL = "https://pubmed.ncbi.nlm.nih.gov/" + strings.TrimSpace(a.PMID) + "/"
	}

	var dateParts []string
	for _, part := range []string{a.PubDate.Year, a.PubDate.Month, a.PubDate.Day} {
		if part != "" {
			dateParts = append(dateParts, part)
		}
	}
	r.Date = strings.Join(dateParts, " ")

	for _, author := range a.Authors {
		name := strings.TrimSpace(strings.TrimSpace(author.ForeName) + " " + strings.TrimSpace(author.LastName))
		if name != "" {
			r.Authors = append(r.Authors, name)
		}
	}
	return r
}
