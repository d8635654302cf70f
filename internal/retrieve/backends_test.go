package retrieve

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pdiddy/litscope/pkg/types"
)

// --- PubMed backend ---

const samplePubMedSearchJSON = `{
  "esearchresult": {
    "count": "2",
    "idlist": ["38912345", "37654321"]
  }
}`

const samplePubMedFetchXML = `<?xml version="1.0" encoding="UTF-8"?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>38912345</PMID>
      <Article>
        <Journal>
          <JournalIssue>
            <PubDate><Year>2024</Year><Month>Mar</Month></PubDate>
          </JournalIssue>
          <Title>The Lancet</Title>
        </Journal>
        <ArticleTitle>Hypertension treatment outcomes in older adults</ArticleTitle>
        <Abstract>
          <AbstractText>We studied treatment outcomes.</AbstractText>
          <AbstractText>Results were significant.</AbstractText>
        </Abstract>
        <AuthorList>
          <Author><LastName>Smith</LastName><ForeName>Jane</ForeName></Author>
          <Author><LastName>Jones</LastName><ForeName>Alan</ForeName></Author>
        </AuthorList>
      </Article>
    </MedlineCitation>
    <PubmedData>
      <ArticleIdList>
        <ArticleId IdType="pubmed">38912345</ArticleId>
        <ArticleId IdType="doi">10.1016/s0140-6736</ArticleId>
      </ArticleIdList>
    </PubmedData>
  </PubmedArticle>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>37654321</PMID>
      <Article>
        <Journal>
          <JournalIssue>
            <PubDate><Year>2023</Year></PubDate>
          </JournalIssue>
          <Title>BMJ</Title>
        </Journal>
        <ArticleTitle>Asthma management guidelines</ArticleTitle>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
</PubmedArticleSet>`

func TestPubMedBackendSearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "esearch"):
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, samplePubMedSearchJSON)
		case strings.Contains(r.URL.Path, "efetch"):
			if got := r.URL.Query().Get("id"); got != "38912345,37654321" {
				t.Errorf("efetch id param = %q", got)
			}
			w.Header().Set("Content-Type", "application/xml")
			fmt.Fprint(w, samplePubMedFetchXML)
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))
	defer ts.Close()

	oldSearch, oldFetch := pubmedSearchBase, pubmedFetchBase
	pubmedSearchBase = ts.URL + "/esearch.fcgi"
	pubmedFetchBase = ts.URL + "/efetch.fcgi"
	defer func() { pubmedSearchBase, pubmedFetchBase = oldSearch, oldFetch }()

	b := &PubMedBackend{Client: ts.Client()}
	papers, err := b.Search(context.Background(), Query{Disease: "hypertension"}, testCfg())
	if err != nil {
		t.Fatalf("PubMedBackend.Search: %v", err)
	}
	if len(papers) != 2 {
		t.Fatalf("len(papers) = %d, want 2", len(papers))
	}

	p := papers[0]
	if p.DOI != "10.1016/s0140-6736" {
		t.Errorf("DOI = %q", p.DOI)
	}
	if p.Title != "Hypertension treatment outcomes in older adults" {
		t.Errorf("Title = %q", p.Title)
	}
	if p.Journal != "The Lancet" {
		t.Errorf("Journal = %q", p.Journal)
	}
	if p.Date != "2024 Mar" {
		t.Errorf("Date = %q, want %q", p.Date, "2024 Mar")
	}
	if p.Year() != 2024 {
		t.Errorf("Year() = %d, want 2024", p.Year())
	}
	if p.Abstract != "We studied treatment outcomes. Results were significant." {
		t.Errorf("Abstract = %q", p.Abstract)
	}
	if len(p.Authors) != 2 || p.Authors[0] != "Jane Smith" {
		t.Errorf("Authors = %v", p.Authors)
	}
	if p.Category != types.SourcePubMed {
		t.Errorf("Category = %q", p.Category)
	}
	if !strings.Contains(p.URL, "38912345") {
		t.Errorf("URL = %q, should point at the PMID", p.URL)
	}

	// Second article has no DOI: the PMID URL still identifies it.
	if papers[1].DOI != "" {
		t.Errorf("DOI = %q, want empty", papers[1].DOI)
	}
	if papers[1].ID() == "" {
		t.Error("ID() should fall back to the URL")
	}
}

func TestPubMedBackendEmptyIDList(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "efetch") {
			t.Error("efetch should not be called when esearch returns no IDs")
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"esearchresult": {"count": "0", "idlist": []}}`)
	}))
	defer ts.Close()

	old := pubmedSearchBase
	pubmedSearchBase = ts.URL + "/esearch.fcgi"
	defer func() { pubmedSearchBase = old }()

	b := &PubMedBackend{Client: ts.Client()}
	papers, err := b.Search(context.Background(), Query{Disease: "nonexistent"}, testCfg())
	if err != nil {
		t.Fatalf("PubMedBackend.Search: %v", err)
	}
	if len(papers) != 0 {
		t.Errorf("len(papers) = %d, want 0", len(papers))
	}
}

func TestBuildPubMedTerm(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{"disease only", Query{Disease: "hypertension"}, "hypertension"},
		{"with keywords", Query{Disease: "asthma", Keywords: []string{"inhaler"}}, "asthma AND inhaler"},
		{"exclude pediatric", Query{Disease: "asthma", ExcludePediatric: true}, "asthma NOT pediatric[Title]"},
		{"empty", Query{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildPubMedTerm(tt.query); got != tt.want {
				t.Errorf("buildPubMedTerm = %q, want %q", got, tt.want)
			}
		})
	}
}

// --- Europe PMC backend ---

const sampleEuropePMCJSON = `{
  "resultList": {
    "result": [
      {
        "doi": "10.1136/bmj.12345",
        "title": "Diabetes outcomes in South Asian populations",
        "authorString": "Patel R, Khan S.",
        "journalTitle": "BMJ",
        "pubYear": "2022",
        "abstractText": "A cohort study of diabetes outcomes.",
        "fullTextUrlList": {
          "fullTextUrl": [{"url": "https://europepmc.org/article/MED/12345"}]
        }
      },
      {
        "title": "Untitled preprint",
        "pubYear": "2021",
        "journalInfo": {"journal": {"title": "medRxiv"}}
      }
    ]
  }
}`

func TestEuropePMCBackendSearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("resultType"); got != "core" {
			t.Errorf("resultType = %q, want core", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleEuropePMCJSON)
	}))
	defer ts.Close()

	old := europePMCBase
	europePMCBase = ts.URL
	defer func() { europePMCBase = old }()

	b := &EuropePMCBackend{Client: ts.Client(), Email: "analyst@example.org"}
	papers, err := b.Search(context.Background(), Query{Disease: "diabetes"}, testCfg())
	if err != nil {
		t.Fatalf("EuropePMCBackend.Search: %v", err)
	}
	if len(papers) != 2 {
		t.Fatalf("len(papers) = %d, want 2", len(papers))
	}

	p := papers[0]
	if p.DOI != "10.1136/bmj.12345" {
		t.Errorf("DOI = %q", p.DOI)
	}
	if p.Journal != "BMJ" {
		t.Errorf("Journal = %q", p.Journal)
	}
	if len(p.Authors) != 2 || p.Authors[0] != "Patel R" {
		t.Errorf("Authors = %v", p.Authors)
	}
	if p.Category != types.SourceEuropePMC {
		t.Errorf("Category = %q", p.Category)
	}
	if p.URL != "https://europepmc.org/article/MED/12345" {
		t.Errorf("URL = %q", p.URL)
	}

	// Journal falls back to journalInfo when journalTitle is absent.
	if papers[1].Journal != "medRxiv" {
		t.Errorf("Journal = %q, want fallback from journalInfo", papers[1].Journal)
	}
}

func TestBuildEuropePMCQuery(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{"disease", Query{Disease: "diabetes"}, "diabetes"},
		{"spaced disease is quoted", Query{Disease: "type 2 diabetes"}, `"type 2 diabetes"`},
		{"with year range", Query{Disease: "asthma", YearFrom: 2018, YearTo: 2023}, "asthma AND PUB_YEAR:[2018 TO 2023]"},
		{"open-ended from", Query{Disease: "asthma", YearFrom: 2018}, "asthma AND PUB_YEAR:[2018 TO 3000]"},
		{"empty", Query{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildEuropePMCQuery(tt.query); got != tt.want {
				t.Errorf("buildEuropePMCQuery = %q, want %q", got, tt.want)
			}
		})
	}
}

// --- arXiv backend ---

const sampleArxivXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2301.07041v1</id>
    <title>Deep learning for hypertension risk prediction</title>
    <summary>We propose a model for hypertension risk.</summary>
    <published>2023-01-17T17:57:34Z</published>
    <author><name>Ada Lovelace</name></author>
    <author><name>Alan Turing</name></author>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2210.00001v2</id>
    <title>Survival analysis methods</title>
    <summary>A survey of survival analysis.</summary>
    <published>2022-10-01T00:00:00Z</published>
    <author><name>Grace Hopper</name></author>
  </entry>
</feed>`

func TestArxivBackendSearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, sampleArxivXML)
	}))
	defer ts.Close()

	old := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = old }()

	b := &ArxivBackend{Client: ts.Client()}
	papers, err := b.Search(context.Background(), Query{Disease: "hypertension"}, testCfg())
	if err != nil {
		t.Fatalf("ArxivBackend.Search: %v", err)
	}
	if len(papers) != 2 {
		t.Fatalf("len(papers) = %d, want 2", len(papers))
	}

	p := papers[0]
	if p.URL != "https://arxiv.org/abs/2301.07041" {
		t.Errorf("URL = %q", p.URL)
	}
	if p.Title != "Deep learning for hypertension risk prediction" {
		t.Errorf("Title = %q", p.Title)
	}
	if len(p.Authors) != 2 {
		t.Errorf("len(Authors) = %d, want 2", len(p.Authors))
	}
	if p.Category != types.SourceArxiv {
		t.Errorf("Category = %q", p.Category)
	}
	if p.Date != "2023-01-17" {
		t.Errorf("Date = %q, want %q", p.Date, "2023-01-17")
	}
	if p.Year() != 2023 {
		t.Errorf("Year() = %d, want 2023", p.Year())
	}
}

func TestExtractArxivID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"http://arxiv.org/abs/2301.07041v1", "2301.07041"},
		{"http://arxiv.org/abs/1706.03762v5", "1706.03762"},
		{"http://arxiv.org/abs/2301.12345", "2301.12345"},
		{"https://arxiv.org/abs/2301.07041v2", "2301.07041"},
		{"not a url", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := extractArxivID(tt.input)
			if got != tt.want {
				t.Errorf("extractArxivID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBuildArxivQuery(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{"disease", Query{Disease: "hypertension risk"}, "all:hypertension+risk"},
		{"keywords", Query{Keywords: []string{"survival analysis", "cohort"}}, "all:survival+analysis+AND+all:cohort"},
		{"combined", Query{Disease: "asthma", Keywords: []string{"inhaler"}}, "all:asthma+AND+all:inhaler"},
		{"empty", Query{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildArxivQuery(tt.query); got != tt.want {
				t.Errorf("buildArxivQuery = %q, want %q", got, tt.want)
			}
		})
	}
}
