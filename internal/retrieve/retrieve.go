// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieve queries literature databases and returns unified,
// deduplicated paper records for the analysis pipeline.
package retrieve

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/pdiddy/litscope/pkg/types"
)

// Backend searches a single literature database. Each backend (PubMed,
// Europe PMC, arXiv) implements this interface so they stay
// interchangeable behind the fan-out.
type Backend interface {
	Name() string
	Search(ctx context.Context, query Query, cfg types.RetrievalConfig) ([]types.PaperRecord, error)
}

// Query holds the retrieval parameters. Year bounds and the pediatric
// exclusion are enforced here, in retrieval; the analysis core never
// filters on them.
type Query struct {
	// Disease is the free-text disease or research question.
	Disease string

	// Keywords are additional terms ANDed into the search.
	Keywords []string

	// YearFrom and YearTo bound the publication year, inclusive. Zero
	// means unbounded.
	YearFrom int
	YearTo   int

	// ExcludePediatric drops records whose text reads as pediatric-only.
	ExcludePediatric bool
}

// IsEmpty reports whether the query contains no searchable terms.
func (q Query) IsEmpty() bool {
	return strings.TrimSpace(q.Disease) == "" && len(q.Keywords) == 0
}

// Terms returns the combined search terms for backend query strings.
func (q Query) Terms() string {
	parts := []string{}
	if q.Disease != "" {
		parts = append(parts, q.Disease)
	}
	parts = append(parts, q.Keywords...)
	return strings.Join(parts, " ")
}

// Output holds the merged records and retrieval statistics.
type Output struct {
	Papers        []types.PaperRecord
	DupsRemoved   int
	BackendErrors []string
}

// Retrieve fans the query out to all backends concurrently, merges and
// deduplicates the records, applies the query's year bounds and
// pediatric exclusion, and caps the result at cfg.MaxResults. A failing
// backend degrades to a warning; retrieval fails only when the query is
// empty or no backend is configured.
func Retrieve(ctx context.Context, query Query, backends []Backend, cfg types.RetrievalConfig, w io.Writer) (Output, error) {
	if query.IsEmpty() {
		return Output{}, fmt.Errorf("query is empty: provide a disease or research question")
	}
	if len(backends) == 0 {
		return Output{}, fmt.Errorf("no retrieval backends configured")
	}

	type backendResult struct {
		papers []types.PaperRecord
		err    error
		name   string
	}

	ch := make(chan backendResult, len(backends))
	var wg sync.WaitGroup

	for i, b := range backends {
		if i > 0 && cfg.InterBackendDelay > 0 {
			time.Sleep(cfg.InterBackendDelay)
		}
		wg.Add(1)
		go func(b Backend) {
			defer wg.Done()
			papers, err := b.Search(ctx, query, cfg)
			ch <- backendResult{papers: papers, err: err, name: b.Name()}
		}(b)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	var all []types.PaperRecord
	var backendErrors []string
	for br := range ch {
		if br.err != nil {
			msg := fmt.Sprintf("%s: %v", br.name, br.err)
			backendErrors = append(backendErrors, msg)
			fmt.Fprintf(w, "warning: backend %s failed: %v\n", br.name, br.err)
			continue
		}
		all = append(all, br.papers...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return categoryRank(all[i].Category) < categoryRank(all[j].Category)
	})

	deduped, removed := deduplicate(all)
	filtered := applyFilters(deduped, query)

	if cfg.MaxResults > 0 && len(filtered) > cfg.MaxResults {
		filtered = filtered[:cfg.MaxResults]
	}

	return Output{
		Papers:        filtered,
		DupsRemoved:   removed,
		BackendErrors: backendErrors,
	}, nil
}

// categoryRank orders merged results so peer-reviewed records survive
// dedup as the canonical copy.
func categoryRank(c types.SourceCategory) int {
	switch c {
	case types.SourcePubMed:
		return 0
	case types.SourceEuropePMC:
		return 1
	case types.SourceArxiv:
		return 2
	default:
		return 3
	}
}

// deduplicate merges records that share a DOI or normalized title.
func deduplicate(papers []types.PaperRecord) ([]types.PaperRecord, int) {
	seen := make(map[string]int) // dedup key → index in deduped
	var deduped []types.PaperRecord
	removed := 0

	for _, p := range papers {
		key := dedupKey(p)
		if idx, ok := seen[key]; ok {
			mergeInto(&deduped[idx], p)
			removed++
			continue
		}

		// Also check by normalized title.
		titleKey := "title:" + normalizeTitle(p.Title)
		if titleKey != "title:" {
			if idx, ok := seen[titleKey]; ok {
				mergeInto(&deduped[idx], p)
				removed++
				continue
			}
		}

		idx := len(deduped)
		deduped = append(deduped, p)
		if key != "" {
			seen[key] = idx
		}
		if titleKey != "title:" {
			seen[titleKey] = idx
		}
	}
	return deduped, removed
}

// dedupKey returns a key for DOI-based dedup.
func dedupKey(p types.PaperRecord) string {
	if doi := strings.ToLower(strings.TrimSpace(p.DOI)); doi != "" {
		return "doi:" + doi
	}
	return ""
}

// mergeInto fills empty fields of dst from src. The canonical copy (dst)
// was picked by category rank, so only gaps are filled.
func mergeInto(dst *types.PaperRecord, src types.PaperRecord) {
	if dst.DOI == "" && src.DOI != "" {
		dst.DOI = src.DOI
	}
	if dst.URL == "" && src.URL != "" {
		dst.URL = src.URL
	}
	if dst.Title == "" && src.Title != "" {
		dst.Title = src.Title
	}
	if len(dst.Authors) == 0 && len(src.Authors) > 0 {
		dst.Authors = src.Authors
	}
	if dst.Journal == "" && src.Journal != "" {
		dst.Journal = src.Journal
	}
	if dst.Date == "" && src.Date != "" {
		dst.Date = src.Date
	}
	if dst.Abstract == "" && src.Abstract != "" {
		dst.Abstract = src.Abstract
	}
}

// normalizeTitle returns a lowercased, punctuation-stripped version of the title.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// applyFilters enforces the query's year bounds and pediatric exclusion
// on the merged set, covering backends without server-side filters.
func applyFilters(papers []types.PaperRecord, query Query) []types.PaperRecord {
	var out []types.PaperRecord
	for _, p := range papers {
		year := p.Year()
		if query.YearFrom > 0 && year != 0 && year < query.YearFrom {
			continue
		}
		if query.YearTo > 0 && year != 0 && year > query.YearTo {
			continue
		}
		if query.ExcludePediatric && isPediatricOnly(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// pediatricMarkers flag titles that read as pediatric-focused.
var pediatricMarkers = []string{"pediatric", "paediatric", "children", "infant", "adolescent"}

// isPediatricOnly reports whether the title centers a pediatric
// population. Only the title is checked: abstracts routinely mention
// children in passing without the study being pediatric.
func isPediatricOnly(p types.PaperRecord) bool {
	title := strings.ToLower(p.Title)
	for _, m := range pediatricMarkers {
		if strings.Contains(title, m) {
			return true
		}
	}
	return false
}

// FormatTable writes the retrieved papers as a human-readable table to w.
func FormatTable(out Output, w io.Writer) {
	if len(out.Papers) == 0 {
		fmt.Fprintln(w, "No papers found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-24s  %-4s  %s\n",
		"Rank", "Title", "Journal", "Year", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 108))

	for i, p := range out.Papers {
		title := truncate(p.Title, 60)
		year := ""
		if y := p.Year(); y != 0 {
			year = fmt.Sprintf("%d", y)
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-24s  %-4s  %s\n",
			i+1, title, truncate(p.Journal, 24), year, p.Category)
	}

	fmt.Fprintf(w, "\n%d papers", len(out.Papers))
	if out.DupsRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", out.DupsRemoved)
	}
	fmt.Fprintln(w)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
