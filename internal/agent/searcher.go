package agent

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/adhikar-ai/adhikar/config"
	"github.com/adhikar-ai/adhikar/internal/telemetry"
	"github.com/adhikar-ai/adhikar/models"
	"github.com/adhikar-ai/adhikar/tools/web_fetch"
	"github.com/adhikar-ai/adhikar/tools/web_search"
	"github.com/adhikar-ai/adhikar/utils"
	"golang.org/x/sync/errgroup"
)

// Searcher runs the analyzer's queries against the search backend and fetches
// content for a bounded, priority-ordered subset of the results.
type Searcher struct {
	search    web_search.WebSearcher
	fetcher   web_fetch.WebFetcher
	corpus    *Corpus
	cfg       config.Config
	telemetry *telemetry.Telemetry
	logger    *log.Logger
}

func NewSearcher(search web_search.WebSearcher, fetcher web_fetch.WebFetcher, corpus *Corpus, cfg config.Config, tele *telemetry.Telemetry, logger *log.Logger) *Searcher {
	if logger == nil {
		logger = log.New(log.Writer(), "[SEARCHER] ", log.LstdFlags)
	}
	return &Searcher{search: search, fetcher: fetcher, corpus: corpus, cfg: cfg, telemetry: tele, logger: logger}
}

// Search runs every query and merges results, deduplicating by URL with
// first-seen order preserved. A failing query is logged and skipped; the
// batch never aborts.
func (s *Searcher) Search(ctx context.Context, queries []string) []models.SearchResult {
	var all []models.SearchResult
	seen := make(map[string]bool)

	for _, query := range queries {
		results, err := s.search.Discover(ctx, query, s.cfg.Search.MaxResultsPerQuery)
		if err != nil {
			s.logger.Printf("search error for query %q: %v", query, err)
			s.telemetry.RecordSearchFailure()
			continue
		}
		for _, r := range results {
			if r.URL == "" || seen[r.URL] {
				continue
			}
			seen[r.URL] = true
			source := r.Source
			if source == "" {
				source = "web"
			}
			all = append(all, models.SearchResult{
				Title:   r.Title,
				URL:     r.URL,
				Snippet: r.Snippet,
				Source:  source,
			})
		}
	}
	return all
}

// selectResults partitions results by priority domain and takes up to
// maxPrioritized from each partition, prioritized first, bounding the total
// fetch count.
func (s *Searcher) selectResults(results []models.SearchResult, priorityDomains []string) []models.SearchResult {
	maxFetches := s.cfg.Fetch.MaxFetches
	maxPrioritized := s.cfg.Fetch.MaxPrioritized

	if len(priorityDomains) == 0 {
		if len(results) > maxFetches {
			return results[:maxFetches]
		}
		return results
	}

	var prioritized, others []models.SearchResult
	for _, r := range results {
		matched := false
		for _, d := range priorityDomains {
			if strings.Contains(r.URL, d) {
				matched = true
				break
			}
		}
		if matched {
			prioritized = append(prioritized, r)
		} else {
			others = append(others, r)
		}
	}
	if len(prioritized) > maxPrioritized {
		prioritized = prioritized[:maxPrioritized]
	}
	if len(others) > maxPrioritized {
		others = others[:maxPrioritized]
	}
	selected := append(prioritized, others...)
	if len(selected) > maxFetches {
		selected = selected[:maxFetches]
	}
	return selected
}

// FetchContent fetches main text for the selected results and concatenates
// structured blocks into one bounded context string. Fetches run concurrently
// with a ceiling matching the selection bound; a failed or timed-out fetch
// contributes an empty block and leaves the others intact. Pages already
// fetched this session are served from the corpus instead of the network.
func (s *Searcher) FetchContent(ctx context.Context, sessionID string, results []models.SearchResult, priorityDomains []string) string {
	selected := s.selectResults(results, priorityDomains)
	blocks := make([]string, len(selected))

	limit := s.cfg.Fetch.MaxFetches
	if limit <= 0 {
		limit = len(selected) + 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, result := range selected {
		i, result := i, result
		g.Go(func() error {
			text := s.fetchOne(gctx, sessionID, result)
			if text == "" {
				s.telemetry.RecordFetchFailure()
				return nil
			}
			snippet := utils.Truncate(text, s.cfg.Fetch.MaxChars)
			blocks[i] = fmt.Sprintf("\nSource: %s\nTitle: %s\nContent: %s\n---\n", result.URL, result.Title, snippet)
			return nil
		})
	}
	_ = g.Wait()

	return strings.Join(blocks, "")
}

func (s *Searcher) fetchOne(ctx context.Context, sessionID string, result models.SearchResult) string {
	if s.corpus != nil && sessionID != "" {
		if doc, ok := s.corpus.Get(sessionID, result.URL); ok {
			return doc.Text
		}
	}
	fetched, err := s.fetcher.Exec(ctx, result.URL)
	if err != nil || fetched.Text == "" {
		return ""
	}
	if s.corpus != nil && sessionID != "" {
		if err := s.corpus.Add(sessionID, Doc{URL: result.URL, Title: result.Title, Text: fetched.Text, FetchedAt: time.Now()}); err != nil {
			s.logger.Printf("corpus index error for %s: %v", result.URL, err)
		}
	}
	return fetched.Text
}

// RecallContext pulls previously fetched pages relevant to the query back
// into context blocks for follow-up turns.
func (s *Searcher) RecallContext(sessionID, query string, k int) string {
	if s.corpus == nil || sessionID == "" {
		return ""
	}
	var b strings.Builder
	for _, doc := range s.corpus.TopK(sessionID, query, k) {
		snippet := utils.Truncate(doc.Text, s.cfg.Fetch.MaxChars)
		fmt.Fprintf(&b, "\nSource: %s\nTitle: %s\nContent: %s\n---\n", doc.URL, doc.Title, snippet)
	}
	return b.String()
}
