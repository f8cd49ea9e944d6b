package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/adhikar-ai/adhikar/config"
	"github.com/adhikar-ai/adhikar/internal/telemetry"
	"github.com/adhikar-ai/adhikar/models"
	fetchmodels "github.com/adhikar-ai/adhikar/tools/web_fetch/models"
	searchmodels "github.com/adhikar-ai/adhikar/tools/web_search/models"
)

type fakeSearch struct {
	results map[string][]searchmodels.Result
	fail    map[string]bool
	calls   int
}

func (f *fakeSearch) Discover(ctx context.Context, q string, k int) ([]searchmodels.Result, error) {
	f.calls++
	if f.fail[q] {
		return nil, errors.New("backend unreachable")
	}
	return f.results[q], nil
}

type fakeFetch struct {
	mu    sync.Mutex
	texts map[string]string
	calls map[string]int
}

func (f *fakeFetch) Exec(ctx context.Context, url string) (fetchmodels.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[url]++
	return fetchmodels.Result{URL: url, Text: f.texts[url], Status: 200}, nil
}

func testConfig() config.Config {
	var cfg config.Config
	cfg.Search.MaxResultsPerQuery = 10
	cfg.Fetch.MaxChars = 2000
	cfg.Fetch.MaxFetches = 8
	cfg.Fetch.MaxPrioritized = 4
	return cfg
}

func TestSearchDeduplicatesByURL(t *testing.T) {
	search := &fakeSearch{results: map[string][]searchmodels.Result{
		"q1": {
			{Title: "a", URL: "https://x.example/a"},
			{Title: "b", URL: "https://x.example/b"},
		},
		"q2": {
			{Title: "b again", URL: "https://x.example/b"},
			{Title: "c", URL: "https://x.example/c"},
		},
	}}
	s := NewSearcher(search, &fakeFetch{}, nil, testConfig(), telemetry.New(), nil)

	results := s.Search(context.Background(), []string{"q1", "q2"})
	if len(results) != 3 {
		t.Fatalf("expected 3 deduplicated results, got %d", len(results))
	}
	wantOrder := []string{"https://x.example/a", "https://x.example/b", "https://x.example/c"}
	for i, want := range wantOrder {
		if results[i].URL != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, results[i].URL)
		}
	}
	if results[1].Title != "b" {
		t.Fatalf("first-seen should win, got title %q", results[1].Title)
	}
}

func TestSearchSkipsFailingQuery(t *testing.T) {
	search := &fakeSearch{
		results: map[string][]searchmodels.Result{
			"good": {{Title: "a", URL: "https://x.example/a"}},
		},
		fail: map[string]bool{"bad": true},
	}
	s := NewSearcher(search, &fakeFetch{}, nil, testConfig(), telemetry.New(), nil)

	results := s.Search(context.Background(), []string{"bad", "good"})
	if len(results) != 1 || results[0].URL != "https://x.example/a" {
		t.Fatalf("expected the failing query to be skipped, got %v", results)
	}
	if search.calls != 2 {
		t.Fatalf("expected both queries attempted, got %d calls", search.calls)
	}
}

type fetchInput struct {
	url string
}

func toSearchResults(in []fetchInput) []models.SearchResult {
	out := make([]models.SearchResult, len(in))
	for i, f := range in {
		out[i] = models.SearchResult{Title: f.url, URL: f.url, Source: "web"}
	}
	return out
}

func TestFetchContentSelectionBounds(t *testing.T) {
	texts := make(map[string]string)
	var results []fetchInput
	for i := 0; i < 6; i++ {
		url := fmt.Sprintf("https://indiankanoon.org/doc/%d", i)
		texts[url] = fmt.Sprintf("judgment %d", i)
		results = append(results, fetchInput{url: url})
	}
	for i := 0; i < 6; i++ {
		url := fmt.Sprintf("https://blog.example/post/%d", i)
		texts[url] = fmt.Sprintf("post %d", i)
		results = append(results, fetchInput{url: url})
	}

	fetcher := &fakeFetch{texts: texts}
	s := NewSearcher(&fakeSearch{}, fetcher, nil, testConfig(), telemetry.New(), nil)

	blob := s.FetchContent(context.Background(), "", toSearchResults(results), []string{"indiankanoon.org"})

	total := 0
	nonPrioritized := 0
	for url := range texts {
		if strings.Contains(blob, "Source: "+url+"\n") {
			total++
			if strings.Contains(url, "blog.example") {
				nonPrioritized++
			}
		}
	}
	if total > 8 {
		t.Fatalf("expected at most 8 fetched blocks, got %d", total)
	}
	if nonPrioritized > 4 {
		t.Fatalf("expected at most 4 non-prioritized blocks, got %d", nonPrioritized)
	}
	// prioritized results come first in the blob
	firstOther := strings.Index(blob, "blog.example")
	lastPriority := strings.LastIndex(blob, "indiankanoon.org")
	if firstOther != -1 && lastPriority != -1 && firstOther < lastPriority {
		t.Fatalf("prioritized blocks should precede the rest")
	}
}

func TestFetchContentFailureLeavesOthersIntact(t *testing.T) {
	fetcher := &fakeFetch{texts: map[string]string{
		"https://x.example/a": "alpha content",
		"https://x.example/b": "", // empty extraction
		"https://x.example/c": "gamma content",
	}}
	s := NewSearcher(&fakeSearch{}, fetcher, nil, testConfig(), telemetry.New(), nil)

	results := toSearchResults([]fetchInput{
		{url: "https://x.example/a"}, {url: "https://x.example/b"}, {url: "https://x.example/c"},
	})
	blob := s.FetchContent(context.Background(), "", results, nil)

	if !strings.Contains(blob, "alpha content") || !strings.Contains(blob, "gamma content") {
		t.Fatalf("successful fetches missing from context: %q", blob)
	}
	if strings.Contains(blob, "https://x.example/b") {
		t.Fatalf("failed fetch should contribute an empty block")
	}
}

func TestFetchContentTruncatesToBudget(t *testing.T) {
	long := strings.Repeat("z", 5000)
	fetcher := &fakeFetch{texts: map[string]string{"https://host.test/a": long}}
	s := NewSearcher(&fakeSearch{}, fetcher, nil, testConfig(), telemetry.New(), nil)

	blob := s.FetchContent(context.Background(), "", toSearchResults([]fetchInput{{url: "https://host.test/a"}}), nil)
	if strings.Count(blob, "z") != 2000 {
		t.Fatalf("expected content truncated to 2000 chars, got %d", strings.Count(blob, "z"))
	}
}

func TestFetchContentTruncationKeepsValidUTF8(t *testing.T) {
	// 1000 Devanagari runes are 3000 bytes; the 2000-byte budget lands
	// mid-rune unless truncation backs up to a rune boundary.
	long := strings.Repeat("क", 1000)
	fetcher := &fakeFetch{texts: map[string]string{"https://host.test/a": long}}
	s := NewSearcher(&fakeSearch{}, fetcher, nil, testConfig(), telemetry.New(), nil)

	blob := s.FetchContent(context.Background(), "", toSearchResults([]fetchInput{{url: "https://host.test/a"}}), nil)
	if !utf8.ValidString(blob) {
		t.Fatalf("context must stay valid UTF-8 after truncation")
	}
	if strings.Count(blob, "क") >= 1000 {
		t.Fatalf("expected content cut by the budget")
	}
}

func TestFetchContentServesRepeatsFromCorpus(t *testing.T) {
	fetcher := &fakeFetch{texts: map[string]string{"https://x.example/a": "alpha content"}}
	s := NewSearcher(&fakeSearch{}, fetcher, NewCorpus(), testConfig(), telemetry.New(), nil)

	results := toSearchResults([]fetchInput{{url: "https://x.example/a"}})
	first := s.FetchContent(context.Background(), "sess-1", results, nil)
	second := s.FetchContent(context.Background(), "sess-1", results, nil)

	if first != second {
		t.Fatalf("cached fetch should produce identical context")
	}
	if got := fetcher.calls["https://x.example/a"]; got != 1 {
		t.Fatalf("expected 1 network fetch, got %d", got)
	}
}
