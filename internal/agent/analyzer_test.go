package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/adhikar-ai/adhikar/internal/telemetry"
	"github.com/adhikar-ai/adhikar/models"
)

type fakeLLM struct {
	reply string
	err   error
}

func (f fakeLLM) Complete(ctx context.Context, prompt string, wantJSON bool) (string, error) {
	return f.reply, f.err
}

func TestClassifyMalformedJSONFallsBack(t *testing.T) {
	a := NewAnalyzer(fakeLLM{reply: "I am not JSON, sorry"}, nil, telemetry.New(), nil)

	result := a.Classify(context.Background(), "What is the RTI fee?", nil)
	if result.Intent != models.IntentInfo {
		t.Fatalf("expected info fallback, got %s", result.Intent)
	}
	if len(result.SearchQueries) == 0 || result.SearchQueries[0] != "What is the RTI fee?" {
		t.Fatalf("fallback queries must contain the original query, got %v", result.SearchQueries)
	}
	if result.KeyFacts == nil || result.RelevantJudgments == nil {
		t.Fatalf("fallback must be structurally complete")
	}
	if result.Reasoning != "Error in analysis" {
		t.Fatalf("unexpected fallback reasoning %q", result.Reasoning)
	}
}

func TestClassifyLLMErrorFallsBack(t *testing.T) {
	a := NewAnalyzer(fakeLLM{err: errors.New("timeout")}, nil, telemetry.New(), nil)

	result := a.Classify(context.Background(), "cheque bounced", nil)
	if result.Intent != models.IntentInfo || result.SearchQueries[0] != "cheque bounced" {
		t.Fatalf("expected typed fallback, got %+v", result)
	}
}

func TestClassifyParsesValidResponse(t *testing.T) {
	a := NewAnalyzer(fakeLLM{reply: `{
		"intent": "legal_advice",
		"search_queries": ["site:indiankanoon.org FIR refusal", "site:devgan.in CrPC 154"],
		"priority_domains": ["indiankanoon.org"],
		"reasoning": "concrete grievance seeking remedy"
	}`}, nil, telemetry.New(), nil)

	result := a.Classify(context.Background(), "Police refused my FIR", nil)
	if result.Intent != models.IntentLegalAdvice {
		t.Fatalf("expected legal_advice, got %s", result.Intent)
	}
	if len(result.SearchQueries) != 2 {
		t.Fatalf("expected 2 queries, got %v", result.SearchQueries)
	}
	if len(result.PriorityDomains) != 1 || result.PriorityDomains[0] != "indiankanoon.org" {
		t.Fatalf("unexpected priority domains %v", result.PriorityDomains)
	}
}

func TestClassifyUsesConfiguredPriorityDomains(t *testing.T) {
	domains := []string{"barandbench.com"}

	// model omits priority_domains: configured list fills in
	a := NewAnalyzer(fakeLLM{reply: `{"intent": "info", "search_queries": ["q"]}`}, domains, telemetry.New(), nil)
	result := a.Classify(context.Background(), "latest SC ruling", nil)
	if len(result.PriorityDomains) != 1 || result.PriorityDomains[0] != "barandbench.com" {
		t.Fatalf("configured domains should back an empty model list, got %v", result.PriorityDomains)
	}

	// hard fallback path carries the configured list too
	a = NewAnalyzer(fakeLLM{err: errors.New("timeout")}, domains, telemetry.New(), nil)
	result = a.Classify(context.Background(), "latest SC ruling", nil)
	if len(result.PriorityDomains) != 1 || result.PriorityDomains[0] != "barandbench.com" {
		t.Fatalf("fallback should carry configured domains, got %v", result.PriorityDomains)
	}
}

func TestClassifyUnknownIntentDefaultsToInfo(t *testing.T) {
	a := NewAnalyzer(fakeLLM{reply: `{"intent": "rant", "search_queries": ["x"]}`}, nil, telemetry.New(), nil)

	result := a.Classify(context.Background(), "hello", nil)
	if result.Intent != models.IntentInfo {
		t.Fatalf("unknown intent should default to info, got %s", result.Intent)
	}
}

func TestExtractPassesThroughOnFailure(t *testing.T) {
	a := NewAnalyzer(fakeLLM{err: errors.New("unavailable")}, nil, telemetry.New(), nil)
	results := []models.SearchResult{{URL: "https://indiankanoon.org/doc/1", Title: "Lalita Kumari"}}
	in := models.AnalysisResult{Intent: models.IntentLegalAdvice, SearchQueries: []string{"q"}}

	out := a.Extract(context.Background(), in, "some context", results)
	if out.Intent != in.Intent {
		t.Fatalf("intent must survive extraction failure")
	}
	if len(out.RelevantJudgments) != 1 {
		t.Fatalf("fetched results must pass through on failure, got %v", out.RelevantJudgments)
	}
}

func TestExtractReordersButNeverDrops(t *testing.T) {
	a := NewAnalyzer(fakeLLM{reply: `{"key_facts": ["Section 154 CrPC mandates FIR registration"], "relevant_judgments_indices": [2, 0, 99]}`}, nil, telemetry.New(), nil)
	results := []models.SearchResult{
		{URL: "https://x.example/0"},
		{URL: "https://x.example/1"},
		{URL: "https://x.example/2"},
	}

	out := a.Extract(context.Background(), models.AnalysisResult{}, "ctx", results)
	if len(out.KeyFacts) != 1 {
		t.Fatalf("expected extracted facts, got %v", out.KeyFacts)
	}
	if len(out.RelevantJudgments) != 3 {
		t.Fatalf("advisory indices must not drop results, got %d", len(out.RelevantJudgments))
	}
	wantOrder := []string{"https://x.example/2", "https://x.example/0", "https://x.example/1"}
	for i, want := range wantOrder {
		if out.RelevantJudgments[i].URL != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, out.RelevantJudgments[i].URL)
		}
	}
}
