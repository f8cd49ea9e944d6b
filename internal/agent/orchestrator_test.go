package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/adhikar-ai/adhikar/internal/telemetry"
	"github.com/adhikar-ai/adhikar/models"
	"github.com/adhikar-ai/adhikar/session/inmemory"
	searchmodels "github.com/adhikar-ai/adhikar/tools/web_search/models"
)

// scriptedLLM routes by prompt shape: classification and extraction prompts
// want JSON, synthesis prompts want text.
type scriptedLLM struct {
	classifyJSON string
	extractJSON  string
	summary      string
}

func (s scriptedLLM) Complete(ctx context.Context, prompt string, wantJSON bool) (string, error) {
	switch {
	case strings.Contains(prompt, "<user_query>"):
		return s.classifyJSON, nil
	case strings.Contains(prompt, "<search_context>"):
		return s.extractJSON, nil
	default:
		return s.summary, nil
	}
}

func newTestOrchestrator(t *testing.T, llm scriptedLLM, search *fakeSearch, fetch *fakeFetch) *Orchestrator {
	t.Helper()
	store, err := inmemory.NewStore("")
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	tele := telemetry.New()
	cfg := testConfig()
	aggregator := NewSearcher(search, fetch, NewCorpus(), cfg, tele, nil)
	return NewOrchestrator(
		NewAnalyzer(llm, nil, tele, nil),
		aggregator,
		NewSummarizer(llm, tele, nil),
		NewDrafter(llm, tele, nil),
		store,
		tele,
		nil,
	)
}

func TestClarifyFlowSkipsResearch(t *testing.T) {
	llm := scriptedLLM{
		classifyJSON: `{"intent": "clarify", "search_queries": [], "reasoning": "too vague"}`,
		summary:      "Which department are you dealing with?",
	}
	search := &fakeSearch{}
	orch := newTestOrchestrator(t, llm, search, &fakeFetch{})

	resp, err := orch.Process(context.Background(), "", "I want to draft an application.")
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if resp.Analysis.Intent != models.IntentClarify {
		t.Fatalf("expected clarify, got %s", resp.Analysis.Intent)
	}
	if search.calls != 0 {
		t.Fatalf("clarification flow must skip search, saw %d calls", search.calls)
	}
	if resp.Reply != "Which department are you dealing with?" {
		t.Fatalf("unexpected reply %q", resp.Reply)
	}
}

func TestResearchFlowRunsFullPipeline(t *testing.T) {
	llm := scriptedLLM{
		classifyJSON: `{"intent": "info", "search_queries": ["RTI fee Karnataka"], "priority_domains": ["indiankanoon.org"], "reasoning": "general question"}`,
		extractJSON:  `{"key_facts": ["The fee is Rs 10"], "relevant_judgments_indices": [0]}`,
		summary:      "The RTI application fee in Karnataka is Rs 10.",
	}
	search := &fakeSearch{results: map[string][]searchmodels.Result{
		"RTI fee Karnataka": {{Title: "Fee rules", URL: "https://indiankanoon.org/doc/1"}},
	}}
	fetch := &fakeFetch{texts: map[string]string{"https://indiankanoon.org/doc/1": "fee schedule text"}}
	orch := newTestOrchestrator(t, llm, search, fetch)

	resp, err := orch.Process(context.Background(), "", "What is the RTI fee in Karnataka?")
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if resp.Analysis.Intent != models.IntentInfo {
		t.Fatalf("expected info, got %s", resp.Analysis.Intent)
	}
	if search.calls != 1 {
		t.Fatalf("expected 1 search call, got %d", search.calls)
	}
	if len(resp.Analysis.KeyFacts) != 1 || resp.Analysis.KeyFacts[0] != "The fee is Rs 10" {
		t.Fatalf("facts not extracted: %v", resp.Analysis.KeyFacts)
	}
	if len(resp.Analysis.RelevantJudgments) != 1 {
		t.Fatalf("fetched results should pass through, got %v", resp.Analysis.RelevantJudgments)
	}
	if resp.SessionID == "" {
		t.Fatalf("expected a minted session id")
	}
}

func TestProcessAppendsBothTurnsAndSetsTitle(t *testing.T) {
	llm := scriptedLLM{
		classifyJSON: `{"intent": "info", "search_queries": ["q"]}`,
		extractJSON:  `{"key_facts": []}`,
		summary:      "Answer.",
	}
	orch := newTestOrchestrator(t, llm, &fakeSearch{}, &fakeFetch{})

	resp, err := orch.Process(context.Background(), "", "What is the RTI fee in Karnataka?")
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	history := orch.store.History(resp.SessionID)
	if len(history) != 2 {
		t.Fatalf("expected user+model turns, got %d", len(history))
	}
	if history[0].Role != models.RoleUser || history[1].Role != models.RoleModel {
		t.Fatalf("unexpected turn order %v", history)
	}
	if resp.SessionTitle != "What is the RTI fee in Karnataka?" {
		t.Fatalf("title should come from first message, got %q", resp.SessionTitle)
	}
}

func TestSecondTurnKeepsTitleAndGrowsHistory(t *testing.T) {
	llm := scriptedLLM{
		classifyJSON: `{"intent": "info", "search_queries": ["q"]}`,
		extractJSON:  `{"key_facts": []}`,
		summary:      "Answer.",
	}
	orch := newTestOrchestrator(t, llm, &fakeSearch{}, &fakeFetch{})

	first, err := orch.Process(context.Background(), "", "First question about fees?")
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	second, err := orch.Process(context.Background(), first.SessionID, "And a follow-up?")
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if second.SessionID != first.SessionID {
		t.Fatalf("session id must be stable across turns")
	}
	if second.SessionTitle != first.SessionTitle {
		t.Fatalf("title must stick to the first message")
	}
	if len(orch.store.History(first.SessionID)) != 4 {
		t.Fatalf("expected 4 turns after two requests")
	}
}

func TestZeroResultsStillSynthesizes(t *testing.T) {
	llm := scriptedLLM{
		classifyJSON: `{"intent": "info", "search_queries": ["obscure question"]}`,
		extractJSON:  `{"key_facts": []}`,
		summary:      "I could not find reliable information on that.",
	}
	orch := newTestOrchestrator(t, llm, &fakeSearch{fail: map[string]bool{"obscure question": true}}, &fakeFetch{})

	resp, err := orch.Process(context.Background(), "", "obscure question")
	if err != nil {
		t.Fatalf("zero results must not fail the request: %v", err)
	}
	if resp.Reply == "" {
		t.Fatalf("expected a synthesized degradation reply")
	}
}

func TestLegalAdviceWithDraftRequest(t *testing.T) {
	llm := scriptedLLM{
		classifyJSON: `{"intent": "legal_advice", "search_queries": ["site:indiankanoon.org FIR refusal", "site:devgan.in CrPC 154"], "priority_domains": ["indiankanoon.org", "devgan.in"]}`,
		extractJSON:  `{"key_facts": ["Section 154 CrPC"]}`,
		summary:      "You can approach the Superintendent of Police.",
	}
	orch := newTestOrchestrator(t, llm, &fakeSearch{}, &fakeFetch{})

	resp, err := orch.Process(context.Background(), "", "Please draft an RTI application about my FIR complaint.")
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if resp.Draft == "" {
		t.Fatalf("expected a draft for an explicit drafting request")
	}
}
