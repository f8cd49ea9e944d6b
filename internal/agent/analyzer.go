package agent

import (
	"context"
	"encoding/json"
	"log"

	"github.com/adhikar-ai/adhikar/internal/telemetry"
	"github.com/adhikar-ai/adhikar/models"
	"github.com/adhikar-ai/adhikar/provider"
)

// historyWindow is how many trailing turns feed the analyzer and summarizer
// prompts.
const historyWindow = 5

var defaultPriorityDomains = []string{"indiankanoon.org", "devgan.in"}

// Analyzer classifies queries and later extracts facts from fetched content.
// Both phases always return a well-formed AnalysisResult; LLM or decode
// failures degrade to typed fallback values instead of propagating.
type Analyzer struct {
	llm             provider.Provider
	priorityDomains []string
	telemetry       *telemetry.Telemetry
	logger          *log.Logger
}

// NewAnalyzer builds an analyzer. priorityDomains seeds the fallback domain
// list when the model omits its own; empty means the built-in case-law
// domains.
func NewAnalyzer(llm provider.Provider, priorityDomains []string, tele *telemetry.Telemetry, logger *log.Logger) *Analyzer {
	if logger == nil {
		logger = log.New(log.Writer(), "[ANALYZER] ", log.LstdFlags)
	}
	if len(priorityDomains) == 0 {
		priorityDomains = defaultPriorityDomains
	}
	return &Analyzer{llm: llm, priorityDomains: priorityDomains, telemetry: tele, logger: logger}
}

// classifyOutput is the JSON schema expected from the classification call.
// Every field is optional; absent fields fall back to defaults so a partial
// or malformed response can never produce a broken result.
type classifyOutput struct {
	Intent          string   `json:"intent"`
	SearchQueries   []string `json:"search_queries"`
	PriorityDomains []string `json:"priority_domains"`
	Reasoning       string   `json:"reasoning"`
}

// Classify determines intent and generates search queries for one query.
func (a *Analyzer) Classify(ctx context.Context, query string, history []models.Turn) models.AnalysisResult {
	fallback := models.AnalysisResult{
		Intent:            models.IntentInfo,
		SearchQueries:     []string{query},
		KeyFacts:          []string{},
		RelevantJudgments: []models.SearchResult{},
		Reasoning:         "Error in analysis",
		PriorityDomains:   a.priorityDomains,
	}

	raw, err := a.llm.Complete(ctx, classifyPrompt(query, history), true)
	if err != nil {
		a.logger.Printf("query analysis failed: %v", err)
		a.telemetry.RecordLLMFallback()
		return fallback
	}

	var out classifyOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		a.logger.Printf("query analysis returned malformed JSON: %v", err)
		a.telemetry.RecordLLMFallback()
		return fallback
	}

	result := models.AnalysisResult{
		Intent:            models.Intent(out.Intent),
		SearchQueries:     out.SearchQueries,
		KeyFacts:          []string{},
		RelevantJudgments: []models.SearchResult{},
		Reasoning:         out.Reasoning,
		PriorityDomains:   out.PriorityDomains,
	}
	if !result.Intent.Valid() {
		result.Intent = models.IntentInfo
	}
	if len(result.SearchQueries) == 0 {
		result.SearchQueries = []string{query}
	}
	if len(result.PriorityDomains) == 0 {
		result.PriorityDomains = a.priorityDomains
	}
	a.logger.Printf("intent=%s queries=%d", result.Intent, len(result.SearchQueries))
	return result
}

type extractOutput struct {
	KeyFacts                 []string `json:"key_facts"`
	RelevantJudgmentsIndices []int    `json:"relevant_judgments_indices"`
}

// Extract pulls key facts out of the fetched context. Facts must come from
// the context alone; the prompt forbids invention and a failed call leaves
// the input analysis unchanged apart from an empty fact list.
//
// The relevance indices the model returns are advisory only: they move the
// flagged results to the front of RelevantJudgments but never drop anything,
// so a hallucinated index cannot lose a real source. The full fetched set is
// always passed through.
func (a *Analyzer) Extract(ctx context.Context, analysis models.AnalysisResult, searchContext string, results []models.SearchResult) models.AnalysisResult {
	analysis.RelevantJudgments = results

	raw, err := a.llm.Complete(ctx, extractPrompt(searchContext), true)
	if err != nil {
		a.logger.Printf("result analysis failed: %v", err)
		a.telemetry.RecordLLMFallback()
		return analysis
	}

	var out extractOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		a.logger.Printf("result analysis returned malformed JSON: %v", err)
		a.telemetry.RecordLLMFallback()
		return analysis
	}

	analysis.KeyFacts = out.KeyFacts
	if analysis.KeyFacts == nil {
		analysis.KeyFacts = []string{}
	}
	analysis.RelevantJudgments = reorderByIndices(results, out.RelevantJudgmentsIndices)
	return analysis
}

// reorderByIndices puts the results at the given indices first, preserving
// their stated order, then appends everything else in original order. Out of
// range or duplicate indices are ignored.
func reorderByIndices(results []models.SearchResult, indices []int) []models.SearchResult {
	if len(indices) == 0 {
		return results
	}
	picked := make(map[int]bool, len(indices))
	out := make([]models.SearchResult, 0, len(results))
	for _, i := range indices {
		if i < 0 || i >= len(results) || picked[i] {
			continue
		}
		picked[i] = true
		out = append(out, results[i])
	}
	for i, r := range results {
		if !picked[i] {
			out = append(out, r)
		}
	}
	return out
}
