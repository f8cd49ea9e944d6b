package models

import "time"

// Role identifies who produced a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is a single message in a session's history.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Intent is the coarse category the analyzer assigns to a query. It decides
// which pipeline branch runs: clarify skips research entirely, everything
// else goes through search, fetch and extraction.
type Intent string

const (
	IntentInfo        Intent = "info"
	IntentLegalAdvice Intent = "legal_advice"
	IntentClarify     Intent = "clarify"
)

// Valid reports whether the value names a known intent.
func (i Intent) Valid() bool {
	switch i {
	case IntentInfo, IntentLegalAdvice, IntentClarify:
		return true
	}
	return false
}

// SearchResult is one ranked candidate from a web search provider.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

// AnalysisResult carries the analyzer's view of a query across both phases:
// classification fills Intent, SearchQueries, PriorityDomains and Reasoning;
// extraction later fills KeyFacts and RelevantJudgments from fetched content.
type AnalysisResult struct {
	Intent            Intent         `json:"intent"`
	SearchQueries     []string       `json:"search_queries"`
	KeyFacts          []string       `json:"key_facts"`
	RelevantJudgments []SearchResult `json:"relevant_judgments"`
	Reasoning         string         `json:"reasoning"`
	PriorityDomains   []string       `json:"priority_domains"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse is what one pipeline run returns to the caller.
type ChatResponse struct {
	Reply        string         `json:"reply"`
	Draft        string         `json:"draft,omitempty"`
	Analysis     AnalysisResult `json:"analysis"`
	SessionID    string         `json:"session_id"`
	SessionTitle string         `json:"session_title"`
}

// Session is a server-side record of one user's multi-turn conversation.
type Session struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	History    []Turn    `json:"history"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
}
