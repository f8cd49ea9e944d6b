package agent

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/adhikar-ai/adhikar/internal/telemetry"
	"github.com/adhikar-ai/adhikar/models"
	"github.com/adhikar-ai/adhikar/session"
)

// titleLimit bounds the session title derived from the first user message.
const titleLimit = 60

// recallDocs is how many previously fetched pages a follow-up turn may pull
// back into context from the session corpus.
const recallDocs = 2

// Orchestrator sequences the pipeline for one request:
//
//	RECEIVED -> CLASSIFIED -> {CLARIFY_REPLY | RESEARCH -> SYNTHESIZED} -> RETURNED
//
// Components own their fallbacks; the orchestrator never retries a stage.
// Anything unexpected propagates up as a request-level failure.
type Orchestrator struct {
	analyzer   *Analyzer
	searcher   *Searcher
	summarizer *Summarizer
	drafter    *Drafter
	store      session.Store
	telemetry  *telemetry.Telemetry
	logger     *log.Logger
}

func NewOrchestrator(analyzer *Analyzer, searcher *Searcher, summarizer *Summarizer, drafter *Drafter, store session.Store, tele *telemetry.Telemetry, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.New(log.Writer(), "[ORCH] ", log.LstdFlags)
	}
	return &Orchestrator{
		analyzer:   analyzer,
		searcher:   searcher,
		summarizer: summarizer,
		drafter:    drafter,
		store:      store,
		telemetry:  tele,
		logger:     logger,
	}
}

// Process runs the full pipeline for one user message. A missing or unknown
// session id mints a new session; the session is read before classification
// and written after synthesis.
func (o *Orchestrator) Process(ctx context.Context, sessionID, message string) (models.ChatResponse, error) {
	start := time.Now()

	sess, ok := o.store.Get(sessionID)
	if !ok {
		var err error
		sess, err = o.store.Create()
		if err != nil {
			o.telemetry.RecordRequest("error", time.Since(start))
			return models.ChatResponse{}, fmt.Errorf("failed to create session: %w", err)
		}
	}
	history := sess.History

	analysis := o.analyzer.Classify(ctx, message, history)
	o.telemetry.RecordIntent(string(analysis.Intent))
	o.logger.Printf("session=%s intent=%s", sess.ID, analysis.Intent)

	var reply, draft string
	if analysis.Intent == models.IntentClarify {
		reply = o.summarizer.Summarize(ctx, message, analysis, history)
	} else {
		reply, draft = o.runResearch(ctx, sess.ID, message, &analysis, history)
	}

	if _, err := o.store.Append(sess.ID, models.RoleUser, message); err != nil {
		o.telemetry.RecordRequest("error", time.Since(start))
		return models.ChatResponse{}, fmt.Errorf("failed to record user turn: %w", err)
	}
	updated, err := o.store.Append(sess.ID, models.RoleModel, reply)
	if err != nil {
		o.telemetry.RecordRequest("error", time.Since(start))
		return models.ChatResponse{}, fmt.Errorf("failed to record model turn: %w", err)
	}

	title := updated.Title
	if title == session.DefaultTitle {
		title = deriveTitle(message)
		if err := o.store.SetTitle(sess.ID, title); err != nil {
			o.logger.Printf("failed to set session title: %v", err)
			title = updated.Title
		}
	}

	o.telemetry.RecordRequest("ok", time.Since(start))
	return models.ChatResponse{
		Reply:        reply,
		Draft:        draft,
		Analysis:     analysis,
		SessionID:    sess.ID,
		SessionTitle: title,
	}, nil
}

// runResearch executes the research branch: search, prioritized fetch, fact
// extraction, then synthesis. Partial failures shrink the context; the
// degenerate zero-result case still synthesizes a reply from empty facts.
func (o *Orchestrator) runResearch(ctx context.Context, sessionID, message string, analysis *models.AnalysisResult, history []models.Turn) (reply, draft string) {
	results := o.searcher.Search(ctx, analysis.SearchQueries)
	searchContext := o.searcher.FetchContent(ctx, sessionID, results, analysis.PriorityDomains)
	if searchContext == "" {
		// this turn's research came up empty; fall back to pages fetched
		// earlier in the session rather than extracting from nothing
		searchContext = o.searcher.RecallContext(sessionID, message, recallDocs)
	}

	*analysis = o.analyzer.Extract(ctx, *analysis, searchContext, results)

	reply = o.summarizer.Summarize(ctx, message, *analysis, history)
	if analysis.Intent == models.IntentLegalAdvice && WantsDraft(message) {
		draft = o.drafter.Draft(ctx, message, *analysis)
	}
	return reply, draft
}

func deriveTitle(message string) string {
	t := strings.TrimSpace(message)
	if utf8.RuneCountInString(t) <= titleLimit {
		return t
	}
	runes := []rune(t)
	return strings.TrimSpace(string(runes[:titleLimit])) + "…"
}
