package agent

import (
	"context"
	"log"

	"github.com/adhikar-ai/adhikar/internal/telemetry"
	"github.com/adhikar-ai/adhikar/models"
	"github.com/adhikar-ai/adhikar/provider"
)

// apologyReply is returned when synthesis itself fails; the caller always
// gets a usable reply, never an error.
const apologyReply = "I apologize, but I am having trouble generating a response right now. Please try again in a moment."

// Summarizer produces the final natural-language reply. The prompt branches
// on intent: clarify asks exactly one question, everything else gives a
// structured answer built only from the facts and judgments in the analysis.
type Summarizer struct {
	llm       provider.Provider
	telemetry *telemetry.Telemetry
	logger    *log.Logger
}

func NewSummarizer(llm provider.Provider, tele *telemetry.Telemetry, logger *log.Logger) *Summarizer {
	if logger == nil {
		logger = log.New(log.Writer(), "[SUMMARIZER] ", log.LstdFlags)
	}
	return &Summarizer{llm: llm, telemetry: tele, logger: logger}
}

func (s *Summarizer) Summarize(ctx context.Context, query string, analysis models.AnalysisResult, history []models.Turn) string {
	reply, err := s.llm.Complete(ctx, summarizePrompt(query, analysis, history), false)
	if err != nil || reply == "" {
		s.logger.Printf("summarization failed: %v", err)
		s.telemetry.RecordLLMFallback()
		return apologyReply
	}
	return reply
}
