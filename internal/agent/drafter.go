package agent

import (
	"context"
	"log"
	"strings"

	"github.com/adhikar-ai/adhikar/internal/telemetry"
	"github.com/adhikar-ai/adhikar/models"
	"github.com/adhikar-ai/adhikar/provider"
)

// Drafter writes a formal RTI application from the user's request and the
// facts gathered during research. It only ever uses facts from the analysis;
// missing personal details become placeholders.
type Drafter struct {
	llm       provider.Provider
	telemetry *telemetry.Telemetry
	logger    *log.Logger
}

func NewDrafter(llm provider.Provider, tele *telemetry.Telemetry, logger *log.Logger) *Drafter {
	if logger == nil {
		logger = log.New(log.Writer(), "[DRAFTER] ", log.LstdFlags)
	}
	return &Drafter{llm: llm, telemetry: tele, logger: logger}
}

// Draft produces the application text, or "" when drafting fails; the reply
// stands on its own either way.
func (d *Drafter) Draft(ctx context.Context, query string, analysis models.AnalysisResult) string {
	draft, err := d.llm.Complete(ctx, draftPrompt(query, analysis), false)
	if err != nil {
		d.logger.Printf("drafting failed: %v", err)
		d.telemetry.RecordLLMFallback()
		return ""
	}
	return draft
}

// WantsDraft reports whether the query asks for a written application rather
// than just advice.
func WantsDraft(query string) bool {
	q := strings.ToLower(query)
	if !strings.Contains(q, "draft") && !strings.Contains(q, "write") && !strings.Contains(q, "prepare") {
		return false
	}
	return strings.Contains(q, "application") || strings.Contains(q, "rti") || strings.Contains(q, "letter") || strings.Contains(q, "complaint")
}
