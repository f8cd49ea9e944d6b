package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adhikar-ai/adhikar/models"
)

// historyBlock renders the last n turns for prompt context.
func historyBlock(history []models.Turn, n int) string {
	if len(history) > n {
		history = history[len(history)-n:]
	}
	var b strings.Builder
	for _, t := range history {
		b.WriteString(strings.ToUpper(string(t.Role)))
		b.WriteString(": ")
		b.WriteString(t.Content)
		b.WriteString("\n")
	}
	return b.String()
}

func classifyPrompt(query string, history []models.Turn) string {
	return fmt.Sprintf(`<system_role>
You are an expert Legal Analyst for India. Your goal is to understand the user's need and generate precise keyword search queries across Indian laws (IPC, CrPC, BNS, RTI Act, and related statutes).
</system_role>

<chat_history>
%s</chat_history>

<user_query>
%s
</user_query>

<task>
1. Determine intent:
   - "legal_advice": the user describes a concrete grievance and seeks a remedy (e.g. "police refused my FIR", "internal marks withheld", "cheque bounced").
   - "clarify": the query is too vague to advise on; a detail is missing.
   - "info": general questions about laws, rules or procedures.
2. Generate search queries:
   - Keywords only, never natural-language questions. Operators allowed: site:, quotes, OR.
   - If intent is "legal_advice", at least 2 queries MUST be scoped with site:indiankanoon.org or site:devgan.in to surface case law and sections.
</task>

<output_format>
Respond with valid JSON only:
{
  "intent": "info|legal_advice|clarify",
  "search_queries": ["site:indiankanoon.org ...", "..."],
  "priority_domains": ["indiankanoon.org", "devgan.in"],
  "reasoning": "..."
}
</output_format>`, historyBlock(history, historyWindow), query)
}

func extractPrompt(searchContext string) string {
	return fmt.Sprintf(`You are an expert Legal Analyst extracting information from search results.

<search_context>
%s
</search_context>

<task>
From the search context above extract:
1. KEY FACTS: Acts, sections, rules, procedures and court decisions relevant to the query. Only facts explicitly stated in the context; never invent or assume.
2. RELEVANT JUDGMENTS: zero-based indices of the sources (in the order they appear above) that cite court or CIC decisions.
</task>

<output_format>
Respond with ONLY valid JSON:
{
  "key_facts": ["fact 1", "fact 2"],
  "relevant_judgments_indices": [0, 2]
}
</output_format>`, searchContext)
}

func summarizePrompt(query string, analysis models.AnalysisResult, history []models.Turn) string {
	facts, _ := json.Marshal(analysis.KeyFacts)
	return fmt.Sprintf(`<persona>
You are a friendly, knowledgeable legal assistant helping Indian citizens, like a smart friend who knows the law.
</persona>

<chat_history>
%s</chat_history>

<context>
User Query: %q
Intent: %q
Reasoning: %q
Facts Found: %s
</context>

<guidelines>
1. IF INTENT IS "clarify":
   - Ask exactly ONE clear question to get the missing detail. Polite, conversational, nothing else.
2. IF INTENT IS "info" OR "legal_advice":
   - Direct answer first, then simple bullet-point steps.
   - Cite laws and judgments ONLY from the facts provided above; mention court rulings naturally ("Courts have ruled that...").
   - If no facts were found, say plainly that you could not find reliable information and suggest rephrasing.
   - Offer to draft a formal application only when it fits.
   - Keep it under 150 words.
</guidelines>

<output_format>
Plain text response only.
</output_format>`, historyBlock(history, historyWindow), query, analysis.Intent, analysis.Reasoning, facts)
}

func draftPrompt(query string, analysis models.AnalysisResult) string {
	facts, _ := json.MarshalIndent(analysis.KeyFacts, "", "  ")
	return fmt.Sprintf(`<role>
You are an expert drafter of RTI (Right to Information Act 2005) applications.
</role>

<user_request>
%s
</user_request>

<facts>
%s
</facts>

<task>
Draft a formal RTI application from the request and facts above.
</task>

<rules>
1. Use ONLY the facts provided; never invent details.
2. Use placeholders for missing personal information: [Your Full Name], [Your Address], [Date], [Public Authority Name].
3. Follow the RTI Act 2005 format: addressed to the Public Information Officer, clear subject line, specific information sought, reference to Section 6(1), applicant details, fee mention.
4. Formal but clear language.
</rules>

<output_format>
Output ONLY the application text.
</output_format>`, query, facts)
}
