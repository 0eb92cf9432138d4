package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/legalease/legalease/internal/casefile"
)

// Prompt builders. The tone requirements (sober, procedural, no reassurance
// language) follow the correspondence style the system is meant to produce;
// every prompt instructs the model to return a single JSON object so the
// adapter can extract the payload deterministically.

func classifyPrompt(narrative string) string {
	var sb strings.Builder
	sb.WriteString("You are a Procedural Assessment System for a consumer disruption platform.\n")
	sb.WriteString(fmt.Sprintf("The user has provided this factual account: %q\n\n", narrative))
	sb.WriteString(`Your task:
1. Categorize the incident (e.g., CIVIL_AVIATION_DISRUPTION, PRODUCT_LIABILITY, SERVICE_CONTRACT_BREACH).
2. Identify the specific regulatory framework that applies (e.g. EU 261/2004, UK Consumer Rights Act 2015). Use serious, technical names.
3. Summarize the applicable framework in a sober, objective tone. Avoid "You have rights" phrasing; use "The regulation specifies obligations for...".
4. Identify the specific data points required to build a formal case dossier.
5. Where the account already contains a required data point, suggest its value; use null for anything you are not confident about.

Return ONLY a JSON object in the following format:
{
  "type": "STRING_UPPERCASE",
  "baseJustification": "Official Name of Regulation",
  "summary": "Objective description of relevant regulatory clauses.",
  "requiredInfo": [
    { "id": "unique_id", "label": "Technical Label (e.g. Flight Reference)", "placeholder": "Example", "type": "text|date|number|textarea" }
  ],
  "suggestedValues": { "unique_id": "value or null" },
  "compensation": [ { "area": "Compensation area", "estimate": "Estimated amount or range" } ],
  "title": "Short case title"
}
`)
	return sb.String()
}

func draftPrompt(category string, fields map[string]string, c *casefile.Classification) string {
	info, _ := json.Marshal(fields)
	justification := ""
	if c != nil {
		justification = c.BaseJustification
	}

	var sb strings.Builder
	sb.WriteString("As a Procedural Strategy System, generate a Case Dossier for:\n")
	sb.WriteString(fmt.Sprintf("Incident Category: %s\n", category))
	sb.WriteString(fmt.Sprintf("Applicable Regulation: %s\n", justification))
	sb.WriteString(fmt.Sprintf("Validated User Data: %s\n\n", info))
	sb.WriteString(fmt.Sprintf(`Generate:
1. A procedural timeline of 4 to 7 ordered steps (formal tone, fact-based, no cleverness), each with a title, a description and a timeframe label.
2. A formal claim correspondence draft:
   - Factual, restrained tone. No greetings like "Hope you are well".
   - Subject line: "Formal claim under [Regulation] - [Identifier]".
   - Numbered paragraphs for facts; explicitly cite %s.
   - Use bracketed placeholders like [Booking Reference] for any data the user has not supplied.
3. A list of required evidentiary items.

Return ONLY a JSON object in the following format:
{
  "title": "Short case title",
  "timeline": [ { "title": "Step title", "description": "What to do", "timeframe": "e.g. Within 7 days" } ],
  "email": { "subject": "...", "recipientName": "...", "recipientAddress": "address or [Placeholder]", "body": "..." },
  "checklist": ["Evidence Item 1", "Evidence Item 2"]
}
`, justification))
	return sb.String()
}

func analyzePrompt(updateText string, c *casefile.Classification, priorLogs []casefile.LogEntry) string {
	justification := ""
	if c != nil {
		justification = c.BaseJustification
	}

	var sb strings.Builder
	sb.WriteString("You are a Procedural Tracking System monitoring a filed consumer claim.\n")
	sb.WriteString(fmt.Sprintf("Applicable Regulation: %s\n", justification))
	sb.WriteString("Prior case log, newest first:\n")
	limit := len(priorLogs)
	if limit > 20 {
		limit = 20
	}
	for i := 0; i < limit; i++ {
		origin := "user"
		if priorLogs[i].IsAgent {
			origin = "agent"
		}
		sb.WriteString(fmt.Sprintf("- [%s] %s | %s\n",
			origin, priorLogs[i].Timestamp.Format("2006-01-02 15:04"), priorLogs[i].Message))
	}
	sb.WriteString(fmt.Sprintf("\nThe user has logged this new communication: %q\n\n", updateText))
	sb.WriteString(`Assess the communication in a sober, objective tone:
1. An assessment of what this communication means for the claim.
2. A recommended next action.
3. A response quality tag: satisfactory, partial, inadequate or not_applicable.
4. Whether the claim should be escalated; if so, draft the escalation correspondence.
5. Optionally, a new response deadline in days from now if the communication resets the clock.

Return ONLY a JSON object in the following format:
{
  "assessment": "...",
  "recommendedAction": "...",
  "responseQuality": "satisfactory|partial|inadequate|not_applicable",
  "shouldEscalate": false,
  "newDeadlineDays": 14,
  "escalationDraft": "required when shouldEscalate is true"
}
`)
	return sb.String()
}
