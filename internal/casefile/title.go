package casefile

import (
	"regexp"
	"strings"
)

// Best-effort display-title extraction. These are presentation heuristics:
// they return empty components on no match and never fail.

var (
	// A capitalized proper-noun phrase following a connector word, bounded by
	// punctuation or a lowercase token (trailing temporal/locative
	// prepositions like "on"/"in"/"to" end the match naturally).
	companyRe = regexp.MustCompile(`\b(?:with|against|from|by|airline|carrier)\s+([A-Z][A-Za-z0-9&'.-]*(?:\s+[A-Z][A-Za-z0-9&'.-]*)*)`)

	numericDateRe = regexp.MustCompile(`\b\d{1,2}[./-]\d{1,2}[./-]\d{2,4}\b`)
	isoDateRe     = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	monthDateRe   = regexp.MustCompile(`\b(?:\d{1,2}(?:st|nd|rd|th)?\s+)?(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:tember)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\b(?:\s+\d{1,2}(?:st|nd|rd|th)?\b)?(?:,?\s+\d{4}\b)?`)
)

// ExtractCompany pulls a likely company name out of a complaint narrative.
// Returns "" when nothing matches.
func ExtractCompany(narrative string) string {
	m := companyRe.FindStringSubmatch(narrative)
	if m == nil {
		return ""
	}
	return strings.TrimRight(strings.TrimSpace(m[1]), ".,;:")
}

// ExtractDate pulls the first date-looking substring out of a narrative,
// matching either a numeric D/M/Y-style pattern or a month-name pattern.
// Returns "" when nothing matches.
func ExtractDate(narrative string) string {
	if m := isoDateRe.FindString(narrative); m != "" {
		return m
	}
	if m := numericDateRe.FindString(narrative); m != "" {
		return m
	}
	return strings.TrimSpace(monthDateRe.FindString(narrative))
}

// HumanizeType converts an UPPER_SNAKE category tag into a readable label:
// "CIVIL_AVIATION_DISRUPTION" becomes "Civil Aviation Disruption".
func HumanizeType(t string) string {
	words := strings.Fields(strings.ReplaceAll(strings.ToLower(t), "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// DisplayTitle derives a short presentation title for a case. An explicit
// dossier or classification title wins; otherwise the title is assembled
// from heuristic company/date extraction over the narrative, falling back
// to the humanized category label and finally "Consumer Dispute".
func (r *Record) DisplayTitle() string {
	if r.CaseData != nil && r.CaseData.Title != "" {
		return r.CaseData.Title
	}
	if r.Research != nil && r.Research.Title != "" {
		return r.Research.Title
	}

	company := ExtractCompany(r.ComplaintText)
	date := ExtractDate(r.ComplaintText)

	switch {
	case company != "" && date != "":
		return company + " — " + date
	case company != "":
		return company + " claim"
	}

	var label string
	if r.Research != nil {
		label = HumanizeType(r.Research.Type)
	}
	if date != "" {
		if label == "" {
			label = "Consumer Dispute"
		}
		return label + " — " + date
	}
	if label != "" {
		return label
	}
	return "Consumer Dispute"
}
