package terms

import "strings"

// AmbiguityReport lists the vague terms found in a query
type AmbiguityReport struct {
	Query       string    `json:"query"`
	Ambiguous   bool      `json:"ambiguous"`
	Ambiguities []Pattern `json:"ambiguities"`
}

// DetectAmbiguities flags every pattern whose term occurs in the query
func (t *Translator) DetectAmbiguities(query string) AmbiguityReport {
	text := strings.ToLower(query)
	report := AmbiguityReport{Query: query, Ambiguities: []Pattern{}}
	for _, p := range t.patterns {
		if strings.Contains(text, strings.ToLower(p.Term)) {
			report.Ambiguities = append(report.Ambiguities, p)
		}
	}
	report.Ambiguous = len(report.Ambiguities) > 0
	return report
}

// ClarificationPrompt renders the questions and options of a report as plain text
func ClarificationPrompt(report AmbiguityReport) string {
	if !report.Ambiguous {
		return ""
	}
	var b strings.Builder
	for i, amb := range report.Ambiguities {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(amb.Question)
		for _, opt := range amb.Options {
			b.WriteString("\n  - ")
			b.WriteString(opt)
		}
	}
	return b.String()
}
