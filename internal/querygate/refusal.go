package querygate

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	piiRefusalMessage = "I cannot process queries that appear to contain %s. " +
		"Please rephrase without sharing personal information."
	adviceRefusalMessage = "This system provides information from your documents only " +
		"and does not constitute legal or medical advice. " +
		"Consult a qualified professional for such matters."
)

// piiRules are checked in order against the trimmed query text.
var piiRules = []struct {
	pattern *regexp.Regexp
	label   string
}{
	{regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), "SSN"},
	{regexp.MustCompile(`\b\d{16}\b`), "credit card"},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`), "email"},
}

// adviceKeywords are matched as substrings of the lowercased query, so they
// deliberately over-trigger ("sue" matches "issue"). Screening errs toward
// refusing rather than missing a request for professional advice.
var adviceKeywords = []string{
	"legal advice",
	"lawsuit",
	"sue",
	"attorney",
	"lawyer",
	"medical advice",
	"diagnose",
	"prescription",
	"doctor said",
}

// CheckRefusal reports whether the query must be refused instead of
// answered, returning the user-facing refusal message when it is.
// PII rules run before advice rules.
func (g *Gate) CheckRefusal(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	for _, r := range piiRules {
		if r.pattern.MatchString(trimmed) {
			return fmt.Sprintf(piiRefusalMessage, r.label), true
		}
	}
	lowered := strings.ToLower(trimmed)
	for _, kw := range adviceKeywords {
		if strings.Contains(lowered, kw) {
			return adviceRefusalMessage, true
		}
	}
	return "", false
}
