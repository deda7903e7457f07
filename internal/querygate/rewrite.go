package querygate

import (
	"regexp"
	"strings"
)

var acronymExpansions = map[string]string{
	"ai":  "artificial intelligence",
	"ml":  "machine learning",
	"nlp": "natural language processing",
	"api": "application programming interface",
	"rag": "retrieval augmented generation",
	"llm": "large language model",
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// rewriteRules recast common question shapes into declarative keyword form.
// Evaluated in order; the first matching template wins. Patterns anchor at
// the end of the query so any leading context survives the substitution.
var rewriteRules = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)what\s+is\s+(.+)\?*$`), "definition explanation of ${1}"},
	{regexp.MustCompile(`(?i)what\s+are\s+(.+)\?*$`), "definition explanation of ${1}"},
	{regexp.MustCompile(`(?i)define\s+(.+)$`), "definition of ${1}"},
	{regexp.MustCompile(`(?i)explain\s+(.+)$`), "explanation of ${1}"},
	{regexp.MustCompile(`(?i)how\s+does\s+(.+)\s+work\?*$`), "how ${1} works mechanism process"},
	{regexp.MustCompile(`(?i)why\s+(.+)\?*$`), "reasons causes for ${1}"},
}

// Rewrite prepends acronym expansions to the words that carry them, then
// applies the first matching question template. The result is meant for
// retrieval only; answer generation sees the original query.
func (g *Gate) Rewrite(query string) string {
	words := strings.Fields(query)
	expanded := make([]string, len(words))
	for i, w := range words {
		clean := strings.ToLower(nonAlphanumeric.ReplaceAllString(w, ""))
		if full, ok := acronymExpansions[clean]; ok {
			expanded[i] = full + " " + w
		} else {
			expanded[i] = w
		}
	}
	out := strings.Join(expanded, " ")

	for _, r := range rewriteRules {
		if r.pattern.MatchString(out) {
			return r.pattern.ReplaceAllString(out, r.replacement)
		}
	}
	return out
}
