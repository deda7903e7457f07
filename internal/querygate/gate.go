// Package querygate classifies, screens, and rewrites queries before
// retrieval. All decisions are rule-based and deterministic: each concern
// evaluates an ordered rule list and the first matching rule wins.
package querygate

import (
	"regexp"
	"strings"
)

// Gate runs intent classification, refusal screening, and query rewriting.
type Gate struct{}

// New returns a Gate.
func New() *Gate {
	return &Gate{}
}

var letterRuns = regexp.MustCompile(`[a-z]+`)

// queryFacts carries the derived views of a query that rules match on.
// words holds the set of lowercase letter runs, so "what's" contains both
// "what" and "s".
type queryFacts struct {
	trimmed string
	lowered string
	words   map[string]bool
}

func newQueryFacts(text string) *queryFacts {
	trimmed := strings.TrimSpace(text)
	lowered := strings.ToLower(trimmed)
	words := make(map[string]bool)
	for _, w := range letterRuns.FindAllString(lowered, -1) {
		words[w] = true
	}
	return &queryFacts{trimmed: trimmed, lowered: lowered, words: words}
}

func (f *queryFacts) anyWord(set map[string]bool) bool {
	for w := range set {
		if f.words[w] {
			return true
		}
	}
	return false
}

func (f *queryFacts) containsAny(substrings []string) bool {
	for _, s := range substrings {
		if strings.Contains(f.lowered, s) {
			return true
		}
	}
	return false
}
