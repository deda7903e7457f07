package querygate

import "github.com/hayasui/kotae/internal/models"

var greetings = map[string]bool{
	"hi":             true,
	"hello":          true,
	"hey":            true,
	"hiya":           true,
	"howdy":          true,
	"yo":             true,
	"sup":            true,
	"greetings":      true,
	"good morning":   true,
	"good afternoon": true,
	"good evening":   true,
	"hi there":       true,
}

var questionWords = map[string]bool{
	"what":  true,
	"where": true,
	"when":  true,
	"who":   true,
	"why":   true,
	"how":   true,
	"which": true,
	"whose": true,
}

// explainMarkers promote short imperative requests to knowledge queries.
var explainMarkers = []string{"tell me", "explain", "describe"}

// intentRules are evaluated in order; the first matching rule decides.
// Anything unmatched is a knowledge query.
var intentRules = []struct {
	name   string
	match  func(f *queryFacts) bool
	intent models.Intent
}{
	{
		name:   "empty",
		match:  func(f *queryFacts) bool { return f.trimmed == "" },
		intent: models.IntentGeneralChat,
	},
	{
		name: "greeting",
		match: func(f *queryFacts) bool {
			return len(f.trimmed) < 15 && (f.anyWord(greetings) || greetings[f.lowered])
		},
		intent: models.IntentGreeting,
	},
	{
		name: "short explain request",
		match: func(f *queryFacts) bool {
			return len(f.trimmed) < 25 && !f.anyWord(questionWords) && f.containsAny(explainMarkers)
		},
		intent: models.IntentKnowledgeQuery,
	},
	{
		name: "short chatter",
		match: func(f *queryFacts) bool {
			return len(f.trimmed) < 25 && !f.anyWord(questionWords)
		},
		intent: models.IntentGeneralChat,
	},
}

// Classify returns the intent of text.
func (g *Gate) Classify(text string) models.Intent {
	f := newQueryFacts(text)
	for _, r := range intentRules {
		if r.match(f) {
			return r.intent
		}
	}
	return models.IntentKnowledgeQuery
}
