package models

import "fmt"

// Intent classifies what a query is asking for.
type Intent string

const (
	// IntentGreeting is a salutation with no information need.
	IntentGreeting Intent = "greeting"
	// IntentGeneralChat is conversational text that is not a question.
	IntentGeneralChat Intent = "general_chat"
	// IntentKnowledgeQuery is a question that should be answered from the corpus.
	IntentKnowledgeQuery Intent = "knowledge_query"
)

// AskRequest represents a question posed against the ingested corpus.
type AskRequest struct {
	Query string `json:"query"`
}

// Validate ensures the request carries a non-empty query.
func (r *AskRequest) Validate() error {
	if r.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	return nil
}
