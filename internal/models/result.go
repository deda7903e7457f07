package models

// ScoreScale identifies the scale a candidate score was produced on.
// Scores from different scales are not comparable with each other.
type ScoreScale int

const (
	// ScaleBM25 is an unbounded non-negative lexical relevance score.
	ScaleBM25 ScoreScale = iota
	// ScaleCosine is a cosine similarity in [-1, 1].
	ScaleCosine
	// ScaleRRF is a reciprocal-rank-fusion total.
	ScaleRRF
)

// String returns the scale name.
func (s ScoreScale) String() string {
	switch s {
	case ScaleBM25:
		return "bm25"
	case ScaleCosine:
		return "cosine"
	case ScaleRRF:
		return "rrf"
	default:
		return "unknown"
	}
}

// ScoredCandidate is a fragment position paired with a relevance score.
// Position refers to the fragment's index in the corpus snapshot the score
// was computed against; it is only meaningful alongside that snapshot.
type ScoredCandidate struct {
	Position int
	Score    float64
	Scale    ScoreScale
}

// Evidence is a retrieved fragment returned alongside an answer.
type Evidence struct {
	Text       string  `json:"text"`
	SourceFile string  `json:"source_file"`
	Page       int     `json:"page"`
	Score      float64 `json:"score"`
}

// AskResponse is the response for an ask request.
type AskResponse struct {
	Query   string `json:"query"`
	Answer  string `json:"answer"`
	Intent  Intent `json:"intent"`
	Refused bool   `json:"refused"`
	// Evidence lists the fragments the answer was grounded on, best first.
	// Empty for greetings, refusals, and questions with no usable evidence.
	Evidence  []Evidence `json:"evidence"`
	QueryTime int64      `json:"query_time_ms"`
}
