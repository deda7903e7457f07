package search

import (
	"sort"

	"github.com/hayasui/kotae/internal/models"
	"github.com/hayasui/kotae/internal/vector"
)

// Rerank orders candidates by cosine similarity between the query vector
// and each candidate fragment's vector, keeping the best topK. Candidates
// whose position falls outside the fragment slice or whose fragment has no
// vector are dropped. Ties keep the incoming candidate order.
func Rerank(candidates []models.ScoredCandidate, queryVector []float32, fragments []models.Fragment, topK int) []models.ScoredCandidate {
	if len(candidates) == 0 || len(fragments) == 0 {
		return nil
	}
	var out []models.ScoredCandidate
	for _, c := range candidates {
		if c.Position < 0 || c.Position >= len(fragments) {
			continue
		}
		f := &fragments[c.Position]
		if f.Vector == nil {
			continue
		}
		out = append(out, models.ScoredCandidate{
			Position: c.Position,
			Score:    vector.Cosine(queryVector, f.Vector),
			Scale:    models.ScaleCosine,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out
}
