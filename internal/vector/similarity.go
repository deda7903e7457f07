// Package vector provides cosine similarity search over fragment vectors.
package vector

import (
	"math"
	"sort"

	"github.com/hayasui/kotae/internal/models"
)

// Cosine returns the cosine similarity of two vectors. Each norm carries a
// small epsilon so zero vectors yield a near-zero score instead of NaN.
// Vectors of different lengths score zero.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	return dot / ((math.Sqrt(na) + 1e-10) * (math.Sqrt(nb) + 1e-10))
}

// Search returns up to limit fragments ranked by cosine similarity to the
// query vector, best first. Fragments without a vector are skipped rather
// than scored.
func Search(fragments []models.Fragment, queryVector []float32, limit int) []models.ScoredCandidate {
	if len(fragments) == 0 {
		return nil
	}
	var out []models.ScoredCandidate
	for i := range fragments {
		if fragments[i].Vector == nil {
			continue
		}
		out = append(out, models.ScoredCandidate{
			Position: i,
			Score:    Cosine(queryVector, fragments[i].Vector),
			Scale:    models.ScaleCosine,
		})
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
