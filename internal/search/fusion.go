// Package search provides hybrid retrieval: lexical and semantic searches
// fused by reciprocal rank and re-ranked against the query vector.
package search

import (
	"sort"

	"github.com/hayasui/kotae/internal/models"
)

// rrfK dampens the contribution gap between neighboring ranks. 60 is the
// standard constant from the reciprocal rank fusion literature.
const rrfK = 60

// FuseRRF merges two ranked candidate lists by reciprocal rank fusion.
// Each list contributes 1/(60+rank) per position, with rank counted from 1
// in list order; a position named by both lists sums both contributions.
// Input scores are ignored, so the two lists may use different score scales.
// The fused list is sorted by total descending, ties broken by position
// ascending, and truncated to limit.
func FuseRRF(a, b []models.ScoredCandidate, limit int) []models.ScoredCandidate {
	totals := make(map[int]float64)
	for rank, c := range a {
		totals[c.Position] += 1.0 / float64(rrfK+rank+1)
	}
	for rank, c := range b {
		totals[c.Position] += 1.0 / float64(rrfK+rank+1)
	}
	if len(totals) == 0 {
		return nil
	}

	out := make([]models.ScoredCandidate, 0, len(totals))
	for pos, total := range totals {
		out = append(out, models.ScoredCandidate{Position: pos, Score: total, Scale: models.ScaleRRF})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Position < out[j].Position
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
