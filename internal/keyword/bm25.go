// Package keyword provides lexical BM25 scoring over corpus fragments.
package keyword

import (
	"math"
	"sort"
	"strings"

	"github.com/hayasui/kotae/internal/models"
)

// Tokenize lowercases text and splits it into maximal runs of ASCII letters
// and digits. Every other byte is a separator.
func Tokenize(text string) []string {
	lower := strings.ToLower(text)
	var tokens []string
	start := -1
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, lower[start:i])
			start = -1
		}
	}
	if start >= 0 {
		tokens = append(tokens, lower[start:])
	}
	return tokens
}

// Index scores fragments with Okapi BM25. Candidate positions refer to
// indexes into the fragment slice the index was built from, so an Index is
// only valid together with that snapshot.
type Index struct {
	k1        float64
	b         float64
	docTF     []map[string]int
	docLen    []int
	avgDocLen float64
	df        map[string]int
	n         int
}

// NewIndex builds a BM25 index over the fragments' text.
func NewIndex(fragments []models.Fragment, k1, b float64) *Index {
	idx := &Index{
		k1:     k1,
		b:      b,
		docTF:  make([]map[string]int, len(fragments)),
		docLen: make([]int, len(fragments)),
		df:     make(map[string]int),
		n:      len(fragments),
	}
	var totalLen int
	for i := range fragments {
		tokens := Tokenize(fragments[i].Text)
		tf := make(map[string]int, len(tokens))
		for _, t := range tokens {
			tf[t]++
		}
		idx.docTF[i] = tf
		idx.docLen[i] = len(tokens)
		totalLen += len(tokens)
		for t := range tf {
			idx.df[t]++
		}
	}
	if idx.n > 0 {
		idx.avgDocLen = float64(totalLen) / float64(idx.n)
	}
	return idx
}

// IDF returns the inverse document frequency of term, or zero when the term
// does not occur in the corpus.
func (idx *Index) IDF(term string) float64 {
	df := idx.df[term]
	if df == 0 {
		return 0
	}
	return math.Log((float64(idx.n)-float64(df)+0.5)/(float64(df)+0.5) + 1.0)
}

// Score returns the BM25 score of the fragment at position for the query
// tokens. Duplicate query tokens contribute once.
func (idx *Index) Score(queryTokens []string, position int) float64 {
	if position < 0 || position >= idx.n {
		return 0
	}
	tf := idx.docTF[position]
	dl := float64(idx.docLen[position])
	norm := 1 - idx.b + idx.b*dl/(idx.avgDocLen+1e-10)

	seen := make(map[string]bool, len(queryTokens))
	total := 0.0
	for _, term := range queryTokens {
		if seen[term] {
			continue
		}
		seen[term] = true
		f := float64(tf[term])
		if f == 0 {
			continue
		}
		total += idx.IDF(term) * (f * (idx.k1 + 1)) / (f + idx.k1*norm)
	}
	return total
}

// Search returns up to limit fragments with positive BM25 scores for the
// query, best first. Ties keep corpus order.
func (idx *Index) Search(query string, limit int) []models.ScoredCandidate {
	if idx.n == 0 {
		return nil
	}
	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}

	var out []models.ScoredCandidate
	for i := 0; i < idx.n; i++ {
		s := idx.Score(queryTokens, i)
		if s > 0 {
			out = append(out, models.ScoredCandidate{Position: i, Score: s, Scale: models.ScaleBM25})
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Size returns the number of fragments in the index.
func (idx *Index) Size() int {
	return idx.n
}
