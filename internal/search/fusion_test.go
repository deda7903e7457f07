package search

import (
	"math"
	"testing"

	"github.com/hayasui/kotae/internal/models"
)

func cands(positions ...int) []models.ScoredCandidate {
	out := make([]models.ScoredCandidate, len(positions))
	for i, p := range positions {
		out[i] = models.ScoredCandidate{Position: p, Score: float64(100 - i), Scale: models.ScaleBM25}
	}
	return out
}

func TestFuseRRF_SingleList(t *testing.T) {
	got := FuseRRF(cands(7, 3, 9), nil, 10)
	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(got))
	}
	wantOrder := []int{7, 3, 9}
	for i, w := range wantOrder {
		if got[i].Position != w {
			t.Errorf("position[%d] = %d, want %d", i, got[i].Position, w)
		}
		wantScore := 1.0 / float64(60+i+1)
		if math.Abs(got[i].Score-wantScore) > 1e-12 {
			t.Errorf("score[%d] = %.12f, want %.12f", i, got[i].Score, wantScore)
		}
		if got[i].Scale != models.ScaleRRF {
			t.Errorf("scale[%d] = %v, want rrf", i, got[i].Scale)
		}
	}
}

func TestFuseRRF_SumsContributions(t *testing.T) {
	a := cands(1, 2)
	b := cands(2, 3)
	got := FuseRRF(a, b, 10)
	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(got))
	}
	// position 2 appears at rank 2 in a and rank 1 in b
	if got[0].Position != 2 {
		t.Fatalf("best position = %d, want 2", got[0].Position)
	}
	want := 1.0/62.0 + 1.0/61.0
	if math.Abs(got[0].Score-want) > 1e-12 {
		t.Errorf("fused score = %.12f, want %.12f", got[0].Score, want)
	}
}

func TestFuseRRF_IgnoresInputScores(t *testing.T) {
	a := []models.ScoredCandidate{{Position: 1, Score: 9999.0, Scale: models.ScaleBM25}}
	b := []models.ScoredCandidate{{Position: 2, Score: 0.0001, Scale: models.ScaleCosine}}
	got := FuseRRF(a, b, 10)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	// both are rank 1 in their lists, so both get 1/61 regardless of input scores
	if math.Abs(got[0].Score-got[1].Score) > 1e-12 {
		t.Errorf("rank-1 candidates should tie: %f vs %f", got[0].Score, got[1].Score)
	}
}

func TestFuseRRF_TieBrokenByPosition(t *testing.T) {
	a := cands(5)
	b := cands(3)
	got := FuseRRF(a, b, 10)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].Position != 3 || got[1].Position != 5 {
		t.Errorf("tied candidates should order by position: got %d, %d", got[0].Position, got[1].Position)
	}
}

func TestFuseRRF_Truncates(t *testing.T) {
	got := FuseRRF(cands(1, 2, 3, 4, 5), nil, 2)
	if len(got) != 2 {
		t.Errorf("expected truncation to 2, got %d", len(got))
	}
}

func TestFuseRRF_Empty(t *testing.T) {
	if got := FuseRRF(nil, nil, 10); got != nil {
		t.Errorf("empty inputs should return nil, got %v", got)
	}
}
