package vector

import (
	"math"
	"testing"

	"github.com/hayasui/kotae/internal/models"
)

func TestCosine(t *testing.T) {
	t.Run("self similarity is one", func(t *testing.T) {
		v := []float32{0.3, -0.5, 0.8}
		got := Cosine(v, v)
		if math.Abs(got-1.0) > 1e-6 {
			t.Errorf("self cosine = %.9f, want ~1.0", got)
		}
	})
	t.Run("orthogonal vectors", func(t *testing.T) {
		got := Cosine([]float32{1, 0}, []float32{0, 1})
		if math.Abs(got) > 1e-6 {
			t.Errorf("orthogonal cosine = %f, want ~0", got)
		}
	})
	t.Run("opposite vectors", func(t *testing.T) {
		got := Cosine([]float32{1, 2}, []float32{-1, -2})
		if math.Abs(got+1.0) > 1e-6 {
			t.Errorf("opposite cosine = %f, want ~-1", got)
		}
	})
	t.Run("zero vector does not produce NaN", func(t *testing.T) {
		got := Cosine([]float32{0, 0}, []float32{1, 1})
		if math.IsNaN(got) {
			t.Error("zero vector produced NaN")
		}
		if got != 0 {
			t.Errorf("zero vector cosine = %f, want 0", got)
		}
	})
	t.Run("mismatched lengths score zero", func(t *testing.T) {
		if got := Cosine([]float32{1, 2, 3}, []float32{1, 2}); got != 0 {
			t.Errorf("mismatched lengths = %f, want 0", got)
		}
	})
}

func TestSearch(t *testing.T) {
	fragments := []models.Fragment{
		{Text: "a", SequenceIndex: 0, Vector: []float32{1, 0}},
		{Text: "b", SequenceIndex: 1, Vector: []float32{0, 1}},
		{Text: "c", SequenceIndex: 2, Vector: []float32{0.9, 0.1}},
	}
	got := Search(fragments, []float32{1, 0}, 10)
	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(got))
	}
	if got[0].Position != 0 {
		t.Errorf("best match position = %d, want 0", got[0].Position)
	}
	if got[1].Position != 2 {
		t.Errorf("second match position = %d, want 2", got[1].Position)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("not sorted descending at %d", i)
		}
	}
	for _, c := range got {
		if c.Scale != models.ScaleCosine {
			t.Errorf("scale = %v, want cosine", c.Scale)
		}
	}
}

func TestSearch_SkipsFragmentsWithoutVectors(t *testing.T) {
	fragments := []models.Fragment{
		{Text: "a", SequenceIndex: 0, Vector: nil},
		{Text: "b", SequenceIndex: 1, Vector: []float32{1, 0}},
	}
	got := Search(fragments, []float32{1, 0}, 10)
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if got[0].Position != 1 {
		t.Errorf("position = %d, want 1", got[0].Position)
	}
}

func TestSearch_Limit(t *testing.T) {
	fragments := []models.Fragment{
		{Vector: []float32{1, 0}},
		{Vector: []float32{0.5, 0.5}},
		{Vector: []float32{0, 1}},
	}
	got := Search(fragments, []float32{1, 0}, 2)
	if len(got) != 2 {
		t.Errorf("limit not applied: got %d", len(got))
	}
}

func TestSearch_EmptyCorpus(t *testing.T) {
	if got := Search(nil, []float32{1}, 5); got != nil {
		t.Errorf("empty corpus should return nil, got %v", got)
	}
}
