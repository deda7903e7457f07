package ai

import (
	"context"
	"math"
	"testing"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	e := NewMockEmbedder(64)
	ctx := context.Background()

	a, err := e.Embed(ctx, []string{"retrieval augmented generation"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	b, err := e.Embed(ctx, []string{"retrieval augmented generation"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(a) != 1 || len(a[0]) != 64 {
		t.Fatalf("unexpected shape: %d vectors, %d dims", len(a), len(a[0]))
	}
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatalf("same text produced different vectors at dim %d", i)
		}
	}
}

func TestMockEmbedder_UnitNorm(t *testing.T) {
	e := NewMockEmbedder(32)
	vecs, err := e.Embed(context.Background(), []string{"alpha", "beta", "gamma"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	for i, v := range vecs {
		var sum float64
		for _, x := range v {
			sum += float64(x) * float64(x)
		}
		if math.Abs(math.Sqrt(sum)-1.0) > 1e-5 {
			t.Errorf("vector %d norm = %f, want 1.0", i, math.Sqrt(sum))
		}
	}
}

func TestMockEmbedder_EmptyInput(t *testing.T) {
	e := NewMockEmbedder(16)
	vecs, err := e.Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vecs) != 0 {
		t.Errorf("expected no vectors, got %d", len(vecs))
	}
}

func TestMockEmbedder_DistinctTexts(t *testing.T) {
	e := NewMockEmbedder(64)
	vecs, err := e.Embed(context.Background(), []string{"first text", "completely different"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	same := true
	for i := range vecs[0] {
		if vecs[0][i] != vecs[1][i] {
			same = false
			break
		}
	}
	if same {
		t.Error("distinct texts produced identical vectors")
	}
}
