package ai

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"

	"github.com/hayasui/kotae/internal/models"
	"github.com/hayasui/kotae/pkg/utils"
)

// MockEmbedder is a deterministic in-process embedder. The same text always
// maps to the same unit-length vector, so similarity comparisons behave
// consistently across runs without any API access.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder returns a mock embedder producing vectors of the given
// width.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 64
	}
	return &MockEmbedder{dimensions: dimensions}
}

// Embed returns one hash-derived unit vector per text, in input order.
func (e *MockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.embedOne(text)
	}
	return vectors, nil
}

func (e *MockEmbedder) embedOne(text string) []float32 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	vec := make([]float32, e.dimensions)
	for i := range vec {
		vec[i] = float32(math.Sin(float64(seed%100003)*float64(i+1)) * 0.1)
	}
	utils.NormalizeL2(vec)
	return vec
}

// Dimensions returns the vector width.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op.
func (e *MockEmbedder) Close() {}

// MockGenerator answers by quoting the best evidence fragment. It stands in
// for the chat API in tests and offline mode.
type MockGenerator struct{}

// NewMockGenerator returns a MockGenerator.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate returns a citation-shaped answer built from the top evidence
// fragment, or the canned no-evidence answer when evidence is empty.
func (g *MockGenerator) Generate(ctx context.Context, query string, evidence []models.Evidence) (string, error) {
	if len(evidence) == 0 {
		return NoEvidenceAnswer, nil
	}
	top := evidence[0]
	return fmt.Sprintf("%s [%s p.%d]", top.Text, top.SourceFile, top.Page), nil
}
