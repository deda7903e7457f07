// Package ai provides embedding and answer generation backed by the Mistral
// API, plus deterministic in-process stand-ins for offline use.
package ai

import (
	"context"
	"errors"

	"github.com/hayasui/kotae/internal/models"
)

// ErrMissingAPIKey is returned when a Mistral client is constructed without
// a credential.
var ErrMissingAPIKey = errors.New("mistral api key is required")

// NoEvidenceAnswer is the canned reply when generation has nothing to
// ground an answer on.
const NoEvidenceAnswer = "I don't have enough information to answer that."

// Embedder turns texts into vectors, one per input text, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Close()
}

// Generator produces an answer to query grounded in the evidence fragments.
type Generator interface {
	Generate(ctx context.Context, query string, evidence []models.Evidence) (string, error)
}
