// Package store persists corpus fragments and their vectors.
package store

import (
	"context"

	"github.com/hayasui/kotae/internal/models"
)

// Stats summarizes the stored corpus.
type Stats struct {
	Fragments int64 `json:"fragments"`
	Sources   int64 `json:"sources"`
}

// Store persists fragments in corpus order.
type Store interface {
	// Load returns all fragments ordered by sequence index.
	Load(ctx context.Context) ([]models.Fragment, error)
	// Save appends fragments, rebasing their sequence indexes onto the end
	// of the stored ordering. The rebased indexes are written back into the
	// given slice.
	Save(ctx context.Context, fragments []models.Fragment) error
	// DeleteSource removes every fragment of a source file, returning how
	// many were removed.
	DeleteSource(ctx context.Context, sourceFile string) (int64, error)
	// Sources lists the distinct source files in the corpus.
	Sources(ctx context.Context) ([]string, error)
	// Stats counts stored fragments and distinct sources.
	Stats(ctx context.Context) (*Stats, error)
	Close() error
}
