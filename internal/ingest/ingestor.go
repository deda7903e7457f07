// Package ingest turns document files into embedded, stored corpus fragments.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hayasui/kotae/internal/ai"
	"github.com/hayasui/kotae/internal/chunk"
	"github.com/hayasui/kotae/internal/corpus"
	"github.com/hayasui/kotae/internal/extract"
	"github.com/hayasui/kotae/internal/models"
	"github.com/hayasui/kotae/internal/store"
)

// Ingestor runs the ingestion pipeline: extract, chunk, embed, store, and
// rebuild the retrieval snapshot.
type Ingestor struct {
	store     store.Store
	embedder  ai.Embedder
	manager   *corpus.Manager
	extractor *extract.Extractor
	chunker   *chunk.Chunker
	logger    *zap.Logger
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithLogger sets the logger for ingestion reporting.
func WithLogger(logger *zap.Logger) Option {
	return func(ing *Ingestor) { ing.logger = logger }
}

// NewIngestor creates an ingestor with the given dependencies.
func NewIngestor(st store.Store, embedder ai.Embedder, manager *corpus.Manager, extractor *extract.Extractor, chunker *chunk.Chunker, opts ...Option) *Ingestor {
	ing := &Ingestor{
		store:     st,
		embedder:  embedder,
		manager:   manager,
		extractor: extractor,
		chunker:   chunker,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// IngestFile extracts, chunks, embeds, and stores the document at path,
// then rebuilds the retrieval snapshot. Re-ingesting a path replaces its
// previous fragments. Returns the number of fragments stored.
func (ing *Ingestor) IngestFile(ctx context.Context, path string) (int, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return 0, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("not a regular file: %s", absPath)
	}

	pages, err := ing.extractor.Extract(absPath)
	if err != nil {
		return 0, fmt.Errorf("extract %s: %w", absPath, err)
	}
	return ing.ingestPages(ctx, pages)
}

// IngestText stores raw text under the given source name as a single page 1.
func (ing *Ingestor) IngestText(ctx context.Context, source, text string) (int, error) {
	if strings.TrimSpace(text) == "" {
		return 0, fmt.Errorf("ingest %s: %w", source, extract.ErrNoContent)
	}
	pages := []models.PageText{{Text: text, SourceFile: source, Page: 1}}
	return ing.ingestPages(ctx, pages)
}

func (ing *Ingestor) ingestPages(ctx context.Context, pages []models.PageText) (int, error) {
	batchID := uuid.New().String()
	source := pages[0].SourceFile

	fragments := ing.chunker.Chunk(pages)
	if len(fragments) == 0 {
		return 0, fmt.Errorf("ingest %s: %w", source, extract.ErrNoContent)
	}
	ing.logger.Info("ingesting document",
		zap.String("batch", batchID),
		zap.String("source", source),
		zap.Int("pages", len(pages)),
		zap.Int("fragments", len(fragments)))

	texts := make([]string, len(fragments))
	for i := range fragments {
		texts[i] = fragments[i].Text
	}
	vectors, err := ing.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed fragments: %w", err)
	}
	if len(vectors) != len(fragments) {
		return 0, fmt.Errorf("embed fragments: got %d vectors for %d fragments", len(vectors), len(fragments))
	}
	for i := range fragments {
		fragments[i].Vector = vectors[i]
	}

	// Replace any previous fragments for the same source so re-ingesting a
	// changed file does not duplicate its content.
	if removed, err := ing.store.DeleteSource(ctx, source); err != nil {
		return 0, fmt.Errorf("delete previous fragments: %w", err)
	} else if removed > 0 {
		ing.logger.Info("replaced previous fragments",
			zap.String("batch", batchID),
			zap.String("source", source),
			zap.Int64("removed", removed))
	}
	if err := ing.store.Save(ctx, fragments); err != nil {
		return 0, fmt.Errorf("save fragments: %w", err)
	}
	if err := ing.manager.Rebuild(ctx); err != nil {
		return 0, fmt.Errorf("rebuild snapshot: %w", err)
	}
	ing.logger.Info("document ingested",
		zap.String("batch", batchID),
		zap.String("source", source),
		zap.Int("fragments", len(fragments)))
	return len(fragments), nil
}

// Remove deletes all fragments of a source and rebuilds the snapshot.
// Returns how many fragments were removed.
func (ing *Ingestor) Remove(ctx context.Context, source string) (int64, error) {
	removed, err := ing.store.DeleteSource(ctx, source)
	if err != nil {
		return 0, fmt.Errorf("delete source: %w", err)
	}
	if err := ing.manager.Rebuild(ctx); err != nil {
		return removed, fmt.Errorf("rebuild snapshot: %w", err)
	}
	ing.logger.Info("document removed",
		zap.String("source", source), zap.Int64("fragments", removed))
	return removed, nil
}
