package ai

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"

	"github.com/hayasui/kotae/internal/models"
)

const systemPrompt = "You are a question answering assistant. Answer using only the " +
	"provided context. Cite sources as [source p.N]. If the context does not contain " +
	"the answer, say you do not know."

// MistralEmbedder produces embeddings through the Mistral API. Inputs are
// split into fixed-size batches that run concurrently on a worker pool;
// results are reassembled in input order.
type MistralEmbedder struct {
	embedder  embeddings.Embedder
	batchSize int
	pool      *ants.Pool
	logger    *zap.Logger
}

// EmbedderOption configures a MistralEmbedder.
type EmbedderOption func(*MistralEmbedder)

// WithEmbedderLogger sets the logger for batch reporting.
func WithEmbedderLogger(logger *zap.Logger) EmbedderOption {
	return func(e *MistralEmbedder) { e.logger = logger }
}

// NewMistralEmbedder creates an embedder for the given credential and model.
// Construction fails with ErrMissingAPIKey when apiKey is empty.
func NewMistralEmbedder(apiKey, baseURL, model string, batchSize int, opts ...EmbedderOption) (*MistralEmbedder, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if batchSize <= 0 {
		batchSize = 32
	}
	client, err := openai.New(
		openai.WithBaseURL(baseURL),
		openai.WithToken(apiKey),
		openai.WithEmbeddingModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create embedding client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}

	e := &MistralEmbedder{
		embedder:  embedder,
		batchSize: batchSize,
		pool:      pool,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Embed returns one vector per input text, in input order. An empty input
// returns an empty result without an API call.
func (e *MistralEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	type batch struct {
		start int
		texts []string
	}
	var batches []batch
	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batches = append(batches, batch{start: start, texts: texts[start:end]})
	}
	e.logger.Debug("embedding texts",
		zap.Int("texts", len(texts)), zap.Int("batches", len(batches)))

	vectors := make([][]float32, len(texts))
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, b := range batches {
		b := b
		wg.Add(1)
		submitErr := e.pool.Submit(func() {
			defer wg.Done()
			vecs, err := e.embedder.EmbedDocuments(ctx, b.texts)
			if err == nil && len(vecs) != len(b.texts) {
				err = fmt.Errorf("embedding count mismatch: got %d for %d texts", len(vecs), len(b.texts))
			}
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			copy(vectors[b.start:], vecs)
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = submitErr
			}
			mu.Unlock()
		}
	}
	wg.Wait()
	if firstErr != nil {
		return nil, fmt.Errorf("embed batch: %w", firstErr)
	}
	return vectors, nil
}

// Close releases the worker pool.
func (e *MistralEmbedder) Close() {
	e.pool.Release()
}

// MistralGenerator produces grounded answers through the Mistral chat API.
type MistralGenerator struct {
	client      llms.Model
	temperature float64
}

// NewMistralGenerator creates a generator for the given credential and model.
// Construction fails with ErrMissingAPIKey when apiKey is empty.
func NewMistralGenerator(apiKey, baseURL, model string, temperature float64) (*MistralGenerator, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := openai.New(
		openai.WithBaseURL(baseURL),
		openai.WithToken(apiKey),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create chat client: %w", err)
	}
	return &MistralGenerator{client: client, temperature: temperature}, nil
}

// Generate answers query from the evidence fragments. Empty evidence returns
// the canned no-evidence answer without an API call.
func (g *MistralGenerator) Generate(ctx context.Context, query string, evidence []models.Evidence) (string, error) {
	if len(evidence) == 0 {
		return NoEvidenceAnswer, nil
	}

	var b strings.Builder
	b.WriteString("Context:\n")
	for _, ev := range evidence {
		fmt.Fprintf(&b, "[%s p.%d]: %s\n\n", ev.SourceFile, ev.Page, ev.Text)
	}
	b.WriteString("Question: ")
	b.WriteString(query)

	content := []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(b.String())},
		},
	}
	response, err := g.client.GenerateContent(ctx, content, llms.WithTemperature(g.temperature))
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("generate answer: no choices returned")
	}
	return strings.TrimSpace(response.Choices[0].Content), nil
}
