package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hayasui/kotae/internal/ai"
	"github.com/hayasui/kotae/internal/config"
	"github.com/hayasui/kotae/internal/corpus"
	"github.com/hayasui/kotae/internal/models"
	"github.com/hayasui/kotae/internal/querygate"
	"github.com/hayasui/kotae/internal/vector"
	"github.com/hayasui/kotae/pkg/utils"
)

const (
	greetingAnswer = "Hello! Ask me a question about your documents and I'll answer from them."
	chatAnswer     = "I answer questions grounded in your ingested documents. " +
		"Try asking about something they cover."
)

// Engine answers questions over the corpus: gate, retrieve, fuse, rerank,
// generate.
type Engine struct {
	gate      *querygate.Gate
	embedder  ai.Embedder
	generator ai.Generator
	manager   *corpus.Manager
	cfg       *config.RetrievalConfig
	logger    *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for query reporting.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates an engine with the given dependencies.
func NewEngine(gate *querygate.Gate, embedder ai.Embedder, generator ai.Generator, manager *corpus.Manager, cfg *config.RetrievalConfig, opts ...Option) *Engine {
	e := &Engine{
		gate:      gate,
		embedder:  embedder,
		generator: generator,
		manager:   manager,
		cfg:       cfg,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Ask answers a query. Greetings and chatter short-circuit with canned
// answers; screened queries return a refusal; knowledge queries run the full
// retrieval pipeline and ground the generated answer in the returned
// evidence.
func (e *Engine) Ask(ctx context.Context, query string) (*models.AskResponse, error) {
	startTime := time.Now()
	resp := &models.AskResponse{Query: query, Evidence: []models.Evidence{}}

	resp.Intent = e.gate.Classify(query)
	switch resp.Intent {
	case models.IntentGreeting:
		resp.Answer = greetingAnswer
		resp.QueryTime = time.Since(startTime).Milliseconds()
		return resp, nil
	case models.IntentGeneralChat:
		resp.Answer = chatAnswer
		resp.QueryTime = time.Since(startTime).Milliseconds()
		return resp, nil
	}

	if msg, refused := e.gate.CheckRefusal(query); refused {
		e.logger.Info("query refused", zap.String("query", query))
		resp.Answer = msg
		resp.Refused = true
		resp.QueryTime = time.Since(startTime).Milliseconds()
		return resp, nil
	}

	rewritten := e.gate.Rewrite(query)
	if rewritten != query {
		e.logger.Debug("query rewritten",
			zap.String("query", query), zap.String("rewritten", rewritten))
	}

	vecs, err := e.embedder.Embed(ctx, []string{rewritten})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors for 1 text", len(vecs))
	}
	queryVector := vecs[0]

	evidence := e.retrieve(rewritten, queryVector)
	if len(evidence) == 0 {
		e.logger.Info("insufficient evidence", zap.String("query", query))
		resp.Answer = ai.NoEvidenceAnswer
		resp.QueryTime = time.Since(startTime).Milliseconds()
		return resp, nil
	}

	answer, err := e.generator.Generate(ctx, query, evidence)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	resp.Answer = answer
	resp.Evidence = evidence
	resp.QueryTime = time.Since(startTime).Milliseconds()
	e.logger.Debug("top evidence",
		zap.String("source", evidence[0].SourceFile),
		zap.Float64("score", evidence[0].Score),
		zap.String("text", utils.Truncate(evidence[0].Text, 120)))
	e.logger.Info("query answered",
		zap.String("query", query),
		zap.Int("evidence", len(evidence)),
		zap.Int64("ms", resp.QueryTime))
	return resp, nil
}

// retrieve runs both searches over one snapshot, fuses the rankings, and
// re-ranks to the final evidence set. An empty result means the best
// candidate fell below the evidence threshold (or the corpus is empty).
func (e *Engine) retrieve(query string, queryVector []float32) []models.Evidence {
	snap := e.manager.Current()
	if len(snap.Fragments) == 0 {
		return nil
	}

	// Both searches read the same immutable snapshot, so they can run in
	// parallel without changing the observable result.
	var lexical, semantic []models.ScoredCandidate
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		lexical = snap.Lexical.Search(query, e.cfg.CandidateLimit)
	}()
	go func() {
		defer wg.Done()
		semantic = vector.Search(snap.Fragments, queryVector, e.cfg.CandidateLimit)
	}()
	wg.Wait()

	fused := FuseRRF(semantic, lexical, e.cfg.CandidateLimit)
	top := Rerank(fused, queryVector, snap.Fragments, e.cfg.TopK)
	if len(top) == 0 || top[0].Score < e.cfg.MinEvidenceScore {
		return nil
	}

	evidence := make([]models.Evidence, 0, len(top))
	for _, c := range top {
		f := &snap.Fragments[c.Position]
		evidence = append(evidence, models.Evidence{
			Text:       f.Text,
			SourceFile: f.SourceFile,
			Page:       f.Page,
			Score:      c.Score,
		})
	}
	return evidence
}
