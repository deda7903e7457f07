// Package corpus maintains the in-memory retrieval snapshot: the ordered
// fragment slice plus the lexical index built over it.
package corpus

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/hayasui/kotae/internal/keyword"
	"github.com/hayasui/kotae/internal/models"
)

// Loader loads all fragments in corpus order.
type Loader interface {
	Load(ctx context.Context) ([]models.Fragment, error)
}

// Snapshot is an immutable view of the corpus. Candidate positions from
// lexical and semantic searches index into Fragments, so scores computed
// against one snapshot must never be resolved against another.
type Snapshot struct {
	Fragments []models.Fragment
	Lexical   *keyword.Index
}

// Manager owns the current snapshot and swaps in a fresh one on rebuild.
type Manager struct {
	loader Loader
	k1     float64
	b      float64
	logger *zap.Logger

	mu       sync.RWMutex
	snapshot *Snapshot
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for rebuild reporting.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates a manager seeded with an empty snapshot. Call Rebuild
// to load the stored corpus.
func NewManager(loader Loader, k1, b float64, opts ...Option) *Manager {
	m := &Manager{
		loader: loader,
		k1:     k1,
		b:      b,
		logger: zap.NewNop(),
		snapshot: &Snapshot{
			Lexical: keyword.NewIndex(nil, k1, b),
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Current returns the active snapshot. Queries hold the returned snapshot
// for their whole duration so fusion and re-ranking stay position-consistent
// even if a rebuild swaps the corpus mid-query.
func (m *Manager) Current() *Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// Rebuild loads all fragments and swaps in a snapshot with a fresh lexical
// index. The lock is held only for the pointer swap, never while loading or
// indexing, so concurrent queries keep the previous snapshot. On error the
// previous snapshot stays active.
func (m *Manager) Rebuild(ctx context.Context) error {
	fragments, err := m.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load fragments: %w", err)
	}
	snap := &Snapshot{
		Fragments: fragments,
		Lexical:   keyword.NewIndex(fragments, m.k1, m.b),
	}

	m.mu.Lock()
	m.snapshot = snap
	m.mu.Unlock()

	m.logger.Info("corpus snapshot rebuilt", zap.Int("fragments", len(fragments)))
	return nil
}

// Size returns the number of fragments in the active snapshot.
func (m *Manager) Size() int {
	return len(m.Current().Fragments)
}
