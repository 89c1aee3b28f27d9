package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/cvrank/ai"
	"github.com/poiesic/cvrank/core"
	"github.com/poiesic/cvrank/storage"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultRetrievalDepth is the number of hits requested per category retrieval.
	DefaultRetrievalDepth = 25

	// DefaultRetrievalTimeout bounds each category retrieval.
	DefaultRetrievalTimeout = 30 * time.Second
)

// Store is the read access search needs from storage.
type Store interface {
	storage.VectorStore
	GetDocuments(ctx context.Context, ids ...uuid.UUID) ([]*core.CVDocument, error)
	ListDocumentMetadata(ctx context.Context) ([]core.DocumentMetadata, error)
}

// Searcher ranks stored CVs against a job offer.
type Searcher struct {
	store     Store
	splitter  ai.QuerySplitter
	retriever *Retriever
	depth     int
	timeout   time.Duration
	logger    *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithRetrievalDepth sets how many hits each category retrieval requests.
func WithRetrievalDepth(depth int) Option {
	return func(s *Searcher) error {
		if depth < 1 {
			return fmt.Errorf("%w: retrieval depth must be positive, got %d", ErrInvalidOption, depth)
		}
		s.depth = depth
		return nil
	}
}

// WithRetrievalTimeout bounds each category retrieval.
func WithRetrievalTimeout(timeout time.Duration) Option {
	return func(s *Searcher) error {
		if timeout <= 0 {
			return fmt.Errorf("%w: retrieval timeout must be positive, got %s", ErrInvalidOption, timeout)
		}
		s.timeout = timeout
		return nil
	}
}

// NewSearcher creates a new searcher. Call Close to release its worker pools.
func NewSearcher(store Store, provider ai.AIProvider, opts ...Option) (*Searcher, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		store:    store,
		splitter: provider.Splitter(),
		depth:    DefaultRetrievalDepth,
		timeout:  DefaultRetrievalTimeout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	retriever, err := newRetriever(store, provider.Embedder(), provider.Rewriter(), s.depth, s.timeout, s.logger)
	if err != nil {
		return nil, err
	}
	s.retriever = retriever
	return s, nil
}

// Close releases the retrieval worker pools.
func (s *Searcher) Close() {
	s.retriever.Release()
}

// Run ranks candidates for req and returns at most req.TopK of them, best first.
func (s *Searcher) Run(ctx context.Context, req core.SearchRequest) ([]core.ScoredCandidate, error) {
	return s.RunWithMonitor(ctx, req, nil)
}

// RunWithMonitor is Run with a monitor receiving callbacks at each stage.
func (s *Searcher) RunWithMonitor(ctx context.Context, req core.SearchRequest, monitor SearchMonitor) ([]core.ScoredCandidate, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if err := core.ValidateSearchRequest(req); err != nil {
		return nil, err
	}

	monitor.Start(req.JobOfferText)

	split, err := s.splitter.Split(ctx, req.JobOfferText)
	if err != nil {
		s.logger.Error("error splitting job offer", "err", err)
		return nil, fmt.Errorf("%w: split: %w", core.ErrUpstreamService, err)
	}
	monitor.AfterSplit(split)

	constraint := ParseExperienceConstraint(split.Experience)
	monitor.AfterConstraintParse(constraint)

	var (
		semantic, metadata core.RetrievalResult
		experience         map[uuid.UUID]float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		semantic, err = s.retriever.RetrieveAll(gctx, split, StrategySemantic)
		return err
	})
	g.Go(func() error {
		var err error
		metadata, err = s.retriever.RetrieveAll(gctx, split, StrategyMetadata)
		return err
	})
	g.Go(func() error {
		if constraint.IsUnbounded() {
			return nil
		}
		docs, err := s.store.ListDocumentMetadata(gctx)
		if err != nil {
			return fmt.Errorf("%w: list metadata: %w", core.ErrUpstreamService, err)
		}
		experience = ExperienceScores(docs, constraint)
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("error retrieving candidates", "err", err)
		return nil, err
	}
	monitor.AfterRetrieval(semantic, metadata)

	table := MergeOccurrences(FindOccurrences(semantic), FindOccurrences(metadata))
	table = ApplyExperienceBoost(table, experience)
	monitor.AfterMerge(table)

	table = Normalize(table)
	monitor.AfterNormalize(table)

	if len(table) == 0 {
		results := []core.ScoredCandidate{}
		monitor.Finish(results)
		return results, nil
	}

	ids := make([]uuid.UUID, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	docs, err := s.store.GetDocuments(ctx, ids...)
	if err != nil {
		s.logger.Error("error retrieving documents", "documentCount", len(ids), "err", err)
		return nil, fmt.Errorf("%w: get documents: %w", core.ErrUpstreamService, err)
	}

	results := Deduplicate(CalculateScores(table, req.Weights, docs, s.logger))
	if len(results) > req.TopK {
		results = results[:req.TopK]
	}
	monitor.Finish(results)

	s.logger.Debug("search complete", "candidates", len(table), "results", len(results))
	return results, nil
}
