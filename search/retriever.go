package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/cvrank/ai"
	"github.com/poiesic/cvrank/core"
	"github.com/poiesic/cvrank/storage"
)

// Strategy selects how a category query is retrieved.
type Strategy int

const (
	// StrategySemantic rewrites and embeds the query, then runs a vector search.
	StrategySemantic Strategy = iota
	// StrategyMetadata runs a weighted full-text rank over document text and metadata.
	StrategyMetadata
)

func (s Strategy) String() string {
	switch s {
	case StrategySemantic:
		return "semantic"
	case StrategyMetadata:
		return "metadata"
	}
	return "unknown"
}

// Retriever runs the per-category retrievals of one strategy concurrently.
// Each strategy has its own pool with one worker per category.
type Retriever struct {
	store        storage.VectorStore
	embedder     ai.Embedder
	rewriter     ai.QueryRewriter
	semanticPool *ants.Pool
	metadataPool *ants.Pool
	depth        int
	timeout      time.Duration
	logger       *slog.Logger
}

type categoryResult struct {
	category core.Category
	hits     []core.ChunkHit
	err      error
}

func newRetriever(store storage.VectorStore, embedder ai.Embedder, rewriter ai.QueryRewriter,
	depth int, timeout time.Duration, logger *slog.Logger) (*Retriever, error) {
	semanticPool, err := ants.NewPool(len(core.Categories))
	if err != nil {
		return nil, err
	}
	metadataPool, err := ants.NewPool(len(core.Categories))
	if err != nil {
		semanticPool.Release()
		return nil, err
	}

	return &Retriever{
		store:        store,
		embedder:     embedder,
		rewriter:     rewriter,
		semanticPool: semanticPool,
		metadataPool: metadataPool,
		depth:        depth,
		timeout:      timeout,
		logger:       logger,
	}, nil
}

// Release stops both worker pools.
func (r *Retriever) Release() {
	r.semanticPool.Release()
	r.metadataPool.Release()
}

// RetrieveAll runs the strategy for every category of split and waits for all
// of them. Results are keyed by category regardless of completion order. Any
// failing category fails the whole call.
func (r *Retriever) RetrieveAll(ctx context.Context, split core.JobRequirementSplit, strategy Strategy) (core.RetrievalResult, error) {
	pool := r.semanticPool
	if strategy == StrategyMetadata {
		pool = r.metadataPool
	}

	results := make(chan categoryResult, len(core.Categories))
	for _, category := range core.Categories {
		query := split.Query(category)
		err := pool.Submit(func() {
			hits, err := r.Retrieve(ctx, strategy, category, query)
			results <- categoryResult{category: category, hits: hits, err: err}
		})
		if err != nil {
			results <- categoryResult{category: category, err: err}
		}
	}

	out := make(core.RetrievalResult, len(core.Categories))
	var errs []error
	for range core.Categories {
		res := <-results
		if res.err != nil {
			errs = append(errs, fmt.Errorf("%s %s retrieval: %w", strategy, res.category, res.err))
			continue
		}
		out[res.category] = res.hits
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// Retrieve runs one category query under the retrieval timeout.
// A blank query returns no hits without calling any collaborator.
func (r *Retriever) Retrieve(ctx context.Context, strategy Strategy, category core.Category, query string) ([]core.ChunkHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []core.ChunkHit{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	var (
		hits []core.ChunkHit
		err  error
	)
	if strategy == StrategyMetadata {
		hits, err = r.store.SearchMetadata(ctx, query, category, r.depth)
		if err != nil {
			err = fmt.Errorf("%w: metadata search: %w", core.ErrUpstreamService, err)
		}
	} else {
		hits, err = r.semantic(ctx, query)
	}
	if err != nil {
		return nil, err
	}

	r.logger.Debug("category retrieved", "strategy", strategy, "category", category,
		"hits", len(hits), "elapsed", time.Since(start))
	return hits, nil
}

func (r *Retriever) semantic(ctx context.Context, query string) ([]core.ChunkHit, error) {
	request := ai.CategoryQuery(query)

	rewritten, err := r.rewriter.Rewrite(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("%w: rewrite: %w", core.ErrUpstreamService, err)
	}
	if strings.TrimSpace(rewritten) == "" {
		rewritten = request
	}

	vector, err := r.embedder.EmbedText(ctx, rewritten)
	if err != nil {
		return nil, fmt.Errorf("%w: embed: %w", core.ErrUpstreamService, err)
	}
	if err := core.ValidateEmbedding(vector, r.store.Dimensions()); err != nil {
		return nil, err
	}

	hits, err := r.store.Search(ctx, vector, r.depth)
	if err != nil {
		if errors.Is(err, core.ErrDimensionMismatch) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: vector search: %w", core.ErrUpstreamService, err)
	}
	return hits, nil
}
