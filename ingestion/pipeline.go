package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/cvrank/ai"
	"github.com/poiesic/cvrank/core"
	"github.com/poiesic/cvrank/retry"
	"github.com/poiesic/cvrank/storage"
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	// DefaultChunkSize is the maximum chunk length in characters.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is the number of characters shared by adjacent chunks.
	DefaultChunkOverlap = 200
)

// Store is the storage a Pipeline writes to.
type Store interface {
	storage.DocumentRepository
	storage.ChunkRepository
	storage.UploadRepository

	// Dimensions returns the embedding size chunks must have.
	Dimensions() int
}

// Source is one CV file to ingest.
type Source struct {
	Filename string
	Data     []byte
}

// Pipeline orchestrates the ingestion of CV files.
// Batch items are processed concurrently on a worker pool.
type Pipeline struct {
	store         Store
	pool          *ants.Pool
	extractProc   processor
	embeddingProc processor
	maxAttempts   int
	retryDelay    time.Duration
	chunkSize     int
	chunkOverlap  int
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent batch items.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if p.pool != nil {
			p.pool.Release()
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithRetry sets how many times a batch item is attempted and the base
// backoff delay between attempts.
// Default is retry.DefaultMaxAttempts and retry.DefaultBaseDelay.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts < 1 || baseDelay < 0 {
			return fmt.Errorf("%w: retry attempts %d, delay %v", ErrInvalidOption, maxAttempts, baseDelay)
		}
		p.maxAttempts = maxAttempts
		p.retryDelay = baseDelay
		return nil
	}
}

// WithChunking sets the chunk size and overlap in characters.
// Default is DefaultChunkSize and DefaultChunkOverlap.
func WithChunking(size, overlap int) Option {
	return func(p *Pipeline) error {
		if size < 1 || overlap < 0 || overlap >= size {
			return fmt.Errorf("%w: chunk size %d, overlap %d", ErrInvalidOption, size, overlap)
		}
		p.chunkSize = size
		p.chunkOverlap = overlap
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(store Store, provider ai.AIProvider, opts ...Option) (*Pipeline, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		store:        store,
		pool:         pool,
		maxAttempts:  retry.DefaultMaxAttempts,
		retryDelay:   retry.DefaultBaseDelay,
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "ingestion")

	extractProc, err := newExtractionProcessor(provider.Extractor(), p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(p.chunkSize),
		textsplitter.WithChunkOverlap(p.chunkOverlap),
	)
	embeddingProc, err := newEmbeddingProcessor(store, provider.Embedder(), splitter, store.Dimensions(), p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}

	p.extractProc = extractProc
	p.embeddingProc = embeddingProc
	return p, nil
}

// IngestDocument stores a CV with its embedded chunks.
//
// A source whose checksum is already stored returns the existing document
// without calling any AI service. If chunking or embedding fails the new
// document is removed again so a later attempt starts clean.
func (p *Pipeline) IngestDocument(ctx context.Context, src Source) (*core.CVDocument, error) {
	text := strings.TrimSpace(strings.ToValidUTF8(string(src.Data), ""))
	if text == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptySource, src.Filename)
	}

	checksum := core.Checksum(src.Data)
	existing, err := p.store.FindByChecksum(ctx, checksum)
	if err == nil {
		p.logger.Info("skipping already ingested cv", "source", src.Filename, "document", existing.ID)
		return existing, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up checksum: %w", err)
	}

	doc := &core.CVDocument{
		SourceFile:     src.Filename,
		SourceChecksum: checksum,
		RawText:        text,
	}
	if err := p.extractProc.process(ctx, doc); err != nil {
		return nil, err
	}

	added, err := p.store.AddDocument(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	if err := p.embeddingProc.process(ctx, added); err != nil {
		if delErr := p.store.DeleteDocument(ctx, added.ID); delErr != nil {
			p.logger.Error("error removing partially ingested document", "document", added.ID, "err", delErr)
		}
		return nil, err
	}

	p.logger.Info("ingested cv", "source", src.Filename, "document", added.ID, "candidate", added.CandidateName)
	return added, nil
}

// Release releases resources including the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
