package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/cvrank/ai"
	"github.com/poiesic/cvrank/core"
	"github.com/poiesic/cvrank/retry"
	"github.com/poiesic/cvrank/storage"
)

// BatchProcessor re-embeds batches of chunks.
type BatchProcessor struct {
	repo           storage.ChunkRepository
	embedder       ai.Embedder
	dimensions     int
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// dimensions: vector size the store accepts
// maxRetries: maximum number of attempts for each embedding call
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.ChunkRepository, embedder ai.Embedder, dimensions, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:           repo,
		embedder:       embedder,
		dimensions:     dimensions,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process embeds the text of each chunk and stores the normalized vectors.
// No chunk is written if any vector has the wrong dimensionality.
func (bp *BatchProcessor) Process(ctx context.Context, chunks []*core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	var embeddings [][]float32
	err := retry.WithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(chunks) {
		return fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingCountMismatch, len(chunks), len(embeddings))
	}

	updated := make([]*core.Chunk, len(chunks))
	for i, chunk := range chunks {
		if err := core.ValidateEmbedding(embeddings[i], bp.dimensions); err != nil {
			return fmt.Errorf("chunk %s: %w", chunk.ID, err)
		}
		c := *chunk
		c.Embedding = core.NormalizeVector(embeddings[i])
		updated[i] = &c
	}

	if err := bp.repo.UpdateChunks(ctx, updated...); err != nil {
		return fmt.Errorf("failed to update chunks: %w", err)
	}
	return nil
}
