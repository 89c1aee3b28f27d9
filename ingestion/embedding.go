package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/cvrank/ai"
	"github.com/poiesic/cvrank/core"
	"github.com/poiesic/cvrank/storage"
	"github.com/tmc/langchaingo/textsplitter"
)

// embeddingProcessor chunks a document's text, embeds every chunk and
// replaces the document's stored chunks.
type embeddingProcessor struct {
	chunkRepository storage.ChunkRepository
	embedder        ai.Embedder
	splitter        textsplitter.TextSplitter
	dimensions      int
	logger          *slog.Logger
}

var _ processor = (*embeddingProcessor)(nil)

func newEmbeddingProcessor(
	chunkRepository storage.ChunkRepository,
	embedder ai.Embedder,
	splitter textsplitter.TextSplitter,
	dimensions int,
	logger *slog.Logger,
) (processor, error) {
	if chunkRepository == nil {
		return nil, fmt.Errorf("chunk repository required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		chunkRepository: chunkRepository,
		embedder:        embedder,
		splitter:        splitter,
		dimensions:      dimensions,
		logger:          logger.With("processor", "embeddings"),
	}, nil
}

func (ep *embeddingProcessor) process(ctx context.Context, doc *core.CVDocument) error {
	texts, err := ep.splitter.SplitText(doc.RawText)
	if err != nil {
		return fmt.Errorf("failed to split document: %w", err)
	}
	if len(texts) == 0 {
		texts = []string{doc.RawText}
	}

	ep.logger.Debug("generating embeddings for chunks", "document", doc.ID, "chunks", len(texts))
	embeddings, err := ep.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		ep.logger.Error("error generating embeddings", "document", doc.ID, "err", err)
		return fmt.Errorf("%w: embed: %w", core.ErrUpstreamService, err)
	}
	if len(embeddings) != len(texts) {
		return fmt.Errorf("%w: embedding result mismatch. expected %d, received %d",
			core.ErrUpstreamService, len(texts), len(embeddings))
	}

	now := time.Now().UTC()
	chunks := make([]*core.Chunk, len(texts))
	for i, text := range texts {
		if err := core.ValidateEmbedding(embeddings[i], ep.dimensions); err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
		chunks[i] = &core.Chunk{
			ID:         core.ChunkID(doc.ID, i),
			DocumentID: doc.ID,
			Index:      i,
			Text:       text,
			Embedding:  core.NormalizeVector(embeddings[i]),
			CreatedAt:  now,
		}
	}

	return ep.chunkRepository.ReplaceChunks(ctx, doc.ID, chunks...)
}
