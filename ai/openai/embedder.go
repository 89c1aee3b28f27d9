package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/cvrank/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// embedBatchSize caps how many texts go into one embeddings request.
const embedBatchSize = 64

// Embedder produces vectors through an OpenAI-compatible embeddings endpoint.
type Embedder struct {
	client     embeddings.Embedder
	dimensions int
	logger     *slog.Logger
}

func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	llm, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken(token(config.APIKey)),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}
	client, err := embeddings.NewEmbedder(llm,
		embeddings.WithStripNewLines(true),
		embeddings.WithBatchSize(embedBatchSize),
	)
	if err != nil {
		return nil, err
	}

	return &Embedder{
		client:     client,
		dimensions: config.EmbeddingDim,
		logger:     slog.Default().With("component", "openai-embedder"),
	}, nil
}

// NewEmbedder returns a standalone embedder for config.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedText embeds a single text.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(vectors))
	}
	return vectors[0], nil
}

// EmbedTexts embeds texts in order. Vectors whose length differs from the
// configured dimension are returned as-is and logged; callers validate them.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors, err := e.client.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Error("embedding request failed", "texts", len(texts), "err", err)
		return nil, err
	}
	for i, v := range vectors {
		if len(v) != e.dimensions {
			e.logger.Warn("unexpected embedding dimension", "index", i, "got", len(v), "want", e.dimensions)
			break
		}
	}
	e.logger.Debug("embedded texts", "texts", len(texts))
	return vectors, nil
}
