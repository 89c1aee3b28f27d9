package ai

import (
	"context"

	"github.com/poiesic/cvrank/core"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// QuerySplitter decomposes a job offer into per-category search queries.
// Implementations must not invent requirements absent from the input.
type QuerySplitter interface {
	Split(ctx context.Context, jobOfferText string) (core.JobRequirementSplit, error)
}

// QueryRewriter rewrites a sub-query into a retrieval query.
// Every explicit hard constraint is preserved verbatim and numeric
// bounds are never relaxed or inverted.
type QueryRewriter interface {
	Rewrite(ctx context.Context, query string) (string, error)
}

// CVExtractor turns raw CV text into cleaned full text and structured metadata.
type CVExtractor interface {
	// Extract returns the extraction for a CV. SchemaErrors lists metadata
	// fields that did not match the expected schema; they are not fatal.
	Extract(ctx context.Context, rawText string) (*Extraction, error)
}

// Extraction is the parsed output of a CVExtractor.
type Extraction struct {
	Text         string
	Metadata     core.CVMetadata
	SchemaErrors []string
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// All services returned by a provider share its configuration.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Splitter returns the job offer splitting service.
	Splitter() QuerySplitter

	// Rewriter returns the retrieval query rewriting service.
	Rewriter() QueryRewriter

	// Extractor returns the CV extraction service.
	Extractor() CVExtractor

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
