package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/cvrank/ai"
	"google.golang.org/genai"
)

// Provider implements ai.AIProvider on the Gemini API.
type Provider struct {
	embedder  *Embedder
	splitter  *Splitter
	rewriter  *Rewriter
	extractor *Extractor
	logger    *slog.Logger
}

// NewProvider creates a Gemini-backed provider.
//
// Returns ai.AIProvider interface to enforce abstraction.
func NewProvider(ctx context.Context, config *ai.Config) (ai.AIProvider, error) {
	if config.Provider != ai.ProviderGemini {
		return nil, errors.New("gemini: config provider must be gemini")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newProvider(client.Models, config), nil
}

func newProvider(m models, config *ai.Config) *Provider {
	logger := slog.Default().With("component", "gemini-provider")
	gen := &generator{models: m, modelName: config.ChatModel, logger: logger}
	return &Provider{
		embedder:  &Embedder{models: m, modelName: config.EmbeddingModel, dimensions: config.EmbeddingDim},
		splitter:  &Splitter{gen: gen},
		rewriter:  &Rewriter{gen: gen},
		extractor: &Extractor{gen: gen},
		logger:    logger,
	}
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Splitter returns the job offer splitting service.
func (p *Provider) Splitter() ai.QuerySplitter {
	return p.splitter
}

// Rewriter returns the query rewriting service.
func (p *Provider) Rewriter() ai.QueryRewriter {
	return p.rewriter
}

// Extractor returns the CV extraction service.
func (p *Provider) Extractor() ai.CVExtractor {
	return p.extractor
}

// Close is a no-op; the genai client holds no resources that need releasing.
func (p *Provider) Close() error {
	p.logger.Debug("closing Gemini provider")
	return nil
}
