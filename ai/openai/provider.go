// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"fmt"
	"log/slog"

	"github.com/poiesic/cvrank/ai"
)

// Provider bundles the embedding and chat services backed by one
// OpenAI-compatible endpoint configuration.
type Provider struct {
	config    *ai.Config
	embedder  *Embedder
	splitter  *Splitter
	rewriter  *Rewriter
	extractor *Extractor
	logger    *slog.Logger
}

var _ ai.AIProvider = (*Provider)(nil)

// NewProvider validates config and builds every service from it.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	p := &Provider{
		config: config,
		logger: slog.Default().With("component", "openai-provider"),
	}

	var err error
	if p.embedder, err = newEmbedder(config); err != nil {
		return nil, fmt.Errorf("building embedder: %w", err)
	}
	if p.splitter, err = newSplitter(config); err != nil {
		return nil, fmt.Errorf("building splitter: %w", err)
	}
	if p.rewriter, err = newRewriter(config); err != nil {
		return nil, fmt.Errorf("building rewriter: %w", err)
	}
	if p.extractor, err = newExtractor(config); err != nil {
		return nil, fmt.Errorf("building extractor: %w", err)
	}

	p.logger.Debug("provider ready",
		"chat_model", config.ChatModel,
		"embedding_model", config.EmbeddingModel,
		"embedding_dim", config.EmbeddingDim)
	return p, nil
}

func (p *Provider) Embedder() ai.Embedder      { return p.embedder }
func (p *Provider) Splitter() ai.QuerySplitter { return p.splitter }
func (p *Provider) Rewriter() ai.QueryRewriter { return p.rewriter }
func (p *Provider) Extractor() ai.CVExtractor  { return p.extractor }

// Close is a no-op; the HTTP clients hold no resources that need releasing.
func (p *Provider) Close() error {
	return nil
}
