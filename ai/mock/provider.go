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


package mock

import "github.com/poiesic/cvrank/ai"

// MockProvider is a test double for ai.AIProvider.
type MockProvider struct {
	embedder  *MockEmbedder
	splitter  *MockSplitter
	rewriter  *MockRewriter
	extractor *MockExtractor
}

// NewMockProvider creates a new mock provider with default mock services
// producing vectors of the given size.
//
// Returns ai.AIProvider interface for consistency with production constructors.
// Use the GetMock accessors to reach concrete types for test assertions.
func NewMockProvider(dimensions int) ai.AIProvider {
	return &MockProvider{
		embedder:  NewMockEmbedder(dimensions),
		splitter:  NewMockSplitter(),
		rewriter:  NewMockRewriter(),
		extractor: NewMockExtractor(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// Nil services are replaced with defaults.
func NewMockProviderWithServices(embedder *MockEmbedder, splitter *MockSplitter, extractor *MockExtractor) *MockProvider {
	if embedder == nil {
		embedder = NewMockEmbedder(0)
	}
	if splitter == nil {
		splitter = NewMockSplitter()
	}
	if extractor == nil {
		extractor = NewMockExtractor()
	}
	return &MockProvider{
		embedder:  embedder,
		splitter:  splitter,
		rewriter:  NewMockRewriter(),
		extractor: extractor,
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Splitter returns the mock splitter.
func (p *MockProvider) Splitter() ai.QuerySplitter {
	return p.splitter
}

// Rewriter returns the mock rewriter.
func (p *MockProvider) Rewriter() ai.QueryRewriter {
	return p.rewriter
}

// Extractor returns the mock extractor.
func (p *MockProvider) Extractor() ai.CVExtractor {
	return p.extractor
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockSplitter returns the underlying mock splitter for test assertions.
func (p *MockProvider) GetMockSplitter() *MockSplitter {
	return p.splitter
}

// GetMockRewriter returns the underlying mock rewriter for test assertions.
func (p *MockProvider) GetMockRewriter() *MockRewriter {
	return p.rewriter
}

// GetMockExtractor returns the underlying mock extractor for test assertions.
func (p *MockProvider) GetMockExtractor() *MockExtractor {
	return p.extractor
}
