package mock

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/poiesic/cvrank/ai"
)

// MockExtractor is a test double for ai.CVExtractor.
type MockExtractor struct {
	// ExtractFunc is called by Extract if set.
	// If nil, the input is returned as text with empty metadata.
	ExtractFunc func(ctx context.Context, rawText string) (*ai.Extraction, error)

	callCount atomic.Int64
}

// NewMockExtractor creates a mock extractor with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockExtractor().
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{}
}

// Extract returns the configured extraction.
func (m *MockExtractor) Extract(ctx context.Context, rawText string) (*ai.Extraction, error) {
	m.callCount.Add(1)

	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, rawText)
	}
	return &ai.Extraction{Text: strings.TrimSpace(rawText)}, nil
}

// CallCount returns the number of times Extract was called.
func (m *MockExtractor) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and custom functions.
func (m *MockExtractor) Reset() {
	m.callCount.Store(0)
	m.ExtractFunc = nil
}
