package mock

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/poiesic/cvrank/core"
)

// MockSplitter is a test double for ai.QuerySplitter.
type MockSplitter struct {
	// SplitFunc is called by Split if set.
	// If nil, the trimmed input is used for every category.
	SplitFunc func(ctx context.Context, jobOfferText string) (core.JobRequirementSplit, error)

	callCount atomic.Int64
}

// NewMockSplitter creates a mock splitter with default behavior.
func NewMockSplitter() *MockSplitter {
	return &MockSplitter{}
}

// Split returns the configured split.
func (m *MockSplitter) Split(ctx context.Context, jobOfferText string) (core.JobRequirementSplit, error) {
	m.callCount.Add(1)

	if m.SplitFunc != nil {
		return m.SplitFunc(ctx, jobOfferText)
	}

	q := strings.TrimSpace(jobOfferText)
	return core.JobRequirementSplit{Skill: q, Education: q, Experience: q}, nil
}

// CallCount returns the number of times Split was called.
func (m *MockSplitter) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and custom functions.
func (m *MockSplitter) Reset() {
	m.callCount.Store(0)
	m.SplitFunc = nil
}

// MockRewriter is a test double for ai.QueryRewriter.
// By default it returns the query unchanged.
type MockRewriter struct {
	RewriteFunc func(ctx context.Context, query string) (string, error)

	callCount atomic.Int64
}

// NewMockRewriter creates an identity rewriter.
func NewMockRewriter() *MockRewriter {
	return &MockRewriter{}
}

// Rewrite returns the rewritten query.
func (m *MockRewriter) Rewrite(ctx context.Context, query string) (string, error) {
	m.callCount.Add(1)

	if m.RewriteFunc != nil {
		return m.RewriteFunc(ctx, query)
	}
	return query, nil
}

// CallCount returns the number of times Rewrite was called.
func (m *MockRewriter) CallCount() int {
	return int(m.callCount.Load())
}
