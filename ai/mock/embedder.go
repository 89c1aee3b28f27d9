package mock

import (
	"context"
	"hash/fnv"
	"math/rand/v2"
	"sync/atomic"

	"github.com/poiesic/cvrank/core"
)

// DefaultDimensions is used when NewMockEmbedder gets a non-positive size.
const DefaultDimensions = 384

// MockEmbedder is an ai.Embedder test double. By default every text maps to
// a fixed unit vector derived from its hash; the Func fields override that.
type MockEmbedder struct {
	// EmbedTextFunc replaces the per-text vector generation.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)
	// EmbedTextsFunc replaces EmbedTexts entirely.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	dimensions int
	calls      atomic.Int64
}

// NewMockEmbedder returns the concrete type so tests can inspect CallCount.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &MockEmbedder{dimensions: dimensions}
}

// WithEmbedTextFunc installs fn as the per-text hook.
func (m *MockEmbedder) WithEmbedTextFunc(fn func(ctx context.Context, text string) ([]float32, error)) *MockEmbedder {
	m.EmbedTextFunc = fn
	return m
}

func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.calls.Add(1)
	return m.vectorFor(ctx, text)
}

// EmbedTexts counts as a single call regardless of len(texts).
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls.Add(1)
	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		v, err := m.vectorFor(ctx, text)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (m *MockEmbedder) vectorFor(ctx context.Context, text string) ([]float32, error) {
	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}
	return hashVector(text, m.dimensions), nil
}

func (m *MockEmbedder) Dimensions() int { return m.dimensions }

func (m *MockEmbedder) CallCount() int { return int(m.calls.Load()) }

// Reset zeroes the call counter and removes both hooks.
func (m *MockEmbedder) Reset() {
	m.calls.Store(0)
	m.EmbedTextFunc, m.EmbedTextsFunc = nil, nil
}

// hashVector seeds a PCG stream with the text's FNV-64a hash and normalizes
// the draws. Components are non-negative, so any two vectors have positive
// cosine similarity.
func hashVector(text string, dim int) []float32 {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	rng := rand.New(rand.NewPCG(seed, seed>>1|1))
	v := make([]float32, dim)
	for i := range v {
		v[i] = rng.Float32()
	}
	return core.NormalizeVector(v)
}
