package mock

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/poiesic/cvrank/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	e := NewMockEmbedder(8)
	ctx := context.Background()

	a, err := e.EmbedText(ctx, "python backend")
	require.NoError(t, err)
	b, err := e.EmbedText(ctx, "python backend")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 8)
	assert.Equal(t, 2, e.CallCount())

	var sum float64
	for _, v := range a {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
}

func TestMockEmbedder_Hooks(t *testing.T) {
	boom := errors.New("boom")
	e := NewMockEmbedder(0).WithEmbedTextFunc(func(ctx context.Context, text string) ([]float32, error) {
		return nil, boom
	})

	_, err := e.EmbedTexts(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, DefaultDimensions, e.Dimensions())

	e.Reset()
	assert.Equal(t, 0, e.CallCount())
	vecs, err := e.EmbedTexts(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vecs, 2)
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider(4).(*MockProvider)
	ctx := context.Background()

	split, err := p.Splitter().Split(ctx, "  go developer ")
	require.NoError(t, err)
	assert.Equal(t, core.JobRequirementSplit{Skill: "go developer", Education: "go developer", Experience: "go developer"}, split)

	q, err := p.Rewriter().Rewrite(ctx, "query")
	require.NoError(t, err)
	assert.Equal(t, "query", q)

	ext, err := p.Extractor().Extract(ctx, " cv text ")
	require.NoError(t, err)
	assert.Equal(t, "cv text", ext.Text)

	assert.Equal(t, 1, p.GetMockSplitter().CallCount())
	assert.Equal(t, 1, p.GetMockRewriter().CallCount())
	assert.Equal(t, 1, p.GetMockExtractor().CallCount())
	assert.NoError(t, p.Close())
}
