package badger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/poiesic/cvrank/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"senior", "python", "developer", "5", "years"},
		tokenize("A Senior PYTHON developer, with 5+ years!"))
	assert.Equal(t, []string{"file"}, tokenize("ﬁle"))
	assert.Empty(t, tokenize("the and of"))
	assert.Equal(t, []string{"developers"}, tokenize("Developers"), "tokens are not stemmed")
}

func TestQueryTerms(t *testing.T) {
	assert.Equal(t, []string{"go", "backend"}, queryTerms("Go backend go"))
}

func TestRankDocument(t *testing.T) {
	terms := []string{"python"}

	t.Run("missing term ranks zero", func(t *testing.T) {
		rank := rankDocument([]string{"python", "rust"}, map[string]int{"python": 3}, nil, weightA, weightA)
		assert.Zero(t, rank)
	})

	t.Run("single occurrence", func(t *testing.T) {
		rank := rankDocument(terms, map[string]int{"python": 1}, nil, weightA, weightA)
		assert.InDelta(t, 1/rankNormalizer, rank, 1e-9)
	})

	t.Run("repeated occurrences add less each time", func(t *testing.T) {
		once := rankDocument(terms, map[string]int{"python": 1}, nil, weightA, weightA)
		twice := rankDocument(terms, map[string]int{"python": 2}, nil, weightA, weightA)
		assert.InDelta(t, (1+0.25)/rankNormalizer, twice, 1e-9)
		assert.Greater(t, twice, once)
	})

	t.Run("field weights", func(t *testing.T) {
		textOnly := rankDocument(terms, map[string]int{"python": 1}, nil, weightB, weightA)
		metaOnly := rankDocument(terms, nil, map[string]int{"python": 1}, weightB, weightA)
		assert.InDelta(t, weightB/rankNormalizer, textOnly, 1e-9)
		assert.InDelta(t, weightA/rankNormalizer, metaOnly, 1e-9)
	})

	t.Run("averaged over terms", func(t *testing.T) {
		rank := rankDocument([]string{"python", "go"}, map[string]int{"python": 1, "go": 1}, nil, weightA, weightA)
		assert.InDelta(t, 1/rankNormalizer, rank, 1e-9)
	})
}

func TestFieldWeights(t *testing.T) {
	tests := []struct {
		category   core.Category
		text, meta float64
	}{
		{core.CategorySkill, weightA, weightA},
		{core.CategoryExperience, weightA, weightB},
		{core.CategoryEducation, weightB, weightA},
		{core.Category("other"), weightA, weightA},
	}
	for _, tt := range tests {
		text, meta := fieldWeights(tt.category)
		assert.Equal(t, tt.text, text, tt.category)
		assert.Equal(t, tt.meta, meta, tt.category)
	}
}

func TestSearchMetadata(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	heavy := addDoc(t, s, "Python developer. Python services. Python tooling.", nil)
	light := addDoc(t, s, "Java developer who dabbled in Python", nil)
	addDoc(t, s, "Rust developer", nil)
	metaOnly := addDoc(t, s, "Software engineer", func(d *core.CVDocument) {
		d.Metadata.Skills.HardSkills = []string{"python"}
	})

	hits, err := s.SearchMetadata(ctx, "python", core.CategorySkill, 10)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, heavy.ID, hits[0].DocumentID)
	for _, h := range hits {
		assert.Greater(t, h.Similarity, 0.0)
	}
	ids := []uuid.UUID{hits[0].DocumentID, hits[1].DocumentID, hits[2].DocumentID}
	assert.Contains(t, ids, light.ID)
	assert.Contains(t, ids, metaOnly.ID)

	t.Run("all terms required", func(t *testing.T) {
		hits, err := s.SearchMetadata(ctx, "python java", core.CategorySkill, 10)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, light.ID, hits[0].DocumentID)
	})

	t.Run("limit", func(t *testing.T) {
		hits, err := s.SearchMetadata(ctx, "python", core.CategorySkill, 1)
		require.NoError(t, err)
		assert.Len(t, hits, 1)
	})

	t.Run("stop words only", func(t *testing.T) {
		hits, err := s.SearchMetadata(ctx, "the of and", core.CategorySkill, 10)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("education favors metadata", func(t *testing.T) {
		hits, err := s.SearchMetadata(ctx, "python", core.CategoryEducation, 10)
		require.NoError(t, err)
		require.NotEmpty(t, hits)
		assert.Equal(t, metaOnly.ID, hits[0].DocumentID)
	})
}
