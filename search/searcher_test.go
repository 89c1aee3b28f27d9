package search

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/cvrank/ai/mock"
	"github.com/poiesic/cvrank/core"
	"github.com/poiesic/cvrank/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDims = 3

var defaultWeights = core.Weights{Skill: 0.4, Education: 0.3, Experience: 0.3}

func newTestStore(t *testing.T) *badger.Store {
	t.Helper()
	store, err := badger.NewMemoryStore(testDims)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestProvider() *mock.MockProvider {
	embedder := mock.NewMockEmbedder(testDims).WithEmbedTextFunc(func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	})
	return mock.NewMockProviderWithServices(embedder, nil, nil)
}

func newTestSearcher(t *testing.T, store Store, provider *mock.MockProvider, opts ...Option) *Searcher {
	t.Helper()
	searcher, err := NewSearcher(store, provider, opts...)
	require.NoError(t, err)
	t.Cleanup(searcher.Close)
	return searcher
}

type candidateFixture struct {
	name  string
	email string
	years float64
	text  string
	vec   []float32
}

func seedCandidate(t *testing.T, store *badger.Store, c candidateFixture) *core.CVDocument {
	t.Helper()
	ctx := context.Background()

	years := c.years
	doc, err := store.AddDocument(ctx, &core.CVDocument{
		CandidateName: c.name,
		Email:         c.email,
		RawText:       c.text,
		Metadata: core.CVMetadata{
			CandidateName: &c.name,
			Contact:       core.Contact{Email: &c.email},
			Seniority:     core.Seniority{YearsExperienceEstimate: &years},
		},
	})
	require.NoError(t, err)

	require.NoError(t, store.ReplaceChunks(ctx, doc.ID, &core.Chunk{
		ID:         core.ChunkID(doc.ID, 0),
		DocumentID: doc.ID,
		Index:      0,
		Text:       c.text,
		Embedding:  c.vec,
	}))
	return doc
}

func TestNewSearcher(t *testing.T) {
	store := newTestStore(t)
	provider := newTestProvider()

	t.Run("valid configuration", func(t *testing.T) {
		searcher, err := NewSearcher(store, provider)
		require.NoError(t, err)
		defer searcher.Close()
		assert.Equal(t, DefaultRetrievalDepth, searcher.depth)
		assert.Equal(t, DefaultRetrievalTimeout, searcher.timeout)
	})

	t.Run("with options", func(t *testing.T) {
		searcher, err := NewSearcher(store, provider,
			WithLogger(slog.Default()),
			WithRetrievalDepth(5),
			WithRetrievalTimeout(time.Second),
		)
		require.NoError(t, err)
		defer searcher.Close()
		assert.Equal(t, 5, searcher.depth)
		assert.Equal(t, time.Second, searcher.timeout)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		searcher, err := NewSearcher(store, provider, WithLogger(nil))
		require.NoError(t, err)
		defer searcher.Close()
		assert.NotNil(t, searcher.logger)
	})

	t.Run("invalid options", func(t *testing.T) {
		_, err := NewSearcher(store, provider, WithRetrievalDepth(0))
		assert.ErrorIs(t, err, ErrInvalidOption)

		_, err = NewSearcher(store, provider, WithRetrievalTimeout(0))
		assert.ErrorIs(t, err, ErrInvalidOption)
	})

	t.Run("nil store", func(t *testing.T) {
		_, err := NewSearcher(nil, provider)
		assert.Equal(t, ErrStoreRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewSearcher(store, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})
}

func TestRun_EndToEnd(t *testing.T) {
	store := newTestStore(t)
	provider := newTestProvider()
	provider.GetMockSplitter().SplitFunc = func(ctx context.Context, text string) (core.JobRequirementSplit, error) {
		return core.JobRequirementSplit{
			Skill:      "python backend",
			Experience: "senior, 5+ years",
		}, nil
	}

	junior := seedCandidate(t, store, candidateFixture{
		name: "Alice Rossi", email: "alice@example.com", years: 2,
		text: "Alice Rossi. Python backend developer.",
		vec:  []float32{0.9, float32(math.Sqrt(1 - 0.81)), 0},
	})
	mid := seedCandidate(t, store, candidateFixture{
		name: "Bruno Bianchi", email: "bruno@example.com", years: 6,
		text: "Bruno Bianchi. Python backend developer.",
		vec:  []float32{0.8, 0.6, 0},
	})
	senior := seedCandidate(t, store, candidateFixture{
		name: "Carla Verdi", email: "carla@example.com", years: 9,
		text: "Carla Verdi. Python backend developer.",
		vec:  []float32{1, 0, 0},
	})

	searcher := newTestSearcher(t, store, provider)
	results, err := searcher.Run(context.Background(), core.SearchRequest{
		JobOfferText: "senior backend engineer, Python, 5+ years",
		Weights:      defaultWeights,
		TopK:         10,
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	rank := map[string]int{}
	for i, r := range results {
		rank[r.DocumentID.String()] = i
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 1.0)
	}
	assert.Less(t, rank[senior.ID.String()], rank[junior.ID.String()])
	assert.Less(t, rank[mid.ID.String()], rank[junior.ID.String()])
	assert.Equal(t, "Carla Verdi", results[0].CandidateName)
	assert.Equal(t, "carla@example.com", results[0].CandidateEmail)
	assert.Contains(t, results[0].CVText, "Python backend")

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestRun_DeduplicatesAndTruncates(t *testing.T) {
	store := newTestStore(t)
	provider := newTestProvider()

	seedCandidate(t, store, candidateFixture{
		name: "Mario Rossi", email: "mario@example.com", years: 3,
		text: "Mario Rossi golang", vec: []float32{1, 0, 0},
	})
	seedCandidate(t, store, candidateFixture{
		name: "Mario Rossi", email: "MARIO@example.com", years: 3,
		text: "Mario Rossi golang resume v2", vec: []float32{0, 1, 0},
	})
	seedCandidate(t, store, candidateFixture{
		name: "Sara Neri", email: "sara@example.com", years: 3,
		text: "Sara Neri golang", vec: []float32{0.5, 0.5, 0},
	})

	searcher := newTestSearcher(t, store, provider)
	req := core.SearchRequest{JobOfferText: "golang", Weights: defaultWeights, TopK: 10}

	results, err := searcher.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	req.TopK = 1
	results, err = searcher.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestRun_EmptyStore(t *testing.T) {
	searcher := newTestSearcher(t, newTestStore(t), newTestProvider())

	results, err := searcher.Run(context.Background(), core.SearchRequest{
		JobOfferText: "python developer",
		Weights:      defaultWeights,
		TopK:         5,
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRun_Validation(t *testing.T) {
	provider := newTestProvider()
	searcher := newTestSearcher(t, newTestStore(t), provider)
	ctx := context.Background()

	_, err := searcher.Run(ctx, core.SearchRequest{JobOfferText: "  ", Weights: defaultWeights, TopK: 5})
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.ErrorIs(t, err, core.ErrEmptyJobOffer)

	_, err = searcher.Run(ctx, core.SearchRequest{JobOfferText: "go", Weights: core.Weights{Skill: 0.2, Education: 0.2, Experience: 0.2}, TopK: 5})
	assert.ErrorIs(t, err, core.ErrInvalidWeights)

	_, err = searcher.Run(ctx, core.SearchRequest{JobOfferText: "go", Weights: defaultWeights, TopK: 0})
	assert.ErrorIs(t, err, core.ErrInvalidTopK)

	assert.Equal(t, 0, provider.GetMockSplitter().CallCount())
}

func TestRun_BlankSubQueriesSkipRetrieval(t *testing.T) {
	provider := newTestProvider()
	provider.GetMockSplitter().SplitFunc = func(ctx context.Context, text string) (core.JobRequirementSplit, error) {
		return core.JobRequirementSplit{}, nil
	}
	searcher := newTestSearcher(t, newTestStore(t), provider)

	results, err := searcher.Run(context.Background(), core.SearchRequest{JobOfferText: "anything", Weights: defaultWeights, TopK: 5})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, provider.GetMockRewriter().CallCount())
	assert.Equal(t, 0, provider.GetMockEmbedder().CallCount())
}

func TestRun_UpstreamErrors(t *testing.T) {
	boom := errors.New("service unavailable")
	req := core.SearchRequest{JobOfferText: "python developer", Weights: defaultWeights, TopK: 5}

	t.Run("splitter", func(t *testing.T) {
		provider := newTestProvider()
		provider.GetMockSplitter().SplitFunc = func(ctx context.Context, text string) (core.JobRequirementSplit, error) {
			return core.JobRequirementSplit{}, boom
		}
		searcher := newTestSearcher(t, newTestStore(t), provider)

		_, err := searcher.Run(context.Background(), req)
		assert.ErrorIs(t, err, core.ErrUpstreamService)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("rewriter", func(t *testing.T) {
		provider := newTestProvider()
		provider.GetMockRewriter().RewriteFunc = func(ctx context.Context, q string) (string, error) {
			return "", boom
		}
		searcher := newTestSearcher(t, newTestStore(t), provider)

		_, err := searcher.Run(context.Background(), req)
		assert.ErrorIs(t, err, core.ErrUpstreamService)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("embedder", func(t *testing.T) {
		embedder := mock.NewMockEmbedder(testDims).WithEmbedTextFunc(func(ctx context.Context, text string) ([]float32, error) {
			return nil, boom
		})
		provider := mock.NewMockProviderWithServices(embedder, nil, nil)
		searcher := newTestSearcher(t, newTestStore(t), provider)

		_, err := searcher.Run(context.Background(), req)
		assert.ErrorIs(t, err, core.ErrUpstreamService)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("dimension mismatch is not an upstream failure", func(t *testing.T) {
		provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(testDims+1), nil, nil)
		searcher := newTestSearcher(t, newTestStore(t), provider)

		_, err := searcher.Run(context.Background(), req)
		assert.ErrorIs(t, err, core.ErrDimensionMismatch)
		assert.NotErrorIs(t, err, core.ErrUpstreamService)
	})
}

func TestRun_RetrievalTimeout(t *testing.T) {
	provider := newTestProvider()
	provider.GetMockRewriter().RewriteFunc = func(ctx context.Context, q string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}
	searcher := newTestSearcher(t, newTestStore(t), provider, WithRetrievalTimeout(20*time.Millisecond))

	start := time.Now()
	_, err := searcher.Run(context.Background(), core.SearchRequest{JobOfferText: "python", Weights: defaultWeights, TopK: 5})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRetrieveAll_KeysResultsByCategory(t *testing.T) {
	store := newTestStore(t)
	provider := newTestProvider()

	var mu sync.Mutex
	var rewritten []string
	provider.GetMockRewriter().RewriteFunc = func(ctx context.Context, q string) (string, error) {
		mu.Lock()
		rewritten = append(rewritten, q)
		mu.Unlock()
		return q, nil
	}

	doc := seedCandidate(t, store, candidateFixture{
		name: "Ada", email: "ada@example.com", years: 4,
		text: "Ada. MSc computer science. Go developer.", vec: []float32{1, 0, 0},
	})

	searcher := newTestSearcher(t, store, provider)
	split := core.JobRequirementSplit{Skill: "go developer", Education: "computer science", Experience: ""}

	semantic, err := searcher.retriever.RetrieveAll(context.Background(), split, StrategySemantic)
	require.NoError(t, err)
	require.Len(t, semantic, 3)
	assert.Len(t, semantic[core.CategorySkill], 1)
	assert.Len(t, semantic[core.CategoryEducation], 1)
	assert.Empty(t, semantic[core.CategoryExperience])
	assert.Len(t, rewritten, 2)
	for _, q := range rewritten {
		assert.True(t, strings.HasPrefix(q, "Retrieve CVs that satisfy ALL hard requirements"))
	}

	metadata, err := searcher.retriever.RetrieveAll(context.Background(), split, StrategyMetadata)
	require.NoError(t, err)
	require.Len(t, metadata[core.CategoryEducation], 1)
	assert.Equal(t, doc.ID, metadata[core.CategoryEducation][0].DocumentID)
	assert.Empty(t, metadata[core.CategoryExperience])
}

type recordingMonitor struct {
	stages     []string
	constraint core.Constraint
	finished   []core.ScoredCandidate
}

func (m *recordingMonitor) Start(string) { m.stages = append(m.stages, "start") }
func (m *recordingMonitor) AfterSplit(core.JobRequirementSplit) {
	m.stages = append(m.stages, "split")
}
func (m *recordingMonitor) AfterConstraintParse(c core.Constraint) {
	m.stages = append(m.stages, "constraint")
	m.constraint = c
}
func (m *recordingMonitor) AfterRetrieval(_, _ core.RetrievalResult) {
	m.stages = append(m.stages, "retrieval")
}
func (m *recordingMonitor) AfterMerge(core.OccurrenceTable) { m.stages = append(m.stages, "merge") }
func (m *recordingMonitor) AfterNormalize(core.OccurrenceTable) {
	m.stages = append(m.stages, "normalize")
}
func (m *recordingMonitor) Finish(results []core.ScoredCandidate) {
	m.stages = append(m.stages, "finish")
	m.finished = results
}

func TestRunWithMonitor(t *testing.T) {
	store := newTestStore(t)
	provider := newTestProvider()
	seedCandidate(t, store, candidateFixture{
		name: "Ada", email: "ada@example.com", years: 4,
		text: "Ada, Go developer with at least 3 years", vec: []float32{1, 0, 0},
	})
	searcher := newTestSearcher(t, store, provider)

	monitor := &recordingMonitor{}
	results, err := searcher.RunWithMonitor(context.Background(), core.SearchRequest{
		JobOfferText: "Go developer, at least 3 years",
		Weights:      defaultWeights,
		TopK:         5,
	}, monitor)
	require.NoError(t, err)

	assert.Equal(t, []string{"start", "split", "constraint", "retrieval", "merge", "normalize", "finish"}, monitor.stages)
	require.NotNil(t, monitor.constraint.Min)
	assert.Equal(t, 3.0, *monitor.constraint.Min)
	assert.Equal(t, results, monitor.finished)
}
