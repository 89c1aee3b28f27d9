// Package mock provides test double implementations of AI service interfaces.
//
// The mocks let tests run without external AI services and with fully
// deterministic behavior.
//
// # Usage in Tests
//
//	provider := mock.NewMockProvider(3).(*mock.MockProvider)
//	provider.GetMockSplitter().SplitFunc = func(ctx context.Context, text string) (core.JobRequirementSplit, error) {
//	    return core.JobRequirementSplit{Skill: "python", Experience: "5+ years"}, nil
//	}
//
//	count := provider.GetMockEmbedder().CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: deterministic unit vectors derived from a text hash
//   - MockSplitter: the trimmed job offer for every category
//   - MockRewriter: the query unchanged
//   - MockExtractor: the input text with empty metadata
//
// All mocks are safe for concurrent use as long as hooks are set before use.
package mock
