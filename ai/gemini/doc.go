// Package gemini provides AI service implementations backed by Google Gemini.
//
// It uses the google.golang.org/genai SDK against the Gemini API backend.
// Embeddings are requested with an explicit output dimensionality so they
// match the configured store.
//
//	config := ai.NewConfig(
//	    ai.WithProvider(ai.ProviderGemini),
//	    ai.WithAPIKey(os.Getenv("GEMINI_API_KEY")),
//	    ai.WithEmbeddingModel("text-embedding-004"),
//	    ai.WithChatModel("gemini-2.5-flash"),
//	    ai.WithEmbeddingDim(768),
//	)
//	provider, err := gemini.NewProvider(ctx, config)
package gemini
