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


// Package ai provides abstractions for the language model services used by cvrank.
//
// The search pipeline and the ingestion workflow depend only on the narrow
// capability interfaces defined here:
//
//   - Embedder: generates vector embeddings from text
//   - QuerySplitter: decomposes a job offer into skill, education and experience queries
//   - QueryRewriter: rewrites a sub-query for retrieval without relaxing constraints
//   - CVExtractor: returns cleaned CV text plus structured metadata
//   - AIProvider: aggregates the services above
//
// # Implementation Packages
//
//   - ai/openai: OpenAI-compatible APIs through langchaingo
//   - ai/gemini: Google Gemini through the genai SDK
//   - ai/mock: deterministic test doubles
//
// Public constructors of the production packages return interface types.
// Mock constructors return concrete types so tests can inject behavior and
// inspect call counts:
//
//	embedder := mock.NewMockEmbedder(3)
//	embedder.WithEmbedTextFunc(func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{1, 0, 0}, nil
//	})
//
// # Extraction Contract
//
// A CVExtractor asks the model for a response of the form
//
//	FULL_TEXT:
//	<cleaned text>
//	METADATA_JSON:
//	{ ... }
//
// ParseExtractionResponse turns that text into an Extraction. A missing
// FULL_TEXT marker yields the whole response as text; invalid or non-object
// JSON yields empty metadata.
package ai
