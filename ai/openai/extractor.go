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


package openai

import (
	"context"

	"github.com/poiesic/cvrank/ai"
	"github.com/tmc/langchaingo/llms"
)

const extractionMaxTokens = 3000

// Extractor implements ai.CVExtractor using OpenAI-compatible chat APIs.
type Extractor struct {
	chat *chatClient
}

func newExtractor(config *ai.Config) (*Extractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	chat, err := newChatClient(config, "openai-extractor")
	if err != nil {
		return nil, err
	}
	return &Extractor{chat: chat}, nil
}

// NewExtractor creates a new CV extractor using the provided configuration.
//
// Returns ai.CVExtractor interface to enforce abstraction.
func NewExtractor(config *ai.Config) (ai.CVExtractor, error) {
	return newExtractor(config)
}

// Extract asks the model for the full CV text and its metadata, then parses
// the two-section response. Schema violations are reported, not fatal.
func (e *Extractor) Extract(ctx context.Context, rawText string) (*ai.Extraction, error) {
	response, err := e.chat.complete(ctx, ai.ExtractionPrompt, rawText, llms.WithMaxTokens(extractionMaxTokens))
	if err != nil {
		return nil, err
	}

	ext, metaRaw := ai.ParseExtractionResponse(response)
	if metaRaw == nil {
		e.chat.logger.Warn("extraction returned no usable metadata")
		return ext, nil
	}

	problems, err := ai.ValidateMetadataJSON(metaRaw)
	if err != nil {
		e.chat.logger.Warn("could not check metadata against schema", "err", err)
		return ext, nil
	}
	ext.SchemaErrors = problems
	return ext, nil
}
