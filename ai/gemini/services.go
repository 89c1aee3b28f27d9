package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/poiesic/cvrank/ai"
	"github.com/poiesic/cvrank/core"
	"google.golang.org/genai"
)

const (
	maxParseAttempts    = 3
	extractionMaxTokens = 3000
)

// Embedder implements ai.Embedder with Gemini embedding models.
type Embedder struct {
	models     models
	modelName  string
	dimensions int
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return []float32{}, nil
	}
	return vectors[0], nil
}

// EmbedTexts generates vector embeddings for multiple texts in one request.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(strings.ReplaceAll(text, "\n", " "), genai.RoleUser)
	}

	resp, err := e.models.EmbedContent(ctx, e.modelName, contents, &genai.EmbedContentConfig{
		OutputDimensionality: genai.Ptr(int32(e.dimensions)),
	})
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embed content: got %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if emb == nil {
			return nil, fmt.Errorf("embed content: missing embedding %d", i)
		}
		vectors[i] = emb.Values
	}
	return vectors, nil
}

// Splitter implements ai.QuerySplitter with a Gemini chat model in JSON mode.
type Splitter struct {
	gen *generator
}

// Split decomposes a job offer into skill, education and experience queries.
func (s *Splitter) Split(ctx context.Context, jobOfferText string) (core.JobRequirementSplit, error) {
	var lastErr error
	for attempt := 0; attempt < maxParseAttempts; attempt++ {
		response, err := s.gen.generate(ctx, ai.SplitterPrompt, jobOfferText, &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
		})
		if err != nil {
			return core.JobRequirementSplit{}, err
		}

		var split core.JobRequirementSplit
		if err := json.Unmarshal([]byte(stripCodeFences(response)), &split); err != nil {
			lastErr = err
			s.gen.logger.Warn("error parsing splitter response", "attempt", attempt+1, "err", err)
			continue
		}
		split.Skill = strings.TrimSpace(split.Skill)
		split.Education = strings.TrimSpace(split.Education)
		split.Experience = strings.TrimSpace(split.Experience)
		return split, nil
	}
	return core.JobRequirementSplit{}, lastErr
}

// Rewriter implements ai.QueryRewriter with a Gemini chat model.
type Rewriter struct {
	gen *generator
}

// Rewrite returns a concise retrieval query.
func (r *Rewriter) Rewrite(ctx context.Context, query string) (string, error) {
	response, err := r.gen.generate(ctx, ai.RewriterPrompt, query, nil)
	if err != nil {
		return "", err
	}
	return strings.Trim(stripCodeFences(response), "\"' \n"), nil
}

// Extractor implements ai.CVExtractor with a Gemini chat model.
type Extractor struct {
	gen *generator
}

// Extract returns the CV text and metadata parsed from the model response.
func (e *Extractor) Extract(ctx context.Context, rawText string) (*ai.Extraction, error) {
	response, err := e.gen.generate(ctx, ai.ExtractionPrompt, rawText, &genai.GenerateContentConfig{
		MaxOutputTokens: extractionMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	ext, metaRaw := ai.ParseExtractionResponse(response)
	if metaRaw == nil {
		return ext, nil
	}
	problems, err := ai.ValidateMetadataJSON(metaRaw)
	if err != nil {
		e.gen.logger.Warn("could not check metadata against schema", "err", err)
		return ext, nil
	}
	ext.SchemaErrors = problems
	return ext, nil
}
