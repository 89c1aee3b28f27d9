package openai

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/poiesic/cvrank/ai"
	"github.com/poiesic/cvrank/core"
	"github.com/tmc/langchaingo/llms"
)

const maxParseAttempts = 3

// Splitter implements ai.QuerySplitter using OpenAI-compatible chat APIs in JSON mode.
type Splitter struct {
	chat *chatClient
}

func newSplitter(config *ai.Config) (*Splitter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	chat, err := newChatClient(config, "openai-splitter")
	if err != nil {
		return nil, err
	}
	return &Splitter{chat: chat}, nil
}

// NewSplitter creates a new query splitter using the provided configuration.
//
// Returns ai.QuerySplitter interface to enforce abstraction.
func NewSplitter(config *ai.Config) (ai.QuerySplitter, error) {
	return newSplitter(config)
}

// Split decomposes a job offer into skill, education and experience queries.
// Malformed JSON responses are retried up to three times.
func (s *Splitter) Split(ctx context.Context, jobOfferText string) (core.JobRequirementSplit, error) {
	var split core.JobRequirementSplit
	var lastErr error
	for attempt := 0; attempt < maxParseAttempts; attempt++ {
		// A failed decode leaves partial fields behind; start each attempt clean.
		split = core.JobRequirementSplit{}
		response, err := s.chat.complete(ctx, ai.SplitterPrompt, jobOfferText, llms.WithJSONMode())
		if err != nil {
			return core.JobRequirementSplit{}, err
		}

		responseText := quoteBareKeys(stripCodeFences(response))
		if err := json.Unmarshal([]byte(responseText), &split); err != nil {
			lastErr = err
			s.chat.logger.Warn("error parsing splitter response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		s.chat.logger.Error("failed to parse splitter response after retries", "err", lastErr)
		return core.JobRequirementSplit{}, lastErr
	}

	split.Skill = strings.TrimSpace(split.Skill)
	split.Education = strings.TrimSpace(split.Education)
	split.Experience = strings.TrimSpace(split.Experience)
	s.chat.logger.Debug("split job offer",
		"skill", split.Skill,
		"education", split.Education,
		"experience", split.Experience)
	return split, nil
}
