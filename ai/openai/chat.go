package openai

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/cvrank/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

var errNoChoices = errors.New("model returned no choices")

// chatClient wraps a langchaingo chat model with the system/user message layout
// shared by the splitter, rewriter and extractor.
type chatClient struct {
	model  llms.Model
	logger *slog.Logger
}

func newChatClient(config *ai.Config, component string) (*chatClient, error) {
	model, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken(token(config.APIKey)),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}
	return &chatClient{
		model:  model,
		logger: slog.Default().With("component", component),
	}, nil
}

// complete sends one system prompt and one user message and returns the first choice.
func (c *chatClient) complete(ctx context.Context, system, user string, opts ...llms.CallOption) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}

	opts = append([]llms.CallOption{llms.WithTemperature(0.0)}, opts...)
	response, err := c.model.GenerateContent(ctx, content, opts...)
	if err != nil {
		c.logger.Error("failed to generate content", "err", err)
		return "", err
	}
	if len(response.Choices) < 1 {
		c.logger.Warn("no choices returned from model")
		return "", errNoChoices
	}
	return response.Choices[0].Content, nil
}
