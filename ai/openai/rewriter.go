package openai

import (
	"context"
	"strings"

	"github.com/poiesic/cvrank/ai"
)

// Rewriter implements ai.QueryRewriter using OpenAI-compatible chat APIs.
type Rewriter struct {
	chat *chatClient
}

func newRewriter(config *ai.Config) (*Rewriter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	chat, err := newChatClient(config, "openai-rewriter")
	if err != nil {
		return nil, err
	}
	return &Rewriter{chat: chat}, nil
}

// NewRewriter creates a new query rewriter using the provided configuration.
//
// Returns ai.QueryRewriter interface to enforce abstraction.
func NewRewriter(config *ai.Config) (ai.QueryRewriter, error) {
	return newRewriter(config)
}

// Rewrite returns a concise retrieval query. An empty model answer falls back
// to the original query.
func (r *Rewriter) Rewrite(ctx context.Context, query string) (string, error) {
	response, err := r.chat.complete(ctx, ai.RewriterPrompt, query)
	if err != nil {
		return "", err
	}

	rewritten := strings.Trim(stripCodeFences(response), "\"' \n")
	if rewritten == "" {
		r.chat.logger.Debug("empty rewrite, using original query")
		return query, nil
	}
	return rewritten, nil
}
