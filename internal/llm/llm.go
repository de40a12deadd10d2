// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm abstracts the language-model inference endpoint used for
// query translation and sentiment classification. The endpoint is treated
// as unreliable: callers must handle timeouts, malformed output, and empty
// results without crashing.
package llm

import (
	"context"
	"errors"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/suplementia/evidence-engine/pkg/types"
)

// Client is the inference contract: a fixed system prompt, a user prompt,
// and a raw text response.
type Client interface {
	Infer(ctx context.Context, system, user string) (string, error)
}

// InferFunc adapts a plain function to the Client interface for tests.
type InferFunc func(ctx context.Context, system, user string) (string, error)

func (f InferFunc) Infer(ctx context.Context, system, user string) (string, error) {
	return f(ctx, system, user)
}

// messager is the slice of the Anthropic SDK the client needs; tests
// substitute a fake.
type messager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Anthropic calls the Claude Messages API.
type Anthropic struct {
	messages  messager
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropic builds a client from AIConfig. The API key is required.
func NewAnthropic(cfg types.AIConfig) (*Anthropic, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, errors.New("anthropic API key not configured")
	}
	model := anthropic.Model(cfg.Model)
	if cfg.Model == "" {
		model = anthropic.ModelClaude3_5HaikuLatest
	}
	c := anthropic.NewClient(option.WithAPIKey(key))
	return &Anthropic{messages: &c.Messages, model: model, maxTokens: 512}, nil
}

// Infer sends one user message under the given system prompt and returns
// the concatenated text blocks of the response.
func (a *Anthropic) Infer(ctx context.Context, system, user string) (string, error) {
	resp, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		System:      []anthropic.TextBlockParam{{Text: system}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(user))},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		return "", &types.ExternalServiceError{Service: "inference endpoint", Err: err}
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String(), nil
}

// StripCodeFences removes a surrounding markdown code fence, which models
// sometimes add around JSON despite instructions.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
