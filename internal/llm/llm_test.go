// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"errors"
	"testing"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/suplementia/evidence-engine/pkg/types"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `["a"]`, `["a"]`},
		{"json fence", "```json\n[\"a\"]\n```", `["a"]`},
		{"plain fence", "```\n{\"b\": 1}\n```", `{"b": 1}`},
		{"surrounding whitespace", "  ```json\n[]\n```  ", "[]"},
		{"empty", "", ""},
		{"fence only", "``````", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFences(tt.in); got != tt.want {
				t.Errorf("StripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewAnthropicRequiresKey(t *testing.T) {
	if _, err := NewAnthropic(types.AIConfig{}); err == nil {
		t.Fatal("expected error for missing API key")
	}
	if _, err := NewAnthropic(types.AIConfig{APIKey: "   "}); err == nil {
		t.Fatal("expected error for blank API key")
	}
	if _, err := NewAnthropic(types.AIConfig{APIKey: "ak-test"}); err != nil {
		t.Fatalf("unexpected error with key present: %v", err)
	}
}

// fakeMessager records the request and plays back a canned response.
type fakeMessager struct {
	gotParams anthropic.MessageNewParams
	resp      *anthropic.Message
	err       error
}

func (f *fakeMessager) New(_ context.Context, params anthropic.MessageNewParams, _ ...option.RequestOption) (*anthropic.Message, error) {
	f.gotParams = params
	return f.resp, f.err
}

func TestInferConcatenatesTextBlocks(t *testing.T) {
	fake := &fakeMessager{
		resp: &anthropic.Message{
			Content: []anthropic.ContentBlockUnion{
				{Type: "text", Text: `["creatine"`},
				{Type: "text", Text: `]`},
			},
		},
	}
	a := &Anthropic{messages: fake, model: anthropic.ModelClaude3_5HaikuLatest, maxTokens: 512}

	got, err := a.Infer(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	if got != `["creatine"]` {
		t.Errorf("Infer = %q", got)
	}
	if len(fake.gotParams.System) != 1 || fake.gotParams.System[0].Text != "system prompt" {
		t.Errorf("system prompt not forwarded: %+v", fake.gotParams.System)
	}
	if len(fake.gotParams.Messages) != 1 {
		t.Errorf("want exactly one user message, got %d", len(fake.gotParams.Messages))
	}
}

func TestInferWrapsEndpointError(t *testing.T) {
	fake := &fakeMessager{err: errors.New("overloaded")}
	a := &Anthropic{messages: fake, model: anthropic.ModelClaude3_5HaikuLatest, maxTokens: 512}

	_, err := a.Infer(context.Background(), "s", "u")
	var svcErr *types.ExternalServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("want ExternalServiceError, got %T: %v", err, err)
	}
	if svcErr.Service != "inference endpoint" {
		t.Errorf("Service = %q", svcErr.Service)
	}
}
