package llm

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

type fakeClient struct {
	content string
	err     error
	got     openai.ChatCompletionRequest
}

func (f *fakeClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.got = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: f.content}}}}, nil
}

func TestComplete_StripsFences(t *testing.T) {
	f := &fakeClient{content: "```json\n{\"a\":1}\n```"}
	got, err := Complete(context.Background(), f, "m", "sys", "user")
	if err != nil {
		t.Fatal(err)
	}
	if got != `{"a":1}` {
		t.Fatalf("got %q", got)
	}
	if len(f.got.Messages) != 2 || f.got.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Fatalf("unexpected request: %+v", f.got)
	}
}

func TestComplete_NotConfigured(t *testing.T) {
	if _, err := Complete(context.Background(), nil, "m", "", ""); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("want ErrNotConfigured, got %v", err)
	}
	if _, err := Complete(context.Background(), &fakeClient{}, "", "", ""); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("want ErrNotConfigured, got %v", err)
	}
}

func TestComplete_NoChoices(t *testing.T) {
	f := &noChoices{}
	if _, err := Complete(context.Background(), f, "m", "", ""); err == nil {
		t.Fatal("expected error")
	}
}

type noChoices struct{}

func (noChoices) CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return openai.ChatCompletionResponse{}, nil
}
