// File: services/intelligence/openai_client.go
package intelligence

import (
	"context"
	"fmt"

	"aftervisit/models"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient streams consultation summaries from the OpenAI chat-completion API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient builds the default summary provider. baseURL overrides the API host
// for proxies and tests; an empty model falls back to gpt-4o-mini.
func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg), model: model}
}

func (o *OpenAIClient) StreamSummary(ctx context.Context, visit models.Visit) (CompletionStream, error) {
	req := openai.ChatCompletionRequest{
		Model:  o.model,
		Stream: true,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPromptFor(visit)},
		},
	}
	stream, err := o.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("open chat completion stream: %w", err)
	}
	return &openaiStream{stream: stream}, nil
}

type openaiStream struct {
	stream *openai.ChatCompletionStream
}

// Recv skips empty deltas so every returned fragment carries text.
func (s *openaiStream) Recv() (string, error) {
	for {
		resp, err := s.stream.Recv()
		if err != nil {
			// io.EOF on clean completion, anything else is a mid-stream failure.
			return "", err
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if text := resp.Choices[0].Delta.Content; text != "" {
			return text, nil
		}
	}
}

func (s *openaiStream) Close() error {
	return s.stream.Close()
}
