// File: services/intelligence/gemini_client.go
package intelligence

import (
	"context"
	"fmt"
	"io"
	"strings"

	"aftervisit/models"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GeminiClient is the alternate summary provider, selected with AI_PROVIDER=gemini.
type GeminiClient struct {
	model *genai.GenerativeModel
}

func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	if modelName == "" {
		modelName = "models/gemini-1.5-flash"
	}
	model := client.GenerativeModel(modelName)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	return &GeminiClient{model: model}, nil
}

func (g *GeminiClient) StreamSummary(ctx context.Context, visit models.Visit) (CompletionStream, error) {
	iter := g.model.GenerateContentStream(ctx, genai.Text(userPromptFor(visit)))
	return &geminiStream{iter: iter}, nil
}

type geminiStream struct {
	iter *genai.GenerateContentResponseIterator
}

func (s *geminiStream) Recv() (string, error) {
	for {
		resp, err := s.iter.Next()
		if err == iterator.Done {
			return "", io.EOF
		}
		if err != nil {
			return "", fmt.Errorf("gemini stream: %w", err)
		}

		var sb strings.Builder
		for _, cand := range resp.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if textPart, ok := part.(genai.Text); ok {
					sb.WriteString(string(textPart))
				}
			}
		}
		if sb.Len() > 0 {
			return sb.String(), nil
		}
	}
}

// Close is a no-op; the iterator stops when the request context is canceled.
func (s *geminiStream) Close() error {
	return nil
}
