package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/dvirpinch/noa-chatbot-web/internal/domain"
)

// GeminiClient is the alternate backend, kept behind the same single-shot
// completion port as the chat-completions client.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Vertex AI (Gemini) backed client.
func NewGeminiClient(ctx context.Context, projectID, location, model string) (*GeminiClient, error) {
	if projectID == "" || location == "" {
		return nil, fmt.Errorf("project id and location are required for the gemini backend")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  model,
	}, nil
}

// Complete implements domain.LLMClient.
func (g *GeminiClient) Complete(ctx context.Context, prompt string, opts domain.CompletionOptions) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	var cfg *genai.GenerateContentConfig
	if opts.Temperature != nil {
		temp := float32(*opts.Temperature)
		cfg = &genai.GenerateContentConfig{
			Temperature: &temp,
		}
	}

	res, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", ErrEmptyCompletion
	}

	return text, nil
}
