// Package llm contains clients for remote text-completion services.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dvirpinch/noa-chatbot-web/internal/domain"
)

// ErrEmptyCompletion is returned when the endpoint answers 2xx but the
// completion field is missing or blank.
var ErrEmptyCompletion = errors.New("completion missing or empty")

// StatusError is a non-success HTTP status from the completion endpoint.
// It carries only the code; the credential never appears in error text.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("completion endpoint returned status %d", e.StatusCode)
}

// DeepSeekClient speaks the OpenAI-style chat-completions wire contract:
// JSON body with model/messages/stream, bearer auth, reply text in
// choices[0].message.content. One request per call, no retries, no caching.
type DeepSeekClient struct {
	apiURL     string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewDeepSeekClient(apiURL, apiKey, model string, timeout time.Duration) *DeepSeekClient {
	return &DeepSeekClient{
		apiURL: apiURL,
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete implements domain.LLMClient.
func (c *DeepSeekClient) Complete(ctx context.Context, prompt string, opts domain.CompletionOptions) (string, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Stream:      false,
		Temperature: opts.Temperature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{StatusCode: resp.StatusCode}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding completion response: %w", err)
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}

	return parsed.Choices[0].Message.Content, nil
}
