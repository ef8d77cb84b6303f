package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// GeminiClient implements Client on top of the official genai SDK.
type GeminiClient struct {
	cli   *genai.Client
	model string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiClient{cli: cli, model: model}, nil
}

func (g *GeminiClient) Name() string { return "gemini:" + g.model }

func (g *GeminiClient) Close() error { return nil }

func (g *GeminiClient) NewChat(_ context.Context, systemInstruction string) (Chat, error) {
	return &geminiChat{cli: g.cli, model: g.model, system: systemInstruction}, nil
}

// geminiChat keeps the conversation history client-side and replays it on
// every call, which keeps free-text and JSON-mode requests on one context.
type geminiChat struct {
	cli     *genai.Client
	model   string
	system  string
	history []*genai.Content
}

func (c *geminiChat) Send(ctx context.Context, message string) (string, error) {
	return c.send(ctx, message, "")
}

func (c *geminiChat) SendJSON(ctx context.Context, message string) (json.RawMessage, error) {
	text, err := c.send(ctx, message, "application/json")
	if err != nil {
		return nil, err
	}
	return json.RawMessage(text), nil
}

func (c *geminiChat) send(ctx context.Context, message, responseMIME string) (string, error) {
	contents := make([]*genai.Content, 0, len(c.history)+1)
	contents = append(contents, c.history...)
	contents = append(contents, &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{{Text: message}},
	})

	cfg := &genai.GenerateContentConfig{}
	if c.system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: c.system}}}
	}
	if responseMIME != "" {
		cfg.ResponseMIMEType = responseMIME
	}

	text, err := sendWithRetries(ctx, retryBaseDelay, func() (string, error) {
		resp, err := c.cli.Models.GenerateContent(ctx, c.model, contents, cfg)
		if err != nil {
			return "", err
		}
		if resp.Text() == "" {
			return "", ErrEmptyResponse
		}
		return resp.Text(), nil
	})
	if err != nil {
		return "", err
	}

	c.history = append(contents, &genai.Content{
		Role:  "model",
		Parts: []*genai.Part{{Text: text}},
	})
	return text, nil
}

const (
	maxAttempts    = 3
	retryBaseDelay = 300 * time.Millisecond
)

// sendWithRetries retries fn with exponential backoff. It returns as soon as
// the final attempt fails, without a trailing wait.
func sendWithRetries(ctx context.Context, baseDelay time.Duration, fn func() (string, error)) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		text, err := fn()
		if err == nil {
			return text, nil
		}
		lastErr = err
		if attempt == maxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(baseDelay << attempt):
		}
	}
	return "", lastErr
}
