package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OpenAIClient implements Client against an OpenAI-compatible chat
// completions endpoint.
type OpenAIClient struct {
	client   *http.Client
	apiKey   string
	model    string
	endpoint string
}

type openAIChatRequest struct {
	Model          string                `json:"model"`
	Messages       []openAIChatMessage   `json:"messages"`
	Temperature    float64               `json:"temperature,omitempty"`
	ResponseFormat *openAIResponseFormat `json:"response_format,omitempty"`
}

type openAIResponseFormat struct {
	Type string `json:"type"`
}

type openAIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message openAIChatMessage `json:"message"`
	} `json:"choices"`
}

func NewOpenAIClient(apiKey, model, baseURL string) (*OpenAIClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("openai model is required")
	}
	endpoint := strings.TrimSpace(baseURL)
	if endpoint == "" {
		endpoint = "https://api.openai.com/v1/chat/completions"
	} else {
		endpoint = strings.TrimRight(endpoint, "/")
		if !strings.HasSuffix(endpoint, "/chat/completions") {
			if strings.HasSuffix(endpoint, "/v1") {
				endpoint += "/chat/completions"
			} else {
				endpoint += "/v1/chat/completions"
			}
		}
	}
	return &OpenAIClient{
		client: &http.Client{
			Timeout: 90 * time.Second,
		},
		apiKey:   apiKey,
		model:    model,
		endpoint: endpoint,
	}, nil
}

func (o *OpenAIClient) Name() string { return "openai:" + o.model }

func (o *OpenAIClient) Close() error { return nil }

func (o *OpenAIClient) NewChat(_ context.Context, systemInstruction string) (Chat, error) {
	chat := &openAIChat{client: o}
	if systemInstruction != "" {
		chat.history = append(chat.history, openAIChatMessage{
			Role:    "system",
			Content: systemInstruction,
		})
	}
	return chat, nil
}

type openAIChat struct {
	client  *OpenAIClient
	history []openAIChatMessage
}

func (c *openAIChat) Send(ctx context.Context, message string) (string, error) {
	return c.send(ctx, message, nil)
}

func (c *openAIChat) SendJSON(ctx context.Context, message string) (json.RawMessage, error) {
	text, err := c.send(ctx, message, &openAIResponseFormat{Type: "json_object"})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(text), nil
}

func (c *openAIChat) send(ctx context.Context, message string, format *openAIResponseFormat) (string, error) {
	messages := make([]openAIChatMessage, 0, len(c.history)+1)
	messages = append(messages, c.history...)
	messages = append(messages, openAIChatMessage{Role: "user", Content: message})

	reqBody := openAIChatRequest{
		Model:          c.client.model,
		Messages:       messages,
		Temperature:    0.1,
		ResponseFormat: format,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.client.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.client.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("openai chat request failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed openAIChatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}

	text := parsed.Choices[0].Message.Content
	c.history = append(messages, openAIChatMessage{Role: "assistant", Content: text})
	return text, nil
}
