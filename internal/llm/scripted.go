package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// ScriptedClient hands out ScriptedChats. It backs tests and the offline
// dry-run serving mode, where no provider credentials are available.
type ScriptedClient struct {
	mu      sync.Mutex
	Replies []string
}

func (s *ScriptedClient) Name() string { return "scripted" }

func (s *ScriptedClient) Close() error { return nil }

func (s *ScriptedClient) NewChat(_ context.Context, systemInstruction string) (Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &ScriptedChat{System: systemInstruction, Replies: append([]string(nil), s.Replies...)}, nil
}

// ScriptedChat returns canned replies in order and records what was sent.
// When the reply queue runs dry it returns Fallback, or Err if set.
type ScriptedChat struct {
	mu       sync.Mutex
	System   string
	Replies  []string
	Fallback string
	Err      error
	Sent     []string
}

func (c *ScriptedChat) Send(ctx context.Context, message string) (string, error) {
	return c.next(message)
}

func (c *ScriptedChat) SendJSON(ctx context.Context, message string) (json.RawMessage, error) {
	text, err := c.next(message)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(text), nil
}

func (c *ScriptedChat) next(message string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Sent = append(c.Sent, message)
	if len(c.Replies) > 0 {
		reply := c.Replies[0]
		c.Replies = c.Replies[1:]
		return reply, nil
	}
	if c.Err != nil {
		return "", c.Err
	}
	if c.Fallback != "" {
		return c.Fallback, nil
	}
	return "", ErrEmptyResponse
}
