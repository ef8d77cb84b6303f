// Package llm provides chat access to the language-model providers.
package llm

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrEmptyResponse is returned when the model produced no usable text.
	ErrEmptyResponse = errors.New("llm: empty response from model")
)

// Chat is one model conversation. Send preserves conversational context
// across calls; SendJSON requests strictly structured output for the same
// message without polluting the drafting context rules.
type Chat interface {
	// Send submits a message and returns the model's free-text reply.
	Send(ctx context.Context, message string) (string, error)
	// SendJSON submits a message and returns the model's reply as raw JSON.
	SendJSON(ctx context.Context, message string) (json.RawMessage, error)
}

// Client creates chats against one provider.
type Client interface {
	Name() string
	// NewChat opens a conversation primed with the given system instruction.
	NewChat(ctx context.Context, systemInstruction string) (Chat, error)
	Close() error
}
