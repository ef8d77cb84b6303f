// Package suggest produces follow-up prompt suggestions for the chat UI.
package suggest

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"tendergen/internal/llm"
	"tendergen/internal/prompt"
)

const maxSuggestions = 5
const minSuggestions = 3

var suggestionSchema = jsonschema.MustCompileString("suggestions.schema.json", `{
	"type": "array",
	"items": {"type": "string"},
	"minItems": 1
}`)

// fallback is shown whenever the model cannot produce a usable list.
var fallback = []string{
	"Include scope of work",
	"Define bidder qualifications",
	"Mention deliverables",
}

// Generator asks the model for 3-5 next-step prompts after each exchange.
type Generator struct {
	builder *prompt.Builder
	log     *slog.Logger
}

func New(logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{builder: &prompt.Builder{}, log: logger}
}

// Suggest returns an ordered list of 3-5 short prompts. It never fails: on
// any transport or parse problem the caller receives the fixed fallback list.
func (g *Generator) Suggest(ctx context.Context, client llm.Client, lastUserText, lastAssistantText string) []string {
	chat, err := client.NewChat(ctx, prompt.SuggestionSystemInstruction)
	if err != nil {
		g.log.Warn("suggestion chat unavailable", "error", err)
		return fallbackList()
	}

	raw, err := chat.SendJSON(ctx, g.builder.BuildSuggestionPrompt(lastUserText, lastAssistantText))
	if err != nil {
		g.log.Warn("suggestion request failed", "error", err)
		return fallbackList()
	}

	list, err := parseSuggestions(raw)
	if err != nil {
		g.log.Warn("suggestion reply rejected", "error", err)
		return fallbackList()
	}
	return list
}

func parseSuggestions(raw json.RawMessage) ([]string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	if err := suggestionSchema.Validate(v); err != nil {
		return nil, err
	}

	items := v.([]any)
	list := make([]string, 0, len(items))
	for _, item := range items {
		s := strings.TrimSpace(item.(string))
		if s == "" {
			continue
		}
		list = append(list, s)
		if len(list) == maxSuggestions {
			break
		}
	}
	if len(list) < minSuggestions {
		return nil, llm.ErrEmptyResponse
	}
	return list, nil
}

func fallbackList() []string {
	return append([]string(nil), fallback...)
}
