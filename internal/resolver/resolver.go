// Package resolver infers placeholder values from free-form user text via the
// model's structured-output mode.
package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"tendergen/internal/llm"
	"tendergen/internal/prompt"
)

// mappingSchema constrains the model's reply to a flat object of scalar
// values. Model output is untrusted; anything outside the schema is rejected.
var mappingSchema = jsonschema.MustCompileString("mapping.schema.json", `{
	"type": "object",
	"additionalProperties": {
		"type": ["string", "number", "integer"]
	}
}`)

// Resolver maps detected placeholder names to values mentioned in a user
// utterance.
type Resolver struct {
	builder *prompt.Builder
	log     *slog.Logger
}

func New(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{builder: &prompt.Builder{}, log: logger}
}

// Infer asks the model for a placeholder-to-value mapping. The result may be
// partial or empty; fields the user did not mention are simply absent. Any
// transport or parse failure degrades to an empty mapping and is logged,
// never surfaced to the caller.
func (r *Resolver) Infer(ctx context.Context, client llm.Client, placeholders []string, userInput string) map[string]string {
	if len(placeholders) == 0 || strings.TrimSpace(userInput) == "" {
		return map[string]string{}
	}

	chat, err := client.NewChat(ctx, prompt.MappingSystemInstruction)
	if err != nil {
		r.log.Warn("field mapping chat unavailable", "error", err)
		return map[string]string{}
	}

	raw, err := chat.SendJSON(ctx, r.builder.BuildFieldMappingPrompt(placeholders, userInput))
	if err != nil {
		r.log.Warn("field mapping request failed", "error", err)
		return map[string]string{}
	}

	values, err := parseMapping(raw, placeholders)
	if err != nil {
		r.log.Warn("field mapping reply rejected", "error", err)
		return map[string]string{}
	}
	return values
}

// parseMapping validates and normalizes the model reply. Only the requested
// placeholders survive; names are matched case-insensitively and empty values
// are dropped.
func parseMapping(raw json.RawMessage, placeholders []string) (map[string]string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("malformed mapping JSON: %w", err)
	}
	if err := mappingSchema.Validate(v); err != nil {
		return nil, fmt.Errorf("mapping schema validation failed: %w", err)
	}

	obj := v.(map[string]any)
	known := make(map[string]string, len(placeholders))
	for _, p := range placeholders {
		known[strings.ToLower(p)] = p
	}

	values := make(map[string]string)
	for name, val := range obj {
		canonical, ok := known[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			continue
		}
		text := renderScalar(val)
		if text == "" {
			continue
		}
		values[canonical] = text
	}
	return values, nil
}

func renderScalar(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}
