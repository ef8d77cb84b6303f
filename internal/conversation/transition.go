package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"tendergen/internal/llm"
	"tendergen/internal/placeholder"
	"tendergen/internal/prompt"
	"tendergen/internal/resolver"
	"tendergen/internal/suggest"
)

// EventKind names the user actions the state machine responds to.
type EventKind string

const (
	// EventUserMessage is free-typed chat input. It is checked against the
	// previous section's placeholders before being treated as a new
	// drafting request.
	EventUserMessage EventKind = "user_message"
	// EventSelectSuggestion is a clicked follow-up suggestion. Always a
	// new drafting request, never a fill-in update.
	EventSelectSuggestion EventKind = "select_suggestion"
	// EventSelectTemplate is a picked template section name, expanded into
	// a canned drafting prompt. Always a new drafting request.
	EventSelectTemplate EventKind = "select_template"
)

// Event is one user action feeding the state machine.
type Event struct {
	Kind EventKind
	Text string
}

// EffectKind classifies what a transition did.
type EffectKind string

const (
	// EffectSectionUpdated means placeholders in the previous section were
	// filled in place; no turns were appended.
	EffectSectionUpdated EffectKind = "section_updated"
	// EffectSectionGenerated means a new user/assistant turn pair was
	// appended.
	EffectSectionGenerated EffectKind = "section_generated"
)

// Effect describes the outcome of a transition for the presentation layer.
type Effect struct {
	Kind         EffectKind
	Section      string
	Values       map[string]string
	Suggestions  []string
	Placeholders []string
}

// Deps are the collaborators a transition may call out to. Chat is the
// long-lived drafting session; Client opens short-lived structured-output
// chats for resolution and suggestions.
type Deps struct {
	Chat      llm.Chat
	Client    llm.Client
	Resolver  *resolver.Resolver
	Suggester *suggest.Generator
	Prompts   *prompt.Builder
	Log       *slog.Logger
}

// Transition applies one event to the state and returns what changed.
//
// A free-typed message is first checked against the placeholders of the last
// generated section: if the resolver can pull at least one value out of it,
// the previous section is rewritten in place and the message is consumed.
// Resolving an update silently is less disruptive than generating an unwanted
// new section, so this check runs first. Otherwise the message becomes a new
// drafting request. On a drafting failure the state is left untouched and the
// error is returned for the caller to surface as a retryable notice.
func Transition(ctx context.Context, state *State, event Event, deps Deps) (Effect, error) {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}

	text := strings.TrimSpace(event.Text)
	if text == "" {
		return Effect{}, fmt.Errorf("empty %s event", event.Kind)
	}

	message := text
	if event.Kind == EventSelectTemplate {
		message = deps.Prompts.BuildTemplatePrompt(text)
	}

	if event.Kind == EventUserMessage {
		if pending := placeholder.Detect(state.LastSection); len(pending) > 0 {
			values := deps.Resolver.Infer(ctx, deps.Client, pending, text)
			if len(values) > 0 {
				log.Info("filled placeholders in previous section", "fields", len(values))
				return applyUpdate(state, values), nil
			}
			log.Debug("no placeholder values resolved, drafting instead", "pending", len(pending))
		}
	}

	reply, err := deps.Chat.Send(ctx, message)
	if err != nil {
		return Effect{}, fmt.Errorf("drafting request failed: %w", err)
	}

	state.Turns = append(state.Turns,
		Turn{Role: RoleUser, Content: message},
		Turn{Role: RoleAssistant, Content: reply},
	)
	state.LastSection = reply
	state.Suggestions = deps.Suggester.Suggest(ctx, deps.Client, message, reply)

	return Effect{
		Kind:         EffectSectionGenerated,
		Section:      reply,
		Suggestions:  append([]string(nil), state.Suggestions...),
		Placeholders: placeholder.Detect(reply),
	}, nil
}

// ApplyValues rewrites the last generated section with already-validated
// field values, bypassing the model. This is the explicit form-collected
// path; callers must have run field validation on the batch first.
func ApplyValues(state *State, values map[string]string) (Effect, error) {
	if state.LastSection == "" {
		return Effect{}, fmt.Errorf("no generated section to update")
	}
	if len(values) == 0 {
		return Effect{}, fmt.Errorf("no values to apply")
	}
	return applyUpdate(state, values), nil
}

func applyUpdate(state *State, values map[string]string) Effect {
	updated := placeholder.Substitute(state.LastSection, values)
	if idx := state.lastAssistantIndex(); idx >= 0 {
		state.Turns[idx].Content = updated
	}
	state.LastSection = updated
	return Effect{
		Kind:         EffectSectionUpdated,
		Section:      updated,
		Values:       values,
		Placeholders: placeholder.Detect(updated),
	}
}
