package suggest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"tendergen/internal/llm"
)

func TestSuggest_ReturnsModelListInOrder(t *testing.T) {
	client := &llm.ScriptedClient{Replies: []string{
		`["Add payment terms", "Include evaluation criteria", "Mention timeline and deadlines", "List eligibility criteria"]`,
	}}

	got := New(nil).Suggest(context.Background(), client, "draft a tender", "Here is a draft...")

	assert.Equal(t, []string{
		"Add payment terms",
		"Include evaluation criteria",
		"Mention timeline and deadlines",
		"List eligibility criteria",
	}, got)
}

func TestSuggest_CapsAtFiveEntries(t *testing.T) {
	client := &llm.ScriptedClient{Replies: []string{
		`["a", "b", "c", "d", "e", "f", "g"]`,
	}}

	got := New(nil).Suggest(context.Background(), client, "x", "y")

	assert.Len(t, got, 5)
}

func TestSuggest_FallsBackOnMalformedReply(t *testing.T) {
	client := &llm.ScriptedClient{Replies: []string{`{"not": "a list"}`}}

	got := New(nil).Suggest(context.Background(), client, "x", "y")

	assert.Equal(t, fallback, got)
}

func TestSuggest_FallsBackWhenListIsTooShort(t *testing.T) {
	client := &llm.ScriptedClient{Replies: []string{`["only one"]`}}

	got := New(nil).Suggest(context.Background(), client, "x", "y")

	assert.Equal(t, fallback, got)
}

func TestSuggest_FallsBackOnTransportFailure(t *testing.T) {
	client := &llm.ScriptedClient{} // queue empty: every send fails

	got := New(nil).Suggest(context.Background(), client, "x", "y")

	assert.Equal(t, fallback, got)
}
