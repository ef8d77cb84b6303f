package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tendergen/internal/llm"
)

func TestInfer_ReturnsMappedValues(t *testing.T) {
	client := &llm.ScriptedClient{Replies: []string{
		`{"Deadline": "31 May 2025", "Bid Amount": "50000 INR"}`,
	}}

	values := New(nil).Infer(context.Background(), client, []string{"Deadline", "Bid Amount"}, "Deadline is 31 May 2025, bid 50000 INR")

	require.Len(t, values, 2)
	assert.Equal(t, "31 May 2025", values["Deadline"])
	assert.Equal(t, "50000 INR", values["Bid Amount"])
}

func TestInfer_PartialMappingIsNotAnError(t *testing.T) {
	client := &llm.ScriptedClient{Replies: []string{`{"Deadline": "31 May 2025"}`}}

	values := New(nil).Infer(context.Background(), client, []string{"Deadline", "Bid Amount"}, "Deadline is 31 May 2025")

	assert.Equal(t, map[string]string{"Deadline": "31 May 2025"}, values)
}

func TestInfer_DropsUnknownAndEmptyFields(t *testing.T) {
	client := &llm.ScriptedClient{Replies: []string{
		`{"deadline": "31 May 2025", "Surprise": "x", "Bid Amount": "  "}`,
	}}

	values := New(nil).Infer(context.Background(), client, []string{"Deadline", "Bid Amount"}, "deadline 31 May 2025")

	assert.Equal(t, map[string]string{"Deadline": "31 May 2025"}, values)
}

func TestInfer_NumericValuesRenderAsText(t *testing.T) {
	client := &llm.ScriptedClient{Replies: []string{`{"Bid Amount": 50000}`}}

	values := New(nil).Infer(context.Background(), client, []string{"Bid Amount"}, "bid is 50000")

	assert.Equal(t, map[string]string{"Bid Amount": "50000"}, values)
}

func TestInfer_MalformedReplyDegradesToEmptyMapping(t *testing.T) {
	client := &llm.ScriptedClient{Replies: []string{`not json at all`}}

	values := New(nil).Infer(context.Background(), client, []string{"Deadline"}, "whatever")

	assert.Empty(t, values)
}

func TestInfer_SchemaViolationDegradesToEmptyMapping(t *testing.T) {
	client := &llm.ScriptedClient{Replies: []string{`{"Deadline": ["31", "May"]}`}}

	values := New(nil).Infer(context.Background(), client, []string{"Deadline"}, "whatever")

	assert.Empty(t, values)
}

func TestInfer_TransportFailureDegradesToEmptyMapping(t *testing.T) {
	client := &failingClient{err: errors.New("network down")}

	values := New(nil).Infer(context.Background(), client, []string{"Deadline"}, "whatever")

	assert.Empty(t, values)
}

type failingClient struct{ err error }

func (f *failingClient) Name() string { return "failing" }
func (f *failingClient) Close() error { return nil }
func (f *failingClient) NewChat(context.Context, string) (llm.Chat, error) {
	return nil, f.err
}
