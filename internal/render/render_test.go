package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tendergen/internal/conversation"
)

var testMeta = Metadata{
	TenderTitle:  "AI-Based Digital Infrastructure",
	TenderNumber: "TDR-2024-001",
	IssueDate:    time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
}

func TestRender_ClassifiesHeadingBulletAndParagraph(t *testing.T) {
	turns := []conversation.Turn{
		{Role: conversation.RoleAssistant, Content: "Scope:\n- Build a portal\nDeliver within 30 days."},
	}

	model := Render(turns, testMeta)

	content := contentBlocks(model)
	require.Len(t, content, 3)
	assert.Equal(t, Block{Kind: BlockHeading, Level: 1, Text: "Scope"}, content[0])
	assert.Equal(t, Block{Kind: BlockBullet, Text: "Build a portal"}, content[1])
	assert.Equal(t, Block{Kind: BlockParagraph, Text: "Deliver within 30 days."}, content[2])
}

func TestRender_DocumentStructureAndMetadata(t *testing.T) {
	model := Render(nil, testMeta)

	require.GreaterOrEqual(t, len(model.Blocks), 6)
	assert.Equal(t, Block{Kind: BlockTitle, Text: "Tender Document"}, model.Blocks[0])
	assert.Equal(t, "Tender Title: AI-Based Digital Infrastructure", model.Blocks[1].Text)
	assert.Equal(t, "Tender Number: TDR-2024-001", model.Blocks[2].Text)
	assert.Equal(t, "Issue Date: 05-03-2024", model.Blocks[3].Text)
	assert.Equal(t, BlockPageBreak, model.Blocks[4].Kind)
	assert.Equal(t, BlockFooter, model.Blocks[len(model.Blocks)-1].Kind)
}

func TestRender_IgnoresUserTurnsAndBlankLines(t *testing.T) {
	turns := []conversation.Turn{
		{Role: conversation.RoleUser, Content: "should not appear"},
		{Role: conversation.RoleAssistant, Content: "First.\n\n\nSecond."},
	}

	model := Render(turns, testMeta)

	content := contentBlocks(model)
	require.Len(t, content, 2)
	assert.Equal(t, "First.", content[0].Text)
	assert.Equal(t, "Second.", content[1].Text)
}

func TestRender_StripsInlineMarkdown(t *testing.T) {
	turns := []conversation.Turn{
		{Role: conversation.RoleAssistant, Content: "## Overview\nThe **vendor** must use *secure* `tls` transport."},
	}

	model := Render(turns, testMeta)

	content := contentBlocks(model)
	require.Len(t, content, 2)
	assert.Equal(t, Block{Kind: BlockParagraph, Text: "Overview"}, content[0])
	assert.Equal(t, "The vendor must use secure tls transport.", content[1].Text)
}

func TestRender_LongColonLineStaysAParagraph(t *testing.T) {
	long := "This is a very long sentence that certainly has at least ten separate words in it:"
	turns := []conversation.Turn{{Role: conversation.RoleAssistant, Content: long}}

	model := Render(turns, testMeta)

	content := contentBlocks(model)
	require.Len(t, content, 1)
	assert.Equal(t, BlockParagraph, content[0].Kind)
}

func TestRender_BulletCharacterMarker(t *testing.T) {
	turns := []conversation.Turn{{Role: conversation.RoleAssistant, Content: "• Item one"}}

	model := Render(turns, testMeta)

	content := contentBlocks(model)
	require.Len(t, content, 1)
	assert.Equal(t, Block{Kind: BlockBullet, Text: "Item one"}, content[0])
}

func TestRender_ColonTerminatedListItemIsAHeading(t *testing.T) {
	turns := []conversation.Turn{
		{Role: conversation.RoleAssistant, Content: "- Deliverables:\n- Weekly report"},
	}

	model := Render(turns, testMeta)

	content := contentBlocks(model)
	require.Len(t, content, 2)
	assert.Equal(t, Block{Kind: BlockHeading, Level: 1, Text: "- Deliverables"}, content[0])
	assert.Equal(t, Block{Kind: BlockBullet, Text: "Weekly report"}, content[1])
}

func TestRender_IsDeterministicAndIdempotent(t *testing.T) {
	turns := []conversation.Turn{
		{Role: conversation.RoleAssistant, Content: "Scope:\n- Build a portal\nDeliver within 30 days."},
		{Role: conversation.RoleAssistant, Content: "Payment Terms:\n- Net 30"},
	}

	first := Render(turns, testMeta)
	second := Render(turns, testMeta)

	assert.Equal(t, first, second)
}

// contentBlocks drops the fixed title/metadata prologue and footer.
func contentBlocks(m DocumentModel) []Block {
	var out []Block
	seenBreak := false
	for _, b := range m.Blocks {
		switch b.Kind {
		case BlockPageBreak:
			seenBreak = true
		case BlockFooter:
		default:
			if seenBreak {
				out = append(out, b)
			}
		}
	}
	return out
}
