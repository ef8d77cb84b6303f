// Package render converts a conversation's assistant turns into a structured
// document model, independent of any output file format.
package render

import (
	"regexp"
	"strings"
	"time"

	"tendergen/internal/conversation"
)

// BlockKind enumerates the document model's block elements.
type BlockKind string

const (
	BlockTitle     BlockKind = "title"
	BlockMetadata  BlockKind = "metadata"
	BlockHeading   BlockKind = "heading"
	BlockBullet    BlockKind = "bullet"
	BlockParagraph BlockKind = "paragraph"
	BlockPageBreak BlockKind = "page_break"
	BlockFooter    BlockKind = "footer"
)

// Block is one element of the document model.
type Block struct {
	Kind  BlockKind
	Level int
	Text  string
}

// DocumentModel is the ordered block sequence for one export. It is rebuilt
// from the source turns on every render and never mutated in place.
type DocumentModel struct {
	Blocks []Block
}

// Metadata is the tender header information shown before the content.
type Metadata struct {
	TenderTitle  string
	TenderNumber string
	IssueDate    time.Time
}

const (
	documentTitle = "Tender Document"
	footerNotice  = "Confidential - Generated via AI Tender Assistant"

	// A short line ending in a colon reads as a section heading.
	headingMaxWords = 10
)

var (
	bulletRe     = regexp.MustCompile(`^[-\x{2022}]\s`)
	boldRe       = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicRe     = regexp.MustCompile(`\*([^*]+)\*`)
	inlineCodeRe = regexp.MustCompile("`([^`]*)`")
	mdHeadingRe  = regexp.MustCompile(`^#+\s*`)
)

// Render builds the document model from the turn sequence: title block,
// metadata lines, a page break, the classified content of every assistant
// turn in chronological order, and the footer. Pure and deterministic; the
// same input always yields the same model.
func Render(turns []conversation.Turn, meta Metadata) DocumentModel {
	blocks := []Block{
		{Kind: BlockTitle, Text: documentTitle},
		{Kind: BlockMetadata, Text: "Tender Title: " + meta.TenderTitle},
		{Kind: BlockMetadata, Text: "Tender Number: " + meta.TenderNumber},
		{Kind: BlockMetadata, Text: "Issue Date: " + meta.IssueDate.Format("02-01-2006")},
		{Kind: BlockPageBreak},
	}

	for _, turn := range turns {
		if turn.Role != conversation.RoleAssistant {
			continue
		}
		blocks = append(blocks, classifyContent(turn.Content)...)
	}

	blocks = append(blocks, Block{Kind: BlockFooter, Text: footerNotice})
	return DocumentModel{Blocks: blocks}
}

// classifyContent splits assistant content into lines, applies the uniform
// inline-markup cleanup, and classifies each non-blank line.
func classifyContent(content string) []Block {
	var blocks []Block
	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		line = cleanInline(line)
		if line == "" {
			continue
		}

		// The heading rule wins over the bullet rule, so a short
		// colon-terminated list item introduces a section.
		switch {
		case strings.HasSuffix(line, ":") && len(strings.Fields(line)) < headingMaxWords:
			blocks = append(blocks, Block{Kind: BlockHeading, Level: 1, Text: strings.TrimRight(line, ":")})
		case bulletRe.MatchString(line):
			text := strings.TrimSpace(line[bulletRe.FindStringIndex(line)[1]:])
			if text == "" {
				continue
			}
			blocks = append(blocks, Block{Kind: BlockBullet, Text: text})
		default:
			blocks = append(blocks, Block{Kind: BlockParagraph, Text: line})
		}
	}
	return blocks
}

// cleanInline strips markdown emphasis, inline code and heading markers so
// only plain display text reaches the document.
func cleanInline(line string) string {
	line = mdHeadingRe.ReplaceAllString(line, "")
	line = boldRe.ReplaceAllString(line, "$1")
	line = italicRe.ReplaceAllString(line, "$1")
	line = inlineCodeRe.ReplaceAllString(line, "$1")
	return strings.TrimSpace(line)
}
