package docx

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tendergen/internal/conversation"
	"tendergen/internal/render"
)

func renderSample(t *testing.T) render.DocumentModel {
	t.Helper()
	turns := []conversation.Turn{
		{Role: conversation.RoleAssistant, Content: "Scope:\n- Build a <portal> & API\nDeliver within 30 days."},
	}
	return render.Render(turns, render.Metadata{
		TenderTitle:  "AI-Based Digital Infrastructure",
		TenderNumber: "TDR-2024-001",
		IssueDate:    time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
	})
}

func readPart(t *testing.T, zr *zip.Reader, name string) string {
	t.Helper()
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			require.NoError(t, err)
			defer rc.Close()
			b, err := io.ReadAll(rc)
			require.NoError(t, err)
			return string(b)
		}
	}
	t.Fatalf("part %s not found in container", name)
	return ""
}

func TestWrite_ProducesReadableContainerWithAllParts(t *testing.T) {
	data, err := Write(renderSample(t))
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	for _, part := range []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"word/document.xml",
		"word/styles.xml",
		"word/numbering.xml",
		"word/footer1.xml",
		"word/_rels/document.xml.rels",
	} {
		assert.NotEmpty(t, readPart(t, zr, part), part)
	}
}

func TestWrite_BodyCarriesClassifiedBlocks(t *testing.T) {
	data, err := Write(renderSample(t))
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	doc := readPart(t, zr, "word/document.xml")

	assert.Contains(t, doc, `<w:pStyle w:val="Title"/>`)
	assert.Contains(t, doc, "Tender Document")
	assert.Contains(t, doc, "Tender Number: TDR-2024-001")
	assert.Contains(t, doc, "Issue Date: 05-03-2024")
	assert.Contains(t, doc, `<w:br w:type="page"/>`)
	assert.Contains(t, doc, `<w:pStyle w:val="Heading1"/>`)
	assert.Contains(t, doc, `<w:numId w:val="1"/>`)
	assert.Contains(t, doc, "Deliver within 30 days.")
}

func TestWrite_EscapesReservedCharacters(t *testing.T) {
	data, err := Write(renderSample(t))
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	doc := readPart(t, zr, "word/document.xml")

	assert.Contains(t, doc, "Build a &lt;portal&gt; &amp; API")
	assert.NotContains(t, doc, "<portal>")
}

func TestWrite_FooterHasNoticeAndPageField(t *testing.T) {
	data, err := Write(renderSample(t))
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	footer := readPart(t, zr, "word/footer1.xml")

	assert.Contains(t, footer, "Confidential - Generated via AI Tender Assistant")
	assert.Contains(t, footer, `<w:jc w:val="right"/>`)
	assert.Contains(t, footer, ` PAGE `)
	assert.Contains(t, footer, `w:fldCharType="begin"`)
	assert.Contains(t, footer, `w:fldCharType="end"`)
}
