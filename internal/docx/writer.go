// Package docx serializes a document model into a Word (OOXML) container.
//
// The container is assembled directly: a .docx file is a zip of XML parts,
// and the subset needed here (headings, a bulleted list style, centered
// title block, page break, footer with an auto-updating page number) is
// small enough to emit from fixed part templates.
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"

	"tendergen/internal/render"
)

const (
	// FileName is the fixed download name offered to the user.
	FileName = "AI_Generated_Tender_Document.docx"
	// MIMEType is the wordprocessingml container content type.
	MIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

const wNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
const rNS = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

// Write serializes the model into .docx bytes.
func Write(model render.DocumentModel) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/styles.xml", stylesXML},
		{"word/numbering.xml", numberingXML},
		{"word/footer1.xml", footerXML(footerText(model))},
		{"word/document.xml", documentXML(model)},
	}
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return nil, fmt.Errorf("failed to create part %s: %w", p.name, err)
		}
		if _, err := f.Write([]byte(p.content)); err != nil {
			return nil, fmt.Errorf("failed to write part %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize container: %w", err)
	}
	return buf.Bytes(), nil
}

func footerText(model render.DocumentModel) string {
	for _, b := range model.Blocks {
		if b.Kind == render.BlockFooter {
			return b.Text
		}
	}
	return ""
}

// documentXML renders the body. The footer block is carried by footer1.xml,
// not the body.
func documentXML(model render.DocumentModel) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	fmt.Fprintf(&sb, `<w:document xmlns:w=%q xmlns:r=%q><w:body>`, wNS, rNS)

	for _, b := range model.Blocks {
		switch b.Kind {
		case render.BlockTitle:
			writeParagraph(&sb, b.Text, `<w:pStyle w:val="Title"/><w:jc w:val="center"/>`)
		case render.BlockMetadata:
			writeParagraph(&sb, b.Text, `<w:jc w:val="center"/>`)
		case render.BlockHeading:
			level := b.Level
			if level < 1 {
				level = 1
			}
			if level > 3 {
				level = 3
			}
			writeParagraph(&sb, b.Text, fmt.Sprintf(`<w:pStyle w:val="Heading%d"/>`, level))
		case render.BlockBullet:
			writeParagraph(&sb, b.Text, `<w:pStyle w:val="ListParagraph"/><w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr>`)
		case render.BlockParagraph:
			writeParagraph(&sb, b.Text, "")
		case render.BlockPageBreak:
			sb.WriteString(`<w:p><w:r><w:br w:type="page"/></w:r></w:p>`)
		case render.BlockFooter:
			// handled in footer1.xml
		}
	}

	sb.WriteString(`<w:sectPr><w:footerReference w:type="default" r:id="rId3"/></w:sectPr>`)
	sb.WriteString(`</w:body></w:document>`)
	return sb.String()
}

func writeParagraph(sb *strings.Builder, text, props string) {
	sb.WriteString("<w:p>")
	if props != "" {
		sb.WriteString("<w:pPr>")
		sb.WriteString(props)
		sb.WriteString("</w:pPr>")
	}
	fmt.Fprintf(sb, `<w:r><w:t xml:space="preserve">%s</w:t></w:r>`, escapeXML(text))
	sb.WriteString("</w:p>")
}

// footerXML emits a right-aligned footer: the confidentiality notice followed
// by an auto-updating PAGE field.
func footerXML(notice string) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	fmt.Fprintf(&sb, `<w:ftr xmlns:w=%q>`, wNS)
	sb.WriteString(`<w:p><w:pPr><w:jc w:val="right"/></w:pPr>`)
	fmt.Fprintf(&sb, `<w:r><w:t xml:space="preserve">%s  Page </w:t></w:r>`, escapeXML(notice))
	sb.WriteString(`<w:r><w:fldChar w:fldCharType="begin"/></w:r>`)
	sb.WriteString(`<w:r><w:instrText xml:space="preserve"> PAGE </w:instrText></w:r>`)
	sb.WriteString(`<w:r><w:fldChar w:fldCharType="end"/></w:r>`)
	sb.WriteString(`</w:p></w:ftr>`)
	return sb.String()
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
<Override PartName="/word/numbering.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"/>
<Override PartName="/word/footer1.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering" Target="numbering.xml"/>
<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer" Target="footer1.xml"/>
</Relationships>`

const stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="Calibri" w:hAnsi="Calibri"/><w:sz w:val="22"/></w:rPr></w:rPrDefault></w:docDefaults>
<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>
<w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/><w:basedOn w:val="Normal"/><w:pPr><w:spacing w:after="240"/></w:pPr><w:rPr><w:b/><w:sz w:val="48"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/><w:pPr><w:spacing w:before="240" w:after="120"/><w:outlineLvl w:val="0"/></w:pPr><w:rPr><w:b/><w:sz w:val="32"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/><w:basedOn w:val="Normal"/><w:pPr><w:spacing w:before="200" w:after="100"/><w:outlineLvl w:val="1"/></w:pPr><w:rPr><w:b/><w:sz w:val="28"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Heading3"><w:name w:val="heading 3"/><w:basedOn w:val="Normal"/><w:pPr><w:spacing w:before="160" w:after="80"/><w:outlineLvl w:val="2"/></w:pPr><w:rPr><w:b/><w:sz w:val="24"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="ListParagraph"><w:name w:val="List Paragraph"/><w:basedOn w:val="Normal"/><w:pPr><w:ind w:left="720"/></w:pPr></w:style>
</w:styles>`

const numberingXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:numbering xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:abstractNum w:abstractNumId="0">
<w:lvl w:ilvl="0"><w:numFmt w:val="bullet"/><w:lvlText w:val="&#8226;"/><w:pPr><w:ind w:left="720" w:hanging="360"/></w:pPr></w:lvl>
</w:abstractNum>
<w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num>
</w:numbering>`
