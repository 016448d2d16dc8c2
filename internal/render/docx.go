package render

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/dusk-indust/mcqdoc/internal/assemble"
	"github.com/dusk-indust/mcqdoc/internal/template"
)

// blankOptionRows is how many option rows a blank slot's table carries.
const blankOptionRows = 4

// DOCX renders a WordprocessingML package with one table per slot:
//
//	Question | <stem>
//	Type     | multiple_choice
//	Option A | <text>   (one row per option)
//	Answer   | <1-based index, empty without a key>
type DOCX struct{}

func (DOCX) MediaType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

func (DOCX) Render(ctx context.Context, tmpl template.Descriptor, slots []assemble.Slot) ([]byte, error) {
	fontSize, err := layoutInt(tmpl.Layout, "font_size", 22, 8, 144)
	if err != nil {
		return nil, err
	}
	font := layoutString(tmpl.Layout, "font", "Calibri")
	qtype := layoutString(tmpl.Layout, "question_type", "multiple_choice")

	var body strings.Builder
	writeParagraph(&body, layoutString(tmpl.Layout, "title", tmpl.ID), true)
	for _, s := range slots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		writeSlotTable(&body, s, qtype)
		writeParagraph(&body, "", false)
	}

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	files := []struct {
		name string
		data string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/styles.xml", stylesXML(font, fontSize)},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/document.xml", documentXML(body.String())},
	}
	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			return nil, fmt.Errorf("docx: create %s: %w", f.name, err)
		}
		if _, err := w.Write([]byte(f.data)); err != nil {
			return nil, fmt.Errorf("docx: write %s: %w", f.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("docx: close: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSlotTable(b *strings.Builder, s assemble.Slot, qtype string) {
	b.WriteString(`<w:tbl><w:tblPr><w:tblStyle w:val="TableGrid"/><w:tblW w:w="5000" w:type="pct"/></w:tblPr>`)
	b.WriteString(`<w:tblGrid><w:gridCol w:w="1800"/><w:gridCol w:w="7200"/></w:tblGrid>`)

	if s.Blank() {
		writeRow(b, "Question", "")
		writeRow(b, "Type", qtype)
		for i := 0; i < blankOptionRows; i++ {
			writeRow(b, "Option "+optionLabel(i), "")
		}
		writeRow(b, "Answer", "")
		b.WriteString(`</w:tbl>`)
		return
	}

	q := s.Question
	writeRow(b, "Question", q.Stem)
	writeRow(b, "Type", qtype)
	for i, opt := range q.Options {
		writeRow(b, "Option "+optionLabel(i), opt)
	}
	answer := ""
	if q.Answer != nil {
		answer = strconv.Itoa(*q.Answer + 1)
	}
	writeRow(b, "Answer", answer)
	b.WriteString(`</w:tbl>`)
}

func writeRow(b *strings.Builder, label, value string) {
	b.WriteString(`<w:tr><w:tc>`)
	writeParagraph(b, label, true)
	b.WriteString(`</w:tc><w:tc>`)
	writeParagraph(b, value, false)
	b.WriteString(`</w:tc></w:tr>`)
}

// writeParagraph emits one paragraph; newlines in text become line breaks.
func writeParagraph(b *strings.Builder, text string, bold bool) {
	b.WriteString(`<w:p><w:r>`)
	if bold {
		b.WriteString(`<w:rPr><w:b/></w:rPr>`)
	}
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			b.WriteString(`<w:br/>`)
		}
		b.WriteString(`<w:t xml:space="preserve">`)
		xml.EscapeText(b, []byte(line))
		b.WriteString(`</w:t>`)
	}
	b.WriteString(`</w:r></w:p>`)
}

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

func documentXML(body string) string {
	return xml.Header + `<w:document ` + wordNS + `><w:body>` + body +
		`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/><w:pgMar w:top="1134" w:right="1134" w:bottom="1134" w:left="1134" w:header="708" w:footer="708" w:gutter="0"/></w:sectPr>` +
		`</w:body></w:document>`
}

func stylesXML(font string, size int) string {
	var f strings.Builder
	xml.EscapeText(&f, []byte(font))
	return fmt.Sprintf(xml.Header+`<w:styles %s>`+
		`<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="%[2]s" w:hAnsi="%[2]s" w:cs="%[2]s"/><w:sz w:val="%[3]d"/></w:rPr></w:rPrDefault></w:docDefaults>`+
		`<w:style w:type="table" w:styleId="TableGrid"><w:name w:val="Table Grid"/><w:tblPr><w:tblBorders>`+
		`<w:top w:val="single" w:sz="4" w:space="0" w:color="auto"/><w:left w:val="single" w:sz="4" w:space="0" w:color="auto"/>`+
		`<w:bottom w:val="single" w:sz="4" w:space="0" w:color="auto"/><w:right w:val="single" w:sz="4" w:space="0" w:color="auto"/>`+
		`<w:insideH w:val="single" w:sz="4" w:space="0" w:color="auto"/><w:insideV w:val="single" w:sz="4" w:space="0" w:color="auto"/>`+
		`</w:tblBorders></w:tblPr></w:style></w:styles>`, wordNS, f.String(), size)
}

const contentTypesXML = xml.Header + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
	`</Types>`

const relsXML = xml.Header + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`</Relationships>`

const documentRelsXML = xml.Header + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>` +
	`</Relationships>`
