package render

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/dusk-indust/mcqdoc/internal/assemble"
	"github.com/dusk-indust/mcqdoc/internal/question"
	"github.com/dusk-indust/mcqdoc/internal/source"
	"github.com/dusk-indust/mcqdoc/internal/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSlots(t *testing.T, capacity int) (template.Descriptor, []assemble.Slot) {
	t.Helper()
	tmpl, err := template.DefaultCatalog().Resolve(capacity)
	require.NoError(t, err)

	answer := 1
	qs := []question.Question{
		{Ordinal: 1, Stem: "What is <b>2+2</b>?", Options: []string{"3", "4", "5"}, Answer: &answer, Origin: source.Editor()},
		{Ordinal: 2, Stem: "Line one\nLine two", Options: []string{"yes", "no"}, Origin: source.Upload("set.txt")},
	}
	return tmpl, assemble.Bind(qs, tmpl).Slots
}

func readZip(t *testing.T, payload []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	require.NoError(t, err)

	files := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		files[f.Name] = string(data)
	}
	return files
}

func TestNew(t *testing.T) {
	for _, f := range Formats() {
		r, err := New(f)
		require.NoError(t, err, f)
		assert.NotEmpty(t, r.MediaType())
	}

	_, err := New("pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown format "pdf"`)
	assert.Equal(t, []string{"docx", "html", "json"}, Formats())
	assert.Equal(t, ".docx", Extension("DOCX"))
}

func TestDOCX_Package(t *testing.T) {
	tmpl, slots := sampleSlots(t, 25)

	payload, err := DOCX{}.Render(context.Background(), tmpl, slots)
	require.NoError(t, err)

	files := readZip(t, payload)
	for _, name := range []string{"[Content_Types].xml", "_rels/.rels", "word/document.xml", "word/styles.xml", "word/_rels/document.xml.rels"} {
		assert.Contains(t, files, name)
	}

	doc := files["word/document.xml"]
	assert.Equal(t, 25, strings.Count(doc, "<w:tbl>"), "one table per slot")
	assert.Contains(t, doc, "What is &lt;b&gt;2+2&lt;/b&gt;?")
	assert.Contains(t, doc, "Line one</w:t><w:br/><w:t xml:space=\"preserve\">Line two")
	assert.Contains(t, doc, "multiple_choice")
	assert.Contains(t, doc, "MCQ Paper (25 questions)")
	// 1-based answer index for the first question.
	assert.Contains(t, doc, `Answer</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t xml:space="preserve">2</w:t>`)

	assert.Contains(t, files["word/styles.xml"], `<w:sz w:val="22"/>`)
}

func TestDOCX_MalformedLayout(t *testing.T) {
	tmpl, slots := sampleSlots(t, 25)
	tmpl.Layout["font_size"] = "huge"

	_, err := DOCX{}.Render(context.Background(), tmpl, slots)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `layout font_size="huge"`)
}

func TestHTML_Render(t *testing.T) {
	tmpl, slots := sampleSlots(t, 25)

	payload, err := NewHTML().Render(context.Background(), tmpl, slots)
	require.NoError(t, err)
	page := string(payload)

	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, "<title>MCQ Paper (25 questions)</title>")
	assert.Contains(t, page, "<h2>Question 1</h2>")
	assert.Contains(t, page, "What is &lt;b&gt;2+2&lt;/b&gt;?")
	assert.NotContains(t, page, "<b>2+2</b>")
	assert.Contains(t, page, "<strong>A.</strong> 3")
	assert.Contains(t, page, "<strong>Answer:</strong> B")
	assert.Contains(t, page, "<h2>Question 25</h2>")
	assert.Equal(t, 23, strings.Count(page, "(blank)"))
}

func TestHTML_EntityTextStaysLiteral(t *testing.T) {
	tmpl, err := template.DefaultCatalog().Resolve(25)
	require.NoError(t, err)
	qs := []question.Question{
		{Ordinal: 1, Stem: "Which tag does &lt;b&gt; encode?", Options: []string{"bold &amp; strong", "italic"}},
	}

	payload, err := NewHTML().Render(context.Background(), tmpl, assemble.Bind(qs, tmpl).Slots)
	require.NoError(t, err)
	page := string(payload)

	assert.Contains(t, page, "Which tag does &amp;lt;b&amp;gt; encode?")
	assert.Contains(t, page, "bold &amp;amp; strong")
	assert.NotContains(t, page, "<b>")
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `\- not a list`, escapeMarkdown("- not a list"))
	assert.Equal(t, `2\. not ordered`, escapeMarkdown("2. not ordered"))
	assert.Equal(t, `a \*b\* \_c\_`, escapeMarkdown("a *b* _c_"))
	assert.Equal(t, `\&lt;b\&gt;`, escapeMarkdown("&lt;b&gt;"))
}

func TestJSON_Render(t *testing.T) {
	tmpl, slots := sampleSlots(t, 25)

	payload, err := JSON{}.Render(context.Background(), tmpl, slots)
	require.NoError(t, err)

	var export DocumentExport
	require.NoError(t, json.Unmarshal(payload, &export))
	assert.Equal(t, "template-25", export.Template)
	assert.Equal(t, 25, export.Capacity)
	require.Len(t, export.Slots, 25)

	assert.Equal(t, "B", export.Slots[0].Answer)
	assert.Equal(t, "editor", export.Slots[0].Source)
	assert.Equal(t, "set.txt", export.Slots[1].Source)
	assert.Empty(t, export.Slots[1].Answer)
	assert.True(t, export.Slots[2].Blank)
	assert.Equal(t, 3, export.Slots[2].Index)
}
