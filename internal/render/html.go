package render

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/dusk-indust/mcqdoc/internal/assemble"
	"github.com/dusk-indust/mcqdoc/internal/template"
	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// HTML renders a self-contained preview page. Slots are written as Markdown
// and converted with goldmark; raw HTML in question text is never passed
// through.
type HTML struct {
	md goldmark.Markdown
}

// NewHTML returns an HTML renderer.
func NewHTML() *HTML {
	return &HTML{
		md: goldmark.New(
			goldmark.WithRendererOptions(gmhtml.WithHardWraps(), gmhtml.WithXHTML()),
		),
	}
}

func (*HTML) MediaType() string { return "text/html; charset=utf-8" }

func (h *HTML) Render(ctx context.Context, tmpl template.Descriptor, slots []assemble.Slot) ([]byte, error) {
	if _, err := layoutInt(tmpl.Layout, "font_size", 22, 8, 144); err != nil {
		return nil, err
	}
	title := layoutString(tmpl.Layout, "title", tmpl.ID)

	var md strings.Builder
	for _, s := range slots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		writeSlotMarkdown(&md, s)
	}

	var body bytes.Buffer
	if err := h.md.Convert([]byte(md.String()), &body); err != nil {
		return nil, fmt.Errorf("html: convert markdown: %w", err)
	}

	var page bytes.Buffer
	fmt.Fprintf(&page, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n<h1>%s</h1>\n",
		html.EscapeString(title), html.EscapeString(title))
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}

func writeSlotMarkdown(b *strings.Builder, s assemble.Slot) {
	if s.Blank() {
		fmt.Fprintf(b, "## Question %d\n\n*(blank)*\n\n---\n\n", s.Index)
		return
	}

	q := s.Question
	fmt.Fprintf(b, "## Question %d\n\n%s\n\n", s.Index, escapeMarkdown(q.Stem))
	for i, opt := range q.Options {
		fmt.Fprintf(b, "- **%s.** %s\n", optionLabel(i), escapeMarkdown(opt))
	}
	b.WriteString("\n")
	if letter := q.AnswerLetter(); letter != "" {
		fmt.Fprintf(b, "**Answer:** %s\n\n", letter)
	}
	b.WriteString("---\n\n")
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", `*`, `\*`, `_`, `\_`, `[`, `\[`, `]`, `\]`,
	`#`, `\#`, `<`, `\<`, `>`, `\>`, `|`, `\|`, `!`, `\!`, `&`, `\&`,
)

var (
	bulletMarkerRe  = regexp.MustCompile(`^(\s*)([-+])`)
	orderedMarkerRe = regexp.MustCompile(`^(\s*)(\d+)([.)])`)
)

// escapeMarkdown neutralises Markdown syntax so question text renders
// literally. Leading list markers are escaped line by line.
func escapeMarkdown(s string) string {
	lines := strings.Split(markdownEscaper.Replace(s), "\n")
	for i, line := range lines {
		line = bulletMarkerRe.ReplaceAllString(line, `$1\$2`)
		lines[i] = orderedMarkerRe.ReplaceAllString(line, `$1$2\$3`)
	}
	return strings.Join(lines, "\n")
}
