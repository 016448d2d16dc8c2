// Package render implements the document renderers the assembler hands bound
// slot lists to.
package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dusk-indust/mcqdoc/internal/assemble"
	"github.com/dusk-indust/mcqdoc/internal/template"
)

// Format names a renderer.
type Format string

const (
	FormatDOCX Format = "docx"
	FormatHTML Format = "html"
	FormatJSON Format = "json"
)

var registry = map[Format]func() assemble.Renderer{
	FormatDOCX: func() assemble.Renderer { return DOCX{} },
	FormatHTML: func() assemble.Renderer { return NewHTML() },
	FormatJSON: func() assemble.Renderer { return JSON{} },
}

// New returns the renderer registered for format.
func New(format string) (assemble.Renderer, error) {
	ctor, ok := registry[Format(strings.ToLower(strings.TrimSpace(format)))]
	if !ok {
		return nil, fmt.Errorf("render: unknown format %q (supported: %s)", format, strings.Join(Formats(), ", "))
	}
	return ctor(), nil
}

// Formats lists the registered format names.
func Formats() []string {
	out := make([]string, 0, len(registry))
	for f := range registry {
		out = append(out, string(f))
	}
	sort.Strings(out)
	return out
}

// Extension returns the file extension for format, including the dot.
func Extension(format string) string {
	return "." + strings.ToLower(strings.TrimSpace(format))
}

// layoutInt reads an integer layout parameter, falling back to def when the
// key is absent. A present but malformed value is an error.
func layoutInt(l template.Layout, key string, def, min, max int) (int, error) {
	raw, ok := l[key]
	if !ok || raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min || n > max {
		return 0, fmt.Errorf("layout %s=%q: want an integer in [%d, %d]", key, raw, min, max)
	}
	return n, nil
}

func layoutString(l template.Layout, key, def string) string {
	if v, ok := l[key]; ok && v != "" {
		return v
	}
	return def
}

func optionLabel(i int) string {
	return string(rune('A' + i))
}
