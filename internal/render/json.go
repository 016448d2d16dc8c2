package render

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dusk-indust/mcqdoc/internal/assemble"
	"github.com/dusk-indust/mcqdoc/internal/template"
)

// DocumentExport is the top-level JSON export structure.
type DocumentExport struct {
	Template string          `json:"template"`
	Capacity int             `json:"capacity"`
	Layout   template.Layout `json:"layout,omitempty"`
	Slots    []SlotExport    `json:"slots"`
}

// SlotExport describes one template slot.
type SlotExport struct {
	Index   int      `json:"index"`
	Blank   bool     `json:"blank,omitempty"`
	Ordinal int      `json:"ordinal,omitempty"`
	Stem    string   `json:"stem,omitempty"`
	Options []string `json:"options,omitempty"`
	Answer  string   `json:"answer,omitempty"` // option letter
	Source  string   `json:"source,omitempty"`
}

// JSON renders the bound slots as an indented JSON document, for callers
// that lay the document out themselves.
type JSON struct{}

func (JSON) MediaType() string { return "application/json" }

func (JSON) Render(_ context.Context, tmpl template.Descriptor, slots []assemble.Slot) ([]byte, error) {
	export := DocumentExport{
		Template: tmpl.ID,
		Capacity: tmpl.Capacity,
		Layout:   tmpl.Layout,
		Slots:    make([]SlotExport, 0, len(slots)),
	}

	for _, s := range slots {
		if s.Blank() {
			export.Slots = append(export.Slots, SlotExport{Index: s.Index, Blank: true})
			continue
		}
		q := s.Question
		export.Slots = append(export.Slots, SlotExport{
			Index:   s.Index,
			Ordinal: q.Ordinal,
			Stem:    q.Stem,
			Options: q.Options,
			Answer:  q.AnswerLetter(),
			Source:  q.Origin.String(),
		})
	}

	out, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json: marshal export: %w", err)
	}
	return append(out, '\n'), nil
}
