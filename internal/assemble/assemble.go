// Package assemble binds parsed questions to the slots of a template and
// hands the bound slot list to a document renderer.
package assemble

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dusk-indust/mcqdoc/internal/deadline"
	"github.com/dusk-indust/mcqdoc/internal/question"
	"github.com/dusk-indust/mcqdoc/internal/template"
)

// Slot is one position of a template. Question is nil for a blank slot.
type Slot struct {
	Index    int                `json:"index"` // 1-based
	Question *question.Question `json:"question,omitempty"`
}

// Blank reports whether no question is bound to the slot.
func (s Slot) Blank() bool { return s.Question == nil }

// Renderer produces the output document for a bound slot list. slots always
// has exactly tmpl.Capacity entries, filled ones first.
type Renderer interface {
	Render(ctx context.Context, tmpl template.Descriptor, slots []Slot) ([]byte, error)

	// MediaType is the MIME type of the rendered payload.
	MediaType() string
}

// RenderError wraps a renderer failure. It is fatal for the request.
type RenderError struct {
	TemplateID string
	Err        error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.TemplateID, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Result is the outcome of one assembly. It is not modified after Assemble
// returns it.
type Result struct {
	TemplateID      string
	Capacity        int
	Slots           []Slot
	Filled          int
	Unfilled        int
	OverflowDropped int
	Dropped         []int // ordinals excluded by overflow
	Payload         []byte
	MediaType       string
}

// FilledSlots returns the slots bound to a question, in slot order.
func (r *Result) FilledSlots() []Slot {
	return r.Slots[:r.Filled]
}

// Assembler binds and renders. It holds no per-request state and is safe
// for concurrent use when its Renderer is.
type Assembler struct {
	renderer Renderer
	timeout  time.Duration
}

// NewAssembler returns an Assembler that bounds each render call by timeout.
// A zero timeout leaves rendering unbounded.
func NewAssembler(r Renderer, timeout time.Duration) *Assembler {
	return &Assembler{renderer: r, timeout: timeout}
}

// Bind maps questions onto tmpl's slots in ordinal order. Questions beyond
// the capacity (the highest ordinals) are dropped and counted; slots beyond
// the question count are left blank and counted.
func Bind(questions []question.Question, tmpl template.Descriptor) Result {
	ordered := slices.Clone(questions)
	slices.SortStableFunc(ordered, func(a, b question.Question) int {
		return cmp.Compare(a.Ordinal, b.Ordinal)
	})

	res := Result{
		TemplateID: tmpl.ID,
		Capacity:   tmpl.Capacity,
		Slots:      make([]Slot, tmpl.Capacity),
	}

	for i := range res.Slots {
		res.Slots[i].Index = i + 1
		if i < len(ordered) {
			q := ordered[i]
			res.Slots[i].Question = &q
			res.Filled++
		}
	}
	res.Unfilled = tmpl.Capacity - res.Filled

	if len(ordered) > tmpl.Capacity {
		for _, q := range ordered[tmpl.Capacity:] {
			res.Dropped = append(res.Dropped, q.Ordinal)
		}
		res.OverflowDropped = len(res.Dropped)
	}

	return res
}

// Assemble binds questions to tmpl and renders the document. A renderer
// failure is returned as *RenderError and an expired render budget as
// *deadline.TimeoutError; in both cases no partial result is returned.
func (a *Assembler) Assemble(ctx context.Context, questions []question.Question, tmpl template.Descriptor) (*Result, error) {
	res := Bind(questions, tmpl)
	if err := a.Render(ctx, tmpl, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Render invokes the renderer on an already bound result and stores the
// payload in it. res is left untouched on failure.
func (a *Assembler) Render(ctx context.Context, tmpl template.Descriptor, res *Result) error {
	var payload []byte
	err := deadline.Run(ctx, a.timeout, "render "+tmpl.ID, func(ctx context.Context) error {
		out, err := a.renderer.Render(ctx, tmpl, res.Slots)
		if err != nil {
			return &RenderError{TemplateID: tmpl.ID, Err: err}
		}
		if len(out) == 0 {
			return &RenderError{TemplateID: tmpl.ID, Err: errors.New("renderer returned an empty document")}
		}
		payload = out
		return nil
	})
	if err != nil {
		return err
	}

	res.Payload = payload
	res.MediaType = a.renderer.MediaType()
	return nil
}
