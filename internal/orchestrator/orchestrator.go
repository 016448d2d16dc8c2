package orchestrator

import (
	"context"

	"github.com/dusk-indust/mcqdoc/internal/question"
	"github.com/dusk-indust/mcqdoc/internal/source"
)

// State is a point in the per-request state machine. Transitions are
// one-way: Received, Merged, Parsed, Resolved, Assembled, then Rendered or
// Failed.
type State int

const (
	StateReceived State = iota
	StateMerged
	StateParsed
	StateResolved
	StateAssembled
	StateRendered
	StateFailed
)

func (s State) String() string {
	names := [...]string{
		"received",
		"merged",
		"parsed",
		"resolved",
		"assembled",
		"rendered",
		"failed",
	}
	if s >= 0 && int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// Activity names the work that leads into s, for progress output.
func (s State) Activity() string {
	switch s {
	case StateMerged:
		return "merge"
	case StateParsed:
		return "parse"
	case StateResolved:
		return "resolve"
	case StateAssembled:
		return "assemble"
	case StateRendered:
		return "render"
	default:
		return s.String()
	}
}

// Request is one call to Generate.
type Request struct {
	// Text is the inline editor buffer. Blank text contributes no source.
	Text string

	// Files are the uploaded sources, ordered by their Seq.
	Files []source.RawSource

	// Capacity selects the template.
	Capacity int

	// OnProgress, when set, is called synchronously for every state change.
	OnProgress func(ProgressEvent)
}

// Counters summarises how parsed questions were bound to the template.
type Counters struct {
	Parsed          int `json:"parsed"`
	Filled          int `json:"filled"`
	Unfilled        int `json:"unfilled"`
	OverflowDropped int `json:"overflow_dropped"`
}

// Output is the result of a successful request. A request with warnings or
// decode errors still produces an Output; only fatal failures return an
// error instead.
type Output struct {
	RequestID  string
	TemplateID string
	Capacity   int

	Payload   []byte
	MediaType string

	Questions    []question.Question
	Warnings     []question.Warning
	DecodeErrors []*source.DecodeError

	Counters Counters
	// Dropped lists the ordinals excluded by overflow.
	Dropped []int

	Trace []State
}

const (
	StatusOK             = "ok"
	StatusOKWithWarnings = "ok_with_warnings"
)

// Status reports whether the document was generated cleanly or with
// diagnostics the caller should display.
func (o *Output) Status() string {
	if len(o.Warnings) > 0 || len(o.DecodeErrors) > 0 {
		return StatusOKWithWarnings
	}
	return StatusOK
}

// Diagnostics returns decode errors followed by parse warnings as display
// strings.
func (o *Output) Diagnostics() []string {
	out := make([]string, 0, len(o.DecodeErrors)+len(o.Warnings))
	for _, de := range o.DecodeErrors {
		out = append(out, de.Error())
	}
	for _, w := range o.Warnings {
		out = append(out, w.String())
	}
	return out
}

// ProgressEvent is emitted on each state change of a request.
type ProgressEvent struct {
	RequestID string
	State     State
	Status    ProgressStatus
	Message   string
}

// ProgressStatus is the state of one step within a request.
type ProgressStatus string

const (
	ProgressWorking  ProgressStatus = "working"
	ProgressComplete ProgressStatus = "complete"
	ProgressFailed   ProgressStatus = "failed"
)

// Generator produces capacity-sized documents from MCQ text.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Output, error)
}
