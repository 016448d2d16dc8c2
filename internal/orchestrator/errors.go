package orchestrator

import (
	"context"
	"errors"

	"github.com/dusk-indust/mcqdoc/internal/assemble"
	"github.com/dusk-indust/mcqdoc/internal/deadline"
	"github.com/dusk-indust/mcqdoc/internal/template"
)

// ErrNoInput rejects a request that carries neither editor text nor uploads.
var ErrNoInput = errors.New("provide text content or upload at least one text file")

// FailureKind classifies a fatal Generate error for transports that map it
// onto their own status codes.
type FailureKind string

const (
	FailureNoInput         FailureKind = "no_input"
	FailureUnknownTemplate FailureKind = "unknown_template"
	FailureRender          FailureKind = "render"
	FailureTimeout         FailureKind = "timeout"
	FailureCanceled        FailureKind = "canceled"
	FailureInternal        FailureKind = "internal"
)

// Classify returns the kind of a Generate error. Timeouts are checked before
// render failures because a render that overruns its budget surfaces as a
// timeout.
func Classify(err error) FailureKind {
	var (
		ute *template.UnknownTemplateError
		te  *deadline.TimeoutError
		re  *assemble.RenderError
	)
	switch {
	case errors.Is(err, ErrNoInput):
		return FailureNoInput
	case errors.As(err, &ute):
		return FailureUnknownTemplate
	case errors.As(err, &te), errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	case errors.As(err, &re):
		return FailureRender
	case errors.Is(err, context.Canceled):
		return FailureCanceled
	default:
		return FailureInternal
	}
}
