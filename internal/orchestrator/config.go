package orchestrator

import (
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/dusk-indust/mcqdoc/internal/assemble"
	"github.com/dusk-indust/mcqdoc/internal/logger"
	"github.com/dusk-indust/mcqdoc/internal/template"
)

// Config holds the collaborators and budgets a Pipeline runs with.
type Config struct {
	// Catalog is the set of templates requests may select. Nil means every
	// supported capacity.
	Catalog *template.Catalog

	// Renderer produces the document payload. Required.
	Renderer assemble.Renderer

	// RenderTimeout bounds one renderer invocation. Zero leaves it unbounded.
	RenderTimeout time.Duration

	// DefaultEncoding applies to uploads that declare none. Empty means
	// UTF-8 with BOM detection.
	DefaultEncoding string

	// Logger receives one Info line per request. Nil discards.
	Logger *logger.Logger

	// Tracer records a span per request and per stage. Nil uses the global
	// provider.
	Tracer trace.Tracer
}
