package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/mcqdoc/internal/assemble"
	"github.com/dusk-indust/mcqdoc/internal/logger"
	"github.com/dusk-indust/mcqdoc/internal/question"
	"github.com/dusk-indust/mcqdoc/internal/source"
	"github.com/dusk-indust/mcqdoc/internal/template"
)

const tracerName = "github.com/dusk-indust/mcqdoc/internal/orchestrator"

// Compile-time interface check.
var _ Generator = (*Pipeline)(nil)

// Pipeline runs requests through merge, parse, resolve, assemble and render.
// It keeps no per-request state, so one Pipeline serves concurrent requests
// as long as its renderer does.
type Pipeline struct {
	catalog   *template.Catalog
	assembler *assemble.Assembler
	encoding  string
	log       *logger.Logger
	tracer    trace.Tracer
}

// NewPipeline creates a Pipeline from cfg, filling in defaults for the
// optional collaborators.
func NewPipeline(cfg Config) (*Pipeline, error) {
	if cfg.Renderer == nil {
		return nil, errors.New("pipeline: a renderer is required")
	}
	catalog := cfg.Catalog
	if catalog == nil {
		catalog = template.DefaultCatalog()
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return &Pipeline{
		catalog:   catalog,
		assembler: assemble.NewAssembler(cfg.Renderer, cfg.RenderTimeout),
		encoding:  cfg.DefaultEncoding,
		log:       log,
		tracer:    tracer,
	}, nil
}

// Catalog returns the templates this pipeline accepts.
func (p *Pipeline) Catalog() *template.Catalog {
	return p.catalog
}

// Generate turns one request into a rendered document. Decode errors and
// parse warnings are returned on the Output; the error return is reserved
// for ErrNoInput, *template.UnknownTemplateError, *assemble.RenderError,
// *deadline.TimeoutError and cancellation.
func (p *Pipeline) Generate(ctx context.Context, req Request) (*Output, error) {
	r := &requestRun{id: uuid.NewString(), onProgress: req.OnProgress}

	ctx, span := p.tracer.Start(ctx, "mcqdoc.generate", trace.WithAttributes(
		attribute.String("mcqdoc.request_id", r.id),
		attribute.Int("mcqdoc.capacity", req.Capacity),
		attribute.Int("mcqdoc.uploads", len(req.Files)),
	))
	defer span.End()
	log := p.log.With("request_id", r.id)

	out, err := p.generate(ctx, req, r, log)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		switch kind := Classify(err); kind {
		case FailureRender, FailureInternal:
			log.Error("generate failed", "kind", string(kind), "error", err)
		default:
			log.Warn("generate rejected", "kind", string(kind), "error", err)
		}
		return nil, err
	}

	span.SetAttributes(
		attribute.String("mcqdoc.template", out.TemplateID),
		attribute.Int("mcqdoc.parsed", out.Counters.Parsed),
		attribute.Int("mcqdoc.overflow_dropped", out.Counters.OverflowDropped),
	)
	log.Info("document generated",
		"template", out.TemplateID,
		"status", out.Status(),
		"parsed", out.Counters.Parsed,
		"filled", out.Counters.Filled,
		"unfilled", out.Counters.Unfilled,
		"overflow_dropped", out.Counters.OverflowDropped,
		"warnings", len(out.Warnings),
		"decode_errors", len(out.DecodeErrors),
		"bytes", len(out.Payload),
	)
	return out, nil
}

func (p *Pipeline) generate(ctx context.Context, req Request, r *requestRun, log *logger.Logger) (*Output, error) {
	r.reach(StateReceived, "")
	if strings.TrimSpace(req.Text) == "" && len(req.Files) == 0 {
		return nil, r.fail(StateMerged, ErrNoInput)
	}

	// Resolve runs alongside the merge; parsing waits for both so that an
	// unknown capacity rejects the request before any parse work.
	var (
		tmpl   template.Descriptor
		merged source.Merged
	)
	r.work(StateMerged)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := p.catalog.Resolve(req.Capacity)
		if err != nil {
			return err
		}
		tmpl = d
		return nil
	})
	g.Go(func() error {
		_, span := p.tracer.Start(gctx, "mcqdoc.merge")
		defer span.End()
		merged = source.Merge(req.Text, req.Files, p.encoding)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		var ute *template.UnknownTemplateError
		if errors.As(err, &ute) {
			return nil, r.fail(StateResolved, err)
		}
		return nil, r.fail(StateMerged, err)
	}
	for _, de := range merged.Errors {
		log.Warn("source skipped", "source", de.Origin.String(), "encoding", de.Encoding, "error", de.Err)
	}
	r.reach(StateMerged, fmt.Sprintf("%d sources, %d decode errors", len(merged.Texts), len(merged.Errors)))

	r.work(StateParsed)
	pctx, pspan := p.tracer.Start(ctx, "mcqdoc.parse", trace.WithAttributes(
		attribute.Int("mcqdoc.sources", len(merged.Texts)),
	))
	parsed, err := question.ParseAll(pctx, merged.Texts)
	pspan.End()
	if err != nil {
		return nil, r.fail(StateParsed, err)
	}
	for _, w := range parsed.Warnings {
		log.Debug("parse warning", "source", w.Source, "line", w.Line, "message", w.Message)
	}
	r.reach(StateParsed, fmt.Sprintf("%d questions, %d warnings", len(parsed.Questions), len(parsed.Warnings)))
	r.reach(StateResolved, tmpl.ID)

	if err := ctx.Err(); err != nil {
		return nil, r.fail(StateAssembled, err)
	}
	res := assemble.Bind(parsed.Questions, tmpl)
	r.reach(StateAssembled, fmt.Sprintf("%d filled, %d unfilled, %d dropped", res.Filled, res.Unfilled, res.OverflowDropped))

	r.work(StateRendered)
	rctx, rspan := p.tracer.Start(ctx, "mcqdoc.render", trace.WithAttributes(
		attribute.String("mcqdoc.template", tmpl.ID),
	))
	err = p.assembler.Render(rctx, tmpl, &res)
	if err != nil {
		rspan.RecordError(err)
		rspan.SetStatus(codes.Error, err.Error())
	}
	rspan.End()
	if err != nil {
		return nil, r.fail(StateRendered, err)
	}
	r.reach(StateRendered, fmt.Sprintf("%d bytes", len(res.Payload)))

	return &Output{
		RequestID:    r.id,
		TemplateID:   tmpl.ID,
		Capacity:     tmpl.Capacity,
		Payload:      res.Payload,
		MediaType:    res.MediaType,
		Questions:    parsed.Questions,
		Warnings:     parsed.Warnings,
		DecodeErrors: merged.Errors,
		Counters: Counters{
			Parsed:          len(parsed.Questions),
			Filled:          res.Filled,
			Unfilled:        res.Unfilled,
			OverflowDropped: res.OverflowDropped,
		},
		Dropped: res.Dropped,
		Trace:   r.trace,
	}, nil
}

// requestRun records the state trace of one request and forwards progress.
type requestRun struct {
	id         string
	trace      []State
	onProgress func(ProgressEvent)
}

func (r *requestRun) work(s State) {
	r.emit(ProgressEvent{RequestID: r.id, State: s, Status: ProgressWorking})
}

func (r *requestRun) reach(s State, msg string) {
	r.trace = append(r.trace, s)
	if s == StateReceived {
		return
	}
	r.emit(ProgressEvent{RequestID: r.id, State: s, Status: ProgressComplete, Message: msg})
}

// fail moves the request to StateFailed. s is the state it was working
// towards. The returned error wraps err with that step's name.
func (r *requestRun) fail(s State, err error) error {
	r.trace = append(r.trace, StateFailed)
	r.emit(ProgressEvent{RequestID: r.id, State: s, Status: ProgressFailed, Message: err.Error()})
	return fmt.Errorf("pipeline: %s: %w", s.Activity(), err)
}

func (r *requestRun) emit(ev ProgressEvent) {
	if r.onProgress != nil {
		r.onProgress(ev)
	}
}
