// Package httpapi exposes the generator to the web form: a multipart
// POST /generate with the fields text_content, text_files and
// template_size.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dusk-indust/mcqdoc/internal/logger"
	"github.com/dusk-indust/mcqdoc/internal/orchestrator"
	"github.com/dusk-indust/mcqdoc/internal/template"
)

// Form field names.
const (
	FieldText     = "text_content"
	FieldFiles    = "text_files"
	FieldTemplate = "template_size"
)

// maxFilesPerRequest caps the request body at this many full-size uploads.
const maxFilesPerRequest = 16

// Options configures the HTTP adapter.
type Options struct {
	Generator       orchestrator.Generator
	Catalog         *template.Catalog
	DefaultCapacity int
	// Extension is appended to download file names, e.g. ".docx".
	Extension      string
	MaxUploadBytes int64
	ReadTimeout    time.Duration
	RequestTimeout time.Duration
	CORSOrigins    []string
	Logger         *logger.Logger
}

// Server holds the handlers' dependencies.
type Server struct {
	opts Options
	log  *logger.Logger
}

// New returns a Server. A nil Logger discards.
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Server{opts: opts, log: log}
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, s.requestLogger, middleware.Recoverer)
	if s.opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.opts.RequestTimeout))
	}
	if len(s.opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.opts.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			ExposedHeaders: []string{"Content-Disposition", headerStatus, headerWarnings, headerRequestID},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Get("/templates", s.listTemplates)
	r.Route("/generate", func(gr chi.Router) {
		gr.Post("/", s.generateJSON)
		gr.Post("/download", s.generateDownload)
	})
	return r
}

// NewHTTPServer wraps Routes in an http.Server bound to addr.
func (s *Server) NewHTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
