package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/dusk-indust/mcqdoc/internal/deadline"
	"github.com/dusk-indust/mcqdoc/internal/orchestrator"
	"github.com/dusk-indust/mcqdoc/internal/source"
	"github.com/dusk-indust/mcqdoc/internal/template"
)

const (
	headerStatus    = "X-Mcqdoc-Status"
	headerWarnings  = "X-Mcqdoc-Warnings"
	headerRequestID = "X-Mcqdoc-Request-Id"
)

// GenerateResponse is the JSON body of POST /generate.
type GenerateResponse struct {
	RequestID    string                `json:"request_id"`
	Status       string                `json:"status"`
	Template     string                `json:"template"`
	MediaType    string                `json:"media_type"`
	Filename     string                `json:"filename"`
	Counters     orchestrator.Counters `json:"counters"`
	Warnings     []string              `json:"warnings"`
	DecodeErrors []string              `json:"decode_errors"`
	Document     string                `json:"document"` // base64
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// TemplateResponse describes one template in GET /templates.
type TemplateResponse struct {
	ID       string `json:"id"`
	Capacity int    `json:"capacity"`
	Title    string `json:"title,omitempty"`
	Default  bool   `json:"default,omitempty"`
}

// GET /templates
func (s *Server) listTemplates(w http.ResponseWriter, _ *http.Request) {
	list := s.opts.Catalog.List()
	out := make([]TemplateResponse, 0, len(list))
	for _, d := range list {
		out = append(out, TemplateResponse{
			ID:       d.ID,
			Capacity: d.Capacity,
			Title:    d.Layout["title"],
			Default:  d.Capacity == s.opts.DefaultCapacity,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// POST /generate (multipart: text_content, text_files..., template_size)
func (s *Server) generateJSON(w http.ResponseWriter, r *http.Request) {
	out, ok := s.generate(w, r)
	if !ok {
		return
	}

	resp := GenerateResponse{
		RequestID:    out.RequestID,
		Status:       out.Status(),
		Template:     out.TemplateID,
		MediaType:    out.MediaType,
		Filename:     s.filename(out),
		Counters:     out.Counters,
		Warnings:     make([]string, 0, len(out.Warnings)),
		DecodeErrors: make([]string, 0, len(out.DecodeErrors)),
		Document:     base64.StdEncoding.EncodeToString(out.Payload),
	}
	for _, wn := range out.Warnings {
		resp.Warnings = append(resp.Warnings, wn.String())
	}
	for _, de := range out.DecodeErrors {
		resp.DecodeErrors = append(resp.DecodeErrors, de.Error())
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /generate/download returns the document itself. Status and the
// diagnostic count travel in headers.
func (s *Server) generateDownload(w http.ResponseWriter, r *http.Request) {
	out, ok := s.generate(w, r)
	if !ok {
		return
	}

	h := w.Header()
	h.Set("Content-Type", out.MediaType)
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": s.filename(out)}))
	h.Set("Content-Length", strconv.Itoa(len(out.Payload)))
	h.Set(headerStatus, out.Status())
	h.Set(headerWarnings, strconv.Itoa(len(out.Warnings)+len(out.DecodeErrors)))
	h.Set(headerRequestID, out.RequestID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Payload)
}

// generate reads the form and runs the generator. On failure it has already
// written the error response.
func (s *Server) generate(w http.ResponseWriter, r *http.Request) (*orchestrator.Output, bool) {
	if s.opts.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes*maxFilesPerRequest)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("parse form: %w", err))
		return nil, false
	}

	capacity := s.opts.DefaultCapacity
	if v := strings.TrimSpace(r.FormValue(FieldTemplate)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, string(orchestrator.FailureUnknownTemplate),
				&template.UnknownTemplateError{Value: v, Allowed: s.opts.Catalog.Allowed()})
			return nil, false
		}
		capacity = n
	}

	files, err := s.readFiles(r)
	if err != nil {
		var te *deadline.TimeoutError
		if errors.As(err, &te) {
			writeError(w, http.StatusGatewayTimeout, string(orchestrator.FailureTimeout), err)
		} else {
			writeError(w, http.StatusBadRequest, "bad_request", err)
		}
		return nil, false
	}

	out, err := s.opts.Generator.Generate(r.Context(), orchestrator.Request{
		Text:     r.FormValue(FieldText),
		Files:    files,
		Capacity: capacity,
	})
	if err != nil {
		kind := orchestrator.Classify(err)
		writeError(w, statusFor(kind), string(kind), err)
		return nil, false
	}
	return out, true
}

// readFiles loads every text_files part in submission order. Empty parts,
// which browsers send when no file was chosen, are skipped.
func (s *Server) readFiles(r *http.Request) ([]source.RawSource, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	var out []source.RawSource
	for i, fh := range r.MultipartForm.File[FieldFiles] {
		if fh.Filename == "" && fh.Size == 0 {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		src, err := source.Load(r.Context(), i, fh.Filename, f, source.LoadOptions{
			Encoding: charsetOf(fh.Header.Get("Content-Type")),
			MaxBytes: s.opts.MaxUploadBytes,
			Timeout:  s.opts.ReadTimeout,
		})
		f.Close()
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, nil
}

func (s *Server) filename(out *orchestrator.Output) string {
	return "mcq-" + out.TemplateID + s.opts.Extension
}

// charsetOf returns the charset parameter of a part's Content-Type, if any.
func charsetOf(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}

func statusFor(kind orchestrator.FailureKind) int {
	switch kind {
	case orchestrator.FailureNoInput, orchestrator.FailureUnknownTemplate:
		return http.StatusBadRequest
	case orchestrator.FailureTimeout:
		return http.StatusGatewayTimeout
	case orchestrator.FailureCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind string, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Kind: kind})
}
