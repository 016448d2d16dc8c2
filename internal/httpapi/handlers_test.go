package httpapi

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/mcqdoc/internal/orchestrator"
	"github.com/dusk-indust/mcqdoc/internal/render"
)

const sampleText = "1. Largest planet?\nA) Mars\nB) Jupiter @\nC) Venus\n\n2. Smallest prime?\nA) 1\nB) 2\nAnswer: B\n"

type formFile struct {
	name        string
	contentType string
	body        []byte
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	p, err := orchestrator.NewPipeline(orchestrator.Config{Renderer: render.JSON{}})
	require.NoError(t, err)
	return New(Options{
		Generator:       p,
		Catalog:         p.Catalog(),
		DefaultCapacity: 25,
		Extension:       render.Extension("json"),
		MaxUploadBytes:  1 << 16,
		ReadTimeout:     time.Second,
		CORSOrigins:     []string{"https://forms.example.edu"},
	})
}

func multipartBody(t *testing.T, fields map[string]string, files []formFile) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+FieldFiles+`"; filename="`+f.name+`"`)
		ct := f.contentType
		if ct == "" {
			ct = "text/plain"
		}
		h.Set("Content-Type", ct)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func post(t *testing.T, s *Server, path string, fields map[string]string, files []formFile) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, fields, files)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	return rec
}

func TestGenerate_JSONResponse(t *testing.T) {
	s := newTestServer(t)

	rec := post(t, s, "/generate", map[string]string{
		FieldText:     sampleText,
		FieldTemplate: "50",
	}, []formFile{{name: "extra.txt", body: []byte("Q3. Third?\nA) x\nB) y\n")}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, orchestrator.StatusOK, resp.Status)
	assert.Equal(t, "template-50", resp.Template)
	assert.Equal(t, "mcq-template-50.json", resp.Filename)
	assert.Equal(t, orchestrator.Counters{Parsed: 3, Filled: 3, Unfilled: 47}, resp.Counters)
	assert.Empty(t, resp.Warnings)

	doc, err := base64.StdEncoding.DecodeString(resp.Document)
	require.NoError(t, err)
	var export render.DocumentExport
	require.NoError(t, json.Unmarshal(doc, &export))
	assert.Equal(t, "Largest planet?", export.Slots[0].Stem)
	assert.Equal(t, "extra.txt", export.Slots[2].Source)
}

func TestGenerate_DefaultTemplate(t *testing.T) {
	s := newTestServer(t)

	rec := post(t, s, "/generate", map[string]string{FieldText: sampleText}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "template-25", resp.Template)
}

func TestGenerate_WarningsAndDecodeErrors(t *testing.T) {
	s := newTestServer(t)

	rec := post(t, s, "/generate", map[string]string{
		FieldText: "A) stray\nB) options\n\n" + sampleText,
	}, []formFile{
		{name: "latin.txt", contentType: "text/plain; charset=windows-1252", body: []byte("Caf\xe9?\nA) oui\nB) non\n")},
		{name: "broken.txt", body: []byte("Q?\xff\nA) a\nB) b\n")},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, orchestrator.StatusOKWithWarnings, resp.Status)
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "editor: line 1")
	require.Len(t, resp.DecodeErrors, 1)
	assert.Contains(t, resp.DecodeErrors[0], "broken.txt")
	assert.Equal(t, 3, resp.Counters.Parsed, "two editor questions plus the windows-1252 file")
}

func TestGenerate_SkipsEmptyFilePart(t *testing.T) {
	s := newTestServer(t)

	rec := post(t, s, "/generate", map[string]string{FieldText: sampleText}, []formFile{{name: "", body: nil}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		files  []formFile
		status int
		kind   string
	}{
		{
			name:   "no input",
			fields: map[string]string{FieldTemplate: "25"},
			status: http.StatusBadRequest,
			kind:   string(orchestrator.FailureNoInput),
		},
		{
			name:   "capacity outside set",
			fields: map[string]string{FieldText: sampleText, FieldTemplate: "30"},
			status: http.StatusBadRequest,
			kind:   string(orchestrator.FailureUnknownTemplate),
		},
		{
			name:   "non-numeric capacity",
			fields: map[string]string{FieldText: sampleText, FieldTemplate: "large"},
			status: http.StatusBadRequest,
			kind:   string(orchestrator.FailureUnknownTemplate),
		},
		{
			name:   "file too large",
			fields: map[string]string{FieldText: sampleText},
			files:  []formFile{{name: "big.txt", body: bytes.Repeat([]byte("a"), 1<<16+1)}},
			status: http.StatusBadRequest,
			kind:   "bad_request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, newTestServer(t), "/generate", tt.fields, tt.files)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.kind, resp.Kind)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestGenerateDownload(t *testing.T) {
	s := newTestServer(t)

	rec := post(t, s, "/generate/download", map[string]string{
		FieldText:     "A) stray\nB) options\n\n" + sampleText,
		FieldTemplate: "100",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=mcq-template-100.json`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, orchestrator.StatusOKWithWarnings, rec.Header().Get(headerStatus))
	assert.Equal(t, "1", rec.Header().Get(headerWarnings))
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))

	var export render.DocumentExport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &export))
	assert.Len(t, export.Slots, 100)
}

func TestListTemplates(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/templates", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var list []TemplateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 6)
	assert.Equal(t, TemplateResponse{ID: "template-25", Capacity: 25, Title: "MCQ Paper (25 questions)", Default: true}, list[0])
	assert.Equal(t, 200, list[5].Capacity)
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(t).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/generate", nil)
	req.Header.Set("Origin", "https://forms.example.edu")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	newTestServer(t).Routes().ServeHTTP(rec, req)

	assert.Equal(t, "https://forms.example.edu", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCharsetOf(t *testing.T) {
	assert.Equal(t, "windows-1252", charsetOf("text/plain; charset=windows-1252"))
	assert.Empty(t, charsetOf("text/plain"))
	assert.Empty(t, charsetOf(""))
	assert.Empty(t, charsetOf(";;"))
}
