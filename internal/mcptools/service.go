package mcptools

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/mcqdoc/internal/orchestrator"
	"github.com/dusk-indust/mcqdoc/internal/source"
	"github.com/dusk-indust/mcqdoc/internal/template"
)

// DocumentService handles MCP tool calls. It wraps a Generator and the
// catalog its requests resolve against.
type DocumentService struct {
	gen             orchestrator.Generator
	catalog         *template.Catalog
	defaultCapacity int
	load            source.LoadOptions
}

// NewDocumentService creates a DocumentService. load bounds files read from
// a Path.
func NewDocumentService(gen orchestrator.Generator, catalog *template.Catalog, defaultCapacity int, load source.LoadOptions) *DocumentService {
	return &DocumentService{
		gen:             gen,
		catalog:         catalog,
		defaultCapacity: defaultCapacity,
		load:            load,
	}
}

// GenerateDocument parses the given text and files into a document.
// Pipeline failures are reported in the output with status "failed";
// malformed tool input is returned as an error.
func (s *DocumentService) GenerateDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateDocumentInput,
) (*mcp.CallToolResult, GenerateDocumentOutput, error) {
	files, err := s.rawSources(ctx, input.Files)
	if err != nil {
		return nil, GenerateDocumentOutput{Status: "failed", Message: err.Error()}, err
	}

	capacity := input.Capacity
	if capacity == 0 {
		capacity = s.defaultCapacity
	}

	out, err := s.gen.Generate(ctx, orchestrator.Request{
		Text:     input.Text,
		Files:    files,
		Capacity: capacity,
	})
	if err != nil {
		return nil, GenerateDocumentOutput{
			Status:  "failed",
			Kind:    string(orchestrator.Classify(err)),
			Message: err.Error(),
		}, nil
	}

	result := GenerateDocumentOutput{
		RequestID: out.RequestID,
		Status:    out.Status(),
		Template:  out.TemplateID,
		MediaType: out.MediaType,
		Counters:  &out.Counters,
	}
	for _, w := range out.Warnings {
		result.Warnings = append(result.Warnings, w.String())
	}
	for _, de := range out.DecodeErrors {
		result.DecodeErrors = append(result.DecodeErrors, de.Error())
	}

	if input.OutputPath != "" {
		if err := writeOutput(input.OutputPath, out.Payload); err != nil {
			return nil, GenerateDocumentOutput{Status: "failed", Message: err.Error()}, err
		}
		result.OutputPath = input.OutputPath
	} else {
		result.Document = base64.StdEncoding.EncodeToString(out.Payload)
	}
	return nil, result, nil
}

// ListTemplates reports every template the catalog accepts.
func (s *DocumentService) ListTemplates(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListTemplatesInput,
) (*mcp.CallToolResult, ListTemplatesOutput, error) {
	out := ListTemplatesOutput{DefaultCapacity: s.defaultCapacity}
	for _, d := range s.catalog.List() {
		out.Templates = append(out.Templates, TemplateSummary{
			ID:       d.ID,
			Capacity: d.Capacity,
			Title:    d.Layout["title"],
		})
	}
	return nil, out, nil
}

// rawSources converts tool file inputs into sources numbered in the order
// they were given.
func (s *DocumentService) rawSources(ctx context.Context, files []FileInput) ([]source.RawSource, error) {
	out := make([]source.RawSource, 0, len(files))
	for i, f := range files {
		name := f.Name
		if name == "" && f.Path != "" {
			name = filepath.Base(f.Path)
		}
		if name == "" {
			name = fmt.Sprintf("file-%d", i+1)
		}

		var src source.RawSource
		switch {
		case f.Path != "":
			fh, err := os.Open(f.Path)
			if err != nil {
				return nil, fmt.Errorf("open %s: %w", f.Path, err)
			}
			src, err = source.Load(ctx, i, name, fh, s.load)
			fh.Close()
			if err != nil {
				return nil, err
			}
		case f.ContentBase64 != "":
			data, err := base64.StdEncoding.DecodeString(f.ContentBase64)
			if err != nil {
				return nil, fmt.Errorf("file %s: invalid base64: %w", name, err)
			}
			src, err = source.Load(ctx, i, name, bytes.NewReader(data), s.load)
			if err != nil {
				return nil, err
			}
		default:
			src = source.RawSource{Origin: source.Upload(name), Seq: i, Content: []byte(f.Content)}
		}
		if f.Encoding != "" {
			src.Encoding = f.Encoding
		}
		out = append(out, src)
	}
	return out, nil
}

func writeOutput(path string, payload []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
