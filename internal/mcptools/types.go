package mcptools

import "github.com/dusk-indust/mcqdoc/internal/orchestrator"

// --- MCP tool types for the --serve-mcp mode ---

// FileInput is one uploaded text file. Exactly one of Content,
// ContentBase64 or Path should be set.
type FileInput struct {
	Name          string `json:"name" jsonschema:"file name shown in warnings"`
	Content       string `json:"content,omitempty" jsonschema:"file text, already UTF-8"`
	ContentBase64 string `json:"contentBase64,omitempty" jsonschema:"raw file bytes, base64 encoded, for non UTF-8 files"`
	Path          string `json:"path,omitempty" jsonschema:"path of a local file to read instead of inline content"`
	Encoding      string `json:"encoding,omitempty" jsonschema:"declared charset of the bytes, e.g. windows-1252 (default: UTF-8 with BOM detection)"`
}

// GenerateDocumentInput is the input for the generate_document MCP tool.
type GenerateDocumentInput struct {
	Text       string      `json:"text,omitempty" jsonschema:"inline question text; parsed before any file"`
	Files      []FileInput `json:"files,omitempty" jsonschema:"uploaded files in submission order"`
	Capacity   int         `json:"capacity,omitempty" jsonschema:"template capacity: 25, 50, 100, 125, 150 or 200"`
	OutputPath string      `json:"outputPath,omitempty" jsonschema:"write the document here instead of returning it base64 encoded"`
}

// GenerateDocumentOutput is the result of the generate_document MCP tool.
type GenerateDocumentOutput struct {
	RequestID    string                 `json:"requestId,omitempty"`
	Status       string                 `json:"status"` // "ok", "ok_with_warnings" or "failed"
	Kind         string                 `json:"kind,omitempty"`
	Message      string                 `json:"message,omitempty"`
	Template     string                 `json:"template,omitempty"`
	MediaType    string                 `json:"mediaType,omitempty"`
	Counters     *orchestrator.Counters `json:"counters,omitempty"`
	Warnings     []string               `json:"warnings,omitempty"`
	DecodeErrors []string               `json:"decodeErrors,omitempty"`
	Document     string                 `json:"document,omitempty"`
	OutputPath   string                 `json:"outputPath,omitempty"`
}

// ListTemplatesInput is the input for the list_templates MCP tool.
type ListTemplatesInput struct{}

// ListTemplatesOutput is the result of the list_templates MCP tool.
type ListTemplatesOutput struct {
	Templates       []TemplateSummary `json:"templates"`
	DefaultCapacity int               `json:"defaultCapacity"`
}

// TemplateSummary is a brief overview of one template.
type TemplateSummary struct {
	ID       string `json:"id"`
	Capacity int    `json:"capacity"`
	Title    string `json:"title,omitempty"`
}
