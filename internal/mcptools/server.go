package mcptools

import (
	"context"
	"errors"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewMCPServer creates an MCP server with the document tools registered:
// generate_document and list_templates.
func NewMCPServer(svc *DocumentService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "mcqdoc",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_document",
		Description: "Parse multiple-choice questions from inline text and uploaded files and lay them out in a fixed-capacity template. Returns the document with counters and any parse warnings or decode errors.",
	}, svc.GenerateDocument)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_templates",
		Description: "List the template capacities this server accepts, with their titles and the default.",
	}, svc.ListTemplates)

	return server
}

// RunStdio runs the MCP server on stdio transport, blocking until stdin is
// closed or the context is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the MCP server over streamable HTTP on addr until ctx is
// cancelled.
func RunHTTP(ctx context.Context, server *mcp.Server, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
