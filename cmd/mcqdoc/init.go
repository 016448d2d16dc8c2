package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// mcpConfig represents the structure of a .mcp.json file.
type mcpConfig struct {
	MCPServers map[string]json.RawMessage `json:"mcpServers"`
}

// mcqdocMCPEntry is the MCP server configuration for the mcqdoc binary.
var mcqdocMCPEntry = json.RawMessage(`{
  "type": "stdio",
  "command": "mcqdoc",
  "args": ["--serve-mcp"]
}`)

const starterConfig = `# mcqdoc configuration. Every field is optional; MCQDOC_* environment
# variables override the values here.

# Capacities offered to callers, a subset of 25, 50, 100, 125, 150, 200.
capacities: [25, 50, 100, 125, 150, 200]
defaultCapacity: 25

# docx, html or json
format: docx

readTimeout: 10s
renderTimeout: 30s
maxUploadBytes: 5242880

# Charset assumed for uploads that declare none; empty means UTF-8.
defaultEncoding: ""

httpAddr: ":8080"
corsOrigins: ["*"]
logMode: dev
`

// runInit writes a starter mcqdoc.yml and registers the MCP server in the
// target directory's .mcp.json.
func runInit(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("mcqdoc init", flag.ContinueOnError)
	fs.SetOutput(stdout)
	force := fs.Bool("force", false, "overwrite existing files and entries")
	if err := fs.Parse(args); err != nil {
		return err
	}

	dir := "."
	if fs.NArg() > 0 {
		dir = fs.Arg(0)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", abs, err)
	}

	cfgPath := filepath.Join(abs, "mcqdoc.yml")
	if _, err := os.Stat(cfgPath); err == nil && !*force {
		fmt.Fprintf(stdout, "  skipped %s (exists, use -force to overwrite)\n", dotRelative(abs, cfgPath))
	} else {
		if err := os.WriteFile(cfgPath, []byte(starterConfig), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", cfgPath, err)
		}
		fmt.Fprintf(stdout, "  created %s\n", dotRelative(abs, cfgPath))
	}

	if err := mergeMCPConfig(filepath.Join(abs, ".mcp.json"), *force, stdout); err != nil {
		return err
	}

	fmt.Fprintln(stdout, "\nSetup complete.")
	return nil
}

// mergeMCPConfig creates or merges the mcqdoc entry into .mcp.json, keeping
// every other server entry.
func mergeMCPConfig(mcpPath string, force bool, stdout io.Writer) error {
	var cfg mcpConfig

	data, err := os.ReadFile(mcpPath)
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing %s: %w", mcpPath, err)
		}
	}

	if cfg.MCPServers == nil {
		cfg.MCPServers = make(map[string]json.RawMessage)
	}

	if _, exists := cfg.MCPServers["mcqdoc"]; exists && !force {
		fmt.Fprintf(stdout, "  skipped .mcp.json mcqdoc entry (exists, use -force to overwrite)\n")
		return nil
	}

	cfg.MCPServers["mcqdoc"] = mcqdocMCPEntry

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling .mcp.json: %w", err)
	}

	if err := os.WriteFile(mcpPath, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", mcpPath, err)
	}

	action := "created"
	if data != nil {
		action = "updated"
	}
	fmt.Fprintf(stdout, "  %s .mcp.json with mcqdoc MCP server\n", action)
	return nil
}

// dotRelative returns a display path relative to base, prefixed with "./".
func dotRelative(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return "./" + rel
}
