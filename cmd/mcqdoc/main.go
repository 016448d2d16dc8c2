package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

// CLI flags parsed from command line.
type cliFlags struct {
	ConfigDir string
	Text      string
	Capacity  int
	Format    string
	Encoding  string
	Out       string
	Verbose   bool
	ServeMCP  bool
	MCPAddr   string
	ServeHTTP bool
	HTTPAddr  string
	Version   bool
}

// version is set by goreleaser at build time.
var version = "dev"

const usage = `Usage:
  mcqdoc [flags] [file ...]     generate a document from inline text and files ("-" reads stdin)
  mcqdoc templates [flags]      list the accepted template capacities
  mcqdoc init [-force] [dir]    write a starter mcqdoc.yml and register the MCP server in .mcp.json

Flags:
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		switch args[0] {
		case "init":
			return runInit(args[1:], stdout)
		case "templates":
			return runTemplates(args[1:], stdout)
		}
	}

	var flags cliFlags
	fs := newFlagSet("mcqdoc", stderr, &flags)
	fs.StringVar(&flags.Text, "text", "", "inline question text, parsed before any file")
	fs.IntVar(&flags.Capacity, "capacity", 0, "template capacity: 25, 50, 100, 125, 150 or 200 (default from config)")
	fs.StringVar(&flags.Format, "format", "", "output format: docx, html or json (default from config)")
	fs.StringVar(&flags.Encoding, "encoding", "", "charset of files that declare none (default from config)")
	fs.StringVar(&flags.Out, "out", "", `output path, "-" for stdout (default mcq-template-<capacity>.<format>)`)
	fs.BoolVar(&flags.Verbose, "verbose", false, "print progress and log to stderr")
	fs.BoolVar(&flags.ServeMCP, "serve-mcp", false, "run as an MCP server on stdio")
	fs.StringVar(&flags.MCPAddr, "mcp-addr", "", "serve MCP over streamable HTTP on this address instead of stdio")
	fs.BoolVar(&flags.ServeHTTP, "serve-http", false, "serve the web-form HTTP API")
	fs.StringVar(&flags.HTTPAddr, "http-addr", "", "HTTP API listen address (default from config)")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if flags.Version {
		fmt.Fprintln(stdout, version)
		return nil
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	switch {
	case flags.ServeMCP || flags.MCPAddr != "":
		return serveMCP(cfg, flags.MCPAddr)
	case flags.ServeHTTP:
		return serveHTTP(cfg)
	default:
		return runGenerate(cfg, flags, fs.Args(), stdout, stderr)
	}
}

func newFlagSet(name string, out io.Writer, flags *cliFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprint(out, usage)
		fs.PrintDefaults()
	}
	fs.StringVar(&flags.ConfigDir, "config", ".", "directory holding mcqdoc.yml")
	return fs
}
