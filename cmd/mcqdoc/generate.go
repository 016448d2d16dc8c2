package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dusk-indust/mcqdoc/internal/config"
	"github.com/dusk-indust/mcqdoc/internal/orchestrator"
	"github.com/dusk-indust/mcqdoc/internal/render"
	"github.com/dusk-indust/mcqdoc/internal/source"
)

// runGenerate produces one document from the -text flag and the named files.
func runGenerate(cfg *config.Config, flags cliFlags, paths []string, stdout, stderr io.Writer) error {
	log, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer log.Sync()

	p, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}

	ctx := context.Background()
	files, err := loadFiles(ctx, cfg, paths)
	if err != nil {
		return err
	}

	capacity := flags.Capacity
	if capacity == 0 {
		capacity = cfg.DefaultCapacity
	}

	req := orchestrator.Request{Text: flags.Text, Files: files, Capacity: capacity}

	stopProgress := func() {}
	if cfg.Verbose {
		progress := orchestrator.NewProgressReporter()
		req.OnProgress = progress.Emit
		done := make(chan struct{})
		go func() {
			defer close(done)
			header := false
			for ev := range progress.Subscribe() {
				if !header {
					fmt.Fprintln(stderr, orchestrator.FormatRequestHeader(ev.RequestID, capacity))
					header = true
				}
				fmt.Fprintln(stderr, orchestrator.FormatProgress(ev))
			}
		}()
		stopProgress = func() {
			progress.Close()
			<-done
		}
	}

	out, err := p.Generate(ctx, req)
	stopProgress()
	if err != nil {
		return err
	}

	dest := flags.Out
	if dest == "" {
		dest = "mcq-" + out.TemplateID + render.Extension(cfg.Format)
	}
	if dest == "-" {
		if _, err := stdout.Write(out.Payload); err != nil {
			return fmt.Errorf("write stdout: %w", err)
		}
	} else if err := writeOutputFile(dest, out.Payload); err != nil {
		return err
	}

	for _, d := range out.Diagnostics() {
		fmt.Fprintf(stderr, "warning: %s\n", d)
	}
	c := out.Counters
	fmt.Fprintf(stderr, "%s: %s, %d parsed, %d filled, %d unfilled, %d dropped (%s)\n",
		displayDest(dest), out.TemplateID, c.Parsed, c.Filled, c.Unfilled, c.OverflowDropped, out.Status())
	return nil
}

// loadFiles reads each path as an upload, numbered in argument order.
func loadFiles(ctx context.Context, cfg *config.Config, paths []string) ([]source.RawSource, error) {
	opts := source.LoadOptions{MaxBytes: cfg.MaxUploadBytes, Timeout: cfg.ReadTimeout}
	files := make([]source.RawSource, 0, len(paths))
	for i, path := range paths {
		if path == "-" {
			src, err := source.Load(ctx, i, "stdin", os.Stdin, opts)
			if err != nil {
				return nil, err
			}
			files = append(files, src)
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		src, err := source.Load(ctx, i, filepath.Base(path), f, opts)
		f.Close()
		if err != nil {
			return nil, err
		}
		files = append(files, src)
	}
	return files, nil
}

// writeOutputFile writes content to the given path, creating directories as
// needed.
func writeOutputFile(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func displayDest(dest string) string {
	if dest == "-" {
		return "stdout"
	}
	return strconv.Quote(dest)
}
