package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dusk-indust/mcqdoc/internal/config"
	"github.com/dusk-indust/mcqdoc/internal/httpapi"
	"github.com/dusk-indust/mcqdoc/internal/mcptools"
	"github.com/dusk-indust/mcqdoc/internal/render"
	"github.com/dusk-indust/mcqdoc/internal/source"
)

// serveMCP runs the MCP tools on stdio, or on streamable HTTP when addr is
// set, until interrupted.
func serveMCP(cfg *config.Config, addr string) error {
	log, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer log.Sync()

	p, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}
	svc := mcptools.NewDocumentService(p, p.Catalog(), cfg.DefaultCapacity, source.LoadOptions{
		MaxBytes: cfg.MaxUploadBytes,
		Timeout:  cfg.ReadTimeout,
	})
	server := mcptools.NewMCPServer(svc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if addr != "" {
		log.Info("serving MCP over HTTP", "addr", addr, "format", cfg.Format)
		return mcptools.RunHTTP(ctx, server, addr)
	}
	log.Info("serving MCP on stdio", "format", cfg.Format)
	return mcptools.RunStdio(ctx, server)
}

// serveHTTP runs the web-form API until interrupted.
func serveHTTP(cfg *config.Config) error {
	log, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer log.Sync()

	p, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}
	api := httpapi.New(httpapi.Options{
		Generator:       p,
		Catalog:         p.Catalog(),
		DefaultCapacity: cfg.DefaultCapacity,
		Extension:       render.Extension(cfg.Format),
		MaxUploadBytes:  cfg.MaxUploadBytes,
		ReadTimeout:     cfg.ReadTimeout,
		RequestTimeout:  cfg.ReadTimeout + cfg.RenderTimeout,
		CORSOrigins:     cfg.CORSOrigins,
		Logger:          log,
	})
	srv := api.NewHTTPServer(cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("serving HTTP API", "addr", cfg.HTTPAddr, "format", cfg.Format)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
