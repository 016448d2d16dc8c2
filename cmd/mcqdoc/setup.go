package main

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/mcqdoc/internal/config"
	"github.com/dusk-indust/mcqdoc/internal/logger"
	"github.com/dusk-indust/mcqdoc/internal/orchestrator"
	"github.com/dusk-indust/mcqdoc/internal/render"
)

// loadConfig reads mcqdoc.yml, overlays the environment and then the flags.
func loadConfig(flags cliFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.ConfigDir)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if flags.Format != "" {
		cfg.Format = strings.ToLower(flags.Format)
	}
	if flags.Encoding != "" {
		cfg.DefaultEncoding = flags.Encoding
	}
	if flags.HTTPAddr != "" {
		cfg.HTTPAddr = flags.HTTPAddr
	}
	if flags.Verbose {
		cfg.Verbose = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildPipeline(cfg *config.Config, log *logger.Logger) (*orchestrator.Pipeline, error) {
	r, err := render.New(cfg.Format)
	if err != nil {
		return nil, err
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}
	p, err := orchestrator.NewPipeline(orchestrator.Config{
		Catalog:         catalog,
		Renderer:        r,
		RenderTimeout:   cfg.RenderTimeout,
		DefaultEncoding: cfg.DefaultEncoding,
		Logger:          log,
	})
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}
	return p, nil
}

// newLogger returns a logger for long-running modes, or for one-shot runs
// when verbose output was asked for.
func newLogger(cfg *config.Config, always bool) (*logger.Logger, error) {
	if !always && !cfg.Verbose {
		return logger.Nop(), nil
	}
	return logger.New(cfg.LogMode)
}
