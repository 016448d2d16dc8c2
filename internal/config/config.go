// Package config loads mcqdoc settings from mcqdoc.yml and MCQDOC_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/mcqdoc/internal/render"
	"github.com/dusk-indust/mcqdoc/internal/template"
)

// Config holds settings shared by the CLI, the MCP server and the HTTP
// adapter.
type Config struct {
	// Capacities restricts the templates offered. Empty means all of them.
	Capacities      []int         `yaml:"capacities,omitempty"`
	DefaultCapacity int           `yaml:"defaultCapacity,omitempty"`
	Format          string        `yaml:"format,omitempty"`
	ReadTimeout     time.Duration `yaml:"readTimeout,omitempty"`
	RenderTimeout   time.Duration `yaml:"renderTimeout,omitempty"`
	MaxUploadBytes  int64         `yaml:"maxUploadBytes,omitempty"`
	DefaultEncoding string        `yaml:"defaultEncoding,omitempty"`
	HTTPAddr        string        `yaml:"httpAddr,omitempty"`
	CORSOrigins     []string      `yaml:"corsOrigins,omitempty"`
	LogMode         string        `yaml:"logMode,omitempty"`
	Verbose         bool          `yaml:"verbose,omitempty"`
}

// Defaults returns the configuration used when no file or variable
// overrides a field.
func Defaults() *Config {
	return &Config{
		DefaultCapacity: 25,
		Format:          string(render.FormatDOCX),
		ReadTimeout:     10 * time.Second,
		RenderTimeout:   30 * time.Second,
		MaxUploadBytes:  5 << 20,
		HTTPAddr:        ":8080",
		CORSOrigins:     []string{"*"},
		LogMode:         "dev",
	}
}

// Load attempts to read mcqdoc.yml or mcqdoc.yaml from the given directory
// on top of Defaults. Returns the defaults (not an error) if no config file
// exists.
func Load(dir string) (*Config, error) {
	cfg := Defaults()
	for _, name := range []string{"mcqdoc.yml", "mcqdoc.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		return cfg, nil
	}
	return cfg, nil
}

// ApplyEnv overlays MCQDOC_* environment variables onto c.
func (c *Config) ApplyEnv() error {
	var errs []error

	if v := os.Getenv("MCQDOC_CAPACITIES"); v != "" {
		caps, err := parseInts(csvOr("MCQDOC_CAPACITIES", ""))
		if err != nil {
			errs = append(errs, fmt.Errorf("MCQDOC_CAPACITIES: %w", err))
		}
		c.Capacities = caps
	}
	if v := os.Getenv("MCQDOC_DEFAULT_CAPACITY"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("MCQDOC_DEFAULT_CAPACITY: %w", err))
		}
		c.DefaultCapacity = n
	}
	c.Format = envOr("MCQDOC_FORMAT", c.Format)
	c.ReadTimeout = envDuration("MCQDOC_READ_TIMEOUT", c.ReadTimeout, &errs)
	c.RenderTimeout = envDuration("MCQDOC_RENDER_TIMEOUT", c.RenderTimeout, &errs)
	if v := os.Getenv("MCQDOC_MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("MCQDOC_MAX_UPLOAD_BYTES: %w", err))
		}
		c.MaxUploadBytes = n
	}
	c.DefaultEncoding = envOr("MCQDOC_DEFAULT_ENCODING", c.DefaultEncoding)
	c.HTTPAddr = envOr("MCQDOC_HTTP_ADDR", c.HTTPAddr)
	if os.Getenv("MCQDOC_CORS_ORIGINS") != "" {
		c.CORSOrigins = csvOr("MCQDOC_CORS_ORIGINS", "")
	}
	c.LogMode = envOr("MCQDOC_LOG_MODE", c.LogMode)
	c.Verbose = envBool("MCQDOC_VERBOSE", c.Verbose)

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: environment: %w", err)
	}
	return nil
}

// Validate reports every invalid field.
func (c *Config) Validate() error {
	var errs []error

	catalog, err := c.Catalog()
	if err != nil {
		errs = append(errs, err)
	} else if _, err := catalog.Resolve(c.DefaultCapacity); err != nil {
		errs = append(errs, fmt.Errorf("defaultCapacity: %w", err))
	}
	if !slices.Contains(render.Formats(), strings.ToLower(c.Format)) {
		errs = append(errs, fmt.Errorf("format %q: want one of %s", c.Format, strings.Join(render.Formats(), ", ")))
	}
	if c.ReadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("readTimeout must be positive, got %s", c.ReadTimeout))
	}
	if c.RenderTimeout <= 0 {
		errs = append(errs, fmt.Errorf("renderTimeout must be positive, got %s", c.RenderTimeout))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("maxUploadBytes must be positive, got %d", c.MaxUploadBytes))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Catalog builds the template catalog for the configured capacities.
func (c *Config) Catalog() (*template.Catalog, error) {
	return template.NewCatalog(c.Capacities)
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envDuration(k string, def time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", k, err))
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseInts(ss []string) ([]int, error) {
	out := make([]int, 0, len(ss))
	for _, s := range ss {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
