package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	data := []byte(`capacities: [50, 100]
defaultCapacity: 50
format: html
renderTimeout: 5s
defaultEncoding: windows-1252
corsOrigins:
  - https://forms.example.edu
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mcqdoc.yml"), data, 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []int{50, 100}, cfg.Capacities)
	assert.Equal(t, 50, cfg.DefaultCapacity)
	assert.Equal(t, "html", cfg.Format)
	assert.Equal(t, 5*time.Second, cfg.RenderTimeout)
	assert.Equal(t, 10*time.Second, cfg.ReadTimeout, "unset fields keep defaults")
	assert.Equal(t, "windows-1252", cfg.DefaultEncoding)
	assert.Equal(t, []string{"https://forms.example.edu"}, cfg.CORSOrigins)
	require.NoError(t, cfg.Validate())

	catalog, err := cfg.Catalog()
	require.NoError(t, err)
	assert.Equal(t, []int{50, 100}, catalog.Allowed())
}

func TestLoad_YAMLExtension(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mcqdoc.yaml"), []byte("format: json\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Format)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mcqdoc.yml"), []byte("capacities: [oops\n"), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: parse")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("MCQDOC_CAPACITIES", "25, 200")
	t.Setenv("MCQDOC_DEFAULT_CAPACITY", "200")
	t.Setenv("MCQDOC_FORMAT", "json")
	t.Setenv("MCQDOC_RENDER_TIMEOUT", "2s")
	t.Setenv("MCQDOC_MAX_UPLOAD_BYTES", "1024")
	t.Setenv("MCQDOC_CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("MCQDOC_LOG_MODE", "prod")
	t.Setenv("MCQDOC_VERBOSE", "yes")

	cfg := Defaults()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, []int{25, 200}, cfg.Capacities)
	assert.Equal(t, 200, cfg.DefaultCapacity)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, 2*time.Second, cfg.RenderTimeout)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, "prod", cfg.LogMode)
	assert.True(t, cfg.Verbose)
	require.NoError(t, cfg.Validate())
}

func TestApplyEnv_CollectsParseErrors(t *testing.T) {
	t.Setenv("MCQDOC_DEFAULT_CAPACITY", "many")
	t.Setenv("MCQDOC_READ_TIMEOUT", "soon")

	err := Defaults().ApplyEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MCQDOC_DEFAULT_CAPACITY")
	assert.Contains(t, err.Error(), "MCQDOC_READ_TIMEOUT")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"capacity outside fixed set", func(c *Config) { c.Capacities = []int{25, 75} }, `unknown template capacity "75"`},
		{"default not offered", func(c *Config) { c.Capacities = []int{50} }, "defaultCapacity"},
		{"unknown format", func(c *Config) { c.Format = "pdf" }, `format "pdf"`},
		{"zero render timeout", func(c *Config) { c.RenderTimeout = 0 }, "renderTimeout must be positive"},
		{"negative read timeout", func(c *Config) { c.ReadTimeout = -time.Second }, "readTimeout must be positive"},
		{"zero upload limit", func(c *Config) { c.MaxUploadBytes = 0 }, "maxUploadBytes must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
