package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - Load() uses defaults when no config file exists
// - Load() reads .jacbridge/config.yml and merges it with defaults
// - Load() reads .jacbridge/config.yaml
// - Environment variables override config file values
// - Explicit config file is honoured; missing explicit file is an error
// - Malformed YAML is an error
// - Validate() rejects negative settle delay, bad extension, escaping source dirs,
//   bad glob patterns, non-positive concurrency, empty host language
// - Validate() reports multiple problems at once and keeps sentinels reachable

func writeConfig(t *testing.T, root, name, content string) {
	t.Helper()
	dir := filepath.Join(root, ConfigDir)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, "python", cfg.HostLanguage)
	assert.False(t, cfg.Verbose)
	assert.True(t, cfg.Suppression.Enabled)
	assert.Equal(t, 500*time.Millisecond, cfg.Suppression.SettleDelay)
	assert.Equal(t, []string{"pylance", "pyright"}, cfg.Suppression.Analyzers)
	assert.True(t, cfg.Annotation.Enabled)
	assert.Equal(t, ".jac", cfg.Resolver.Extension)
	assert.Equal(t, []string{"src", "lib"}, cfg.Resolver.SourceDirs)
	assert.NotEmpty(t, cfg.Workspace.Include)
	assert.NotEmpty(t, cfg.Workspace.Ignore)
	assert.Equal(t, 8, cfg.Workspace.Concurrency)

	assert.NoError(t, Validate(cfg))
	assert.Len(t, cfg.ResolverOptions(), 2)
}

func TestLoad_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)

	expected := Default()
	assert.Equal(t, expected.HostLanguage, cfg.HostLanguage)
	assert.Equal(t, expected.Suppression, cfg.Suppression)
	assert.Equal(t, expected.Resolver, cfg.Resolver)
	assert.Equal(t, expected.Workspace.Concurrency, cfg.Workspace.Concurrency)
}

func TestLoad_ReadsConfigYml(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "config.yml", `
verbose: true
suppression:
  enabled: false
  settle_delay: 250ms
  analyzers: [basedpyright]
annotation:
  enabled: true
resolver:
  source_dirs: [src, lib, jac_modules]
workspace:
  concurrency: 2
`)

	cfg, err := NewLoader(root).Load()
	require.NoError(t, err)

	assert.True(t, cfg.Verbose)
	assert.False(t, cfg.Suppression.Enabled)
	assert.Equal(t, 250*time.Millisecond, cfg.Suppression.SettleDelay)
	assert.Equal(t, []string{"basedpyright"}, cfg.Suppression.Analyzers)
	assert.Equal(t, []string{"src", "lib", "jac_modules"}, cfg.Resolver.SourceDirs)
	assert.Equal(t, 2, cfg.Workspace.Concurrency)

	// Unset keys keep defaults
	assert.Equal(t, ".jac", cfg.Resolver.Extension)
	assert.Equal(t, "python", cfg.HostLanguage)
}

func TestLoad_ReadsConfigYaml(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "config.yaml", "annotation:\n  enabled: false\n")

	cfg, err := NewLoader(root).Load()
	require.NoError(t, err)
	assert.False(t, cfg.Annotation.Enabled)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "config.yml", "suppression:\n  enabled: true\n  settle_delay: 250ms\n")

	t.Setenv("JACBRIDGE_SUPPRESSION_ENABLED", "false")
	t.Setenv("JACBRIDGE_SUPPRESSION_SETTLE_DELAY", "1s")
	t.Setenv("JACBRIDGE_VERBOSE", "true")

	cfg, err := NewLoader(root).Load()
	require.NoError(t, err)
	assert.False(t, cfg.Suppression.Enabled)
	assert.Equal(t, time.Second, cfg.Suppression.SettleDelay)
	assert.True(t, cfg.Verbose)
}

func TestLoad_ExplicitFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("resolver:\n  extension: jacx\n"), 0644))

	cfg, err := NewFileLoader(root, path).Load()
	require.NoError(t, err)
	assert.Equal(t, "jacx", cfg.Resolver.Extension)

	_, err = NewFileLoader(root, filepath.Join(root, "missing.yml")).Load()
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "config.yml", "suppression: [unclosed\n")

	_, err := NewLoader(root).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "config.yml", "workspace:\n  concurrency: 0\n")

	_, err := NewLoader(root).Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConcurrency))
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"empty host language", func(c *Config) { c.HostLanguage = " " }, ErrEmptyHostLanguage},
		{"negative settle delay", func(c *Config) { c.Suppression.SettleDelay = -time.Second }, ErrInvalidSettleDelay},
		{"empty extension", func(c *Config) { c.Resolver.Extension = "." }, ErrInvalidExtension},
		{"extension with separator", func(c *Config) { c.Resolver.Extension = "a/b" }, ErrInvalidExtension},
		{"absolute source dir", func(c *Config) { c.Resolver.SourceDirs = []string{"/opt/jac"} }, ErrInvalidSourceDir},
		{"escaping source dir", func(c *Config) { c.Resolver.SourceDirs = []string{"../shared"} }, ErrInvalidSourceDir},
		{"bad glob", func(c *Config) { c.Workspace.Ignore = []string{"[unclosed"} }, ErrInvalidPattern},
		{"zero concurrency", func(c *Config) { c.Workspace.Concurrency = 0 }, ErrInvalidConcurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := Default()
	cfg.HostLanguage = ""
	cfg.Workspace.Concurrency = -1

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.True(t, errors.Is(err, ErrEmptyHostLanguage))
	assert.True(t, errors.Is(err, ErrInvalidConcurrency))
}
