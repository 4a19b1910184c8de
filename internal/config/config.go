// Package config provides configuration loading for jacbridge.
//
// Configuration is read once per activation from .jacbridge/config.yml (or .yaml) in the
// workspace root, with JACBRIDGE_* environment variable overrides.
//
// Configuration Hierarchy (highest to lowest priority):
//  1. Environment variables (JACBRIDGE_*)
//  2. Project config (.jacbridge/config.yml)
//  3. Built-in defaults
//
// Nested keys map to env vars with underscores, e.g. JACBRIDGE_SUPPRESSION_ENABLED.
package config

import (
	"time"

	"github.com/mvp-joe/jacbridge/internal/diagnostic"
	"github.com/mvp-joe/jacbridge/internal/document"
	"github.com/mvp-joe/jacbridge/internal/resolver"
)

// Config represents the complete jacbridge configuration.
type Config struct {
	HostLanguage string            `yaml:"host_language" mapstructure:"host_language"` // language id of host documents
	Verbose      bool              `yaml:"verbose" mapstructure:"verbose"`             // status messages only, never behavior
	Suppression  SuppressionConfig `yaml:"suppression" mapstructure:"suppression"`
	Annotation   AnnotationConfig  `yaml:"annotation" mapstructure:"annotation"`
	Resolver     ResolverConfig    `yaml:"resolver" mapstructure:"resolver"`
	Workspace    WorkspaceConfig   `yaml:"workspace" mapstructure:"workspace"`
}

// SuppressionConfig configures the diagnostic suppression pass.
type SuppressionConfig struct {
	Enabled     bool          `yaml:"enabled" mapstructure:"enabled"`
	SettleDelay time.Duration `yaml:"settle_delay" mapstructure:"settle_delay"` // wait after a diagnostics change before reconciling
	Analyzers   []string      `yaml:"analyzers" mapstructure:"analyzers"`       // analyzer source tags considered, e.g. ["pylance"]
}

// AnnotationConfig configures the annotation pass.
type AnnotationConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// ResolverConfig configures the Jac module search path.
type ResolverConfig struct {
	Extension  string   `yaml:"extension" mapstructure:"extension"`     // module file extension, e.g. ".jac"
	SourceDirs []string `yaml:"source_dirs" mapstructure:"source_dirs"` // conventional dirs under the workspace root
}

// WorkspaceConfig controls workspace-wide scans and module watching.
type WorkspaceConfig struct {
	Include     []string `yaml:"include" mapstructure:"include"`         // glob patterns for host files
	Ignore      []string `yaml:"ignore" mapstructure:"ignore"`           // glob patterns to skip
	Concurrency int      `yaml:"concurrency" mapstructure:"concurrency"` // documents scanned in parallel
}

// DefaultSettleDelay is how long the suppression pass waits for the analyzer to finish
// publishing before it reconciles a document.
const DefaultSettleDelay = 500 * time.Millisecond

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		HostLanguage: document.LanguagePython,
		Verbose:      false,
		Suppression: SuppressionConfig{
			Enabled:     true,
			SettleDelay: DefaultSettleDelay,
			Analyzers:   append([]string(nil), diagnostic.DefaultAnalyzers...),
		},
		Annotation: AnnotationConfig{
			Enabled: true,
		},
		Resolver: ResolverConfig{
			Extension:  resolver.DefaultExtension,
			SourceDirs: append([]string(nil), resolver.DefaultSourceDirs...),
		},
		Workspace: WorkspaceConfig{
			Include: []string{
				"**/*.py",
				"**/*.pyi",
			},
			Ignore: []string{
				".git/**",
				".venv/**",
				"venv/**",
				"node_modules/**",
				"__pycache__/**",
				"build/**",
				"dist/**",
				".jacbridge/**",
			},
			Concurrency: 8,
		},
	}
}

// ResolverOptions converts the resolver section into resolver options.
func (c *Config) ResolverOptions() []resolver.Option {
	return []resolver.Option{
		resolver.WithExtension(c.Resolver.Extension),
		resolver.WithSourceDirs(c.Resolver.SourceDirs),
	}
}
