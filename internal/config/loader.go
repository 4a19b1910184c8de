package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ConfigDir is the per-workspace configuration directory.
const ConfigDir = ".jacbridge"

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a new configuration loader for the given workspace root.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// NewFileLoader creates a loader that reads an explicit config file instead of
// searching the workspace's .jacbridge directory.
func NewFileLoader(rootDir, configFile string) Loader {
	return &loader{
		rootDir:    rootDir,
		configFile: configFile,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (JACBRIDGE_*)
// 2. Config file (.jacbridge/config.yml or .jacbridge/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, ConfigDir))
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("JACBRIDGE")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., JACBRIDGE_SUPPRESSION_ENABLED)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("host_language")
	v.BindEnv("verbose")
	v.BindEnv("suppression.enabled")
	v.BindEnv("suppression.settle_delay")
	v.BindEnv("annotation.enabled")
	v.BindEnv("resolver.extension")
	v.BindEnv("workspace.concurrency")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if l.configFile != "" || !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("host_language", defaults.HostLanguage)
	v.SetDefault("verbose", defaults.Verbose)

	v.SetDefault("suppression.enabled", defaults.Suppression.Enabled)
	v.SetDefault("suppression.settle_delay", defaults.Suppression.SettleDelay)
	v.SetDefault("suppression.analyzers", defaults.Suppression.Analyzers)

	v.SetDefault("annotation.enabled", defaults.Annotation.Enabled)

	v.SetDefault("resolver.extension", defaults.Resolver.Extension)
	v.SetDefault("resolver.source_dirs", defaults.Resolver.SourceDirs)

	v.SetDefault("workspace.include", defaults.Workspace.Include)
	v.SetDefault("workspace.ignore", defaults.Workspace.Ignore)
	v.SetDefault("workspace.concurrency", defaults.Workspace.Concurrency)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific workspace root.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
