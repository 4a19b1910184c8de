package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mvp-joe/jacbridge/internal/bridge"
	"github.com/mvp-joe/jacbridge/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	rootDir string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jacbridge",
	Short: "jacbridge - Jac module awareness for Python tooling",
	Long: `jacbridge tells Python tooling which imports actually name Jac modules.

It resolves import names against the Jac search path, marks resolved references in
Python files, and replaces analyzer "unresolved import" diagnostics that refer to
Jac modules with informational notes.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <root>/.jacbridge/config.yml)")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "workspace root (default is the current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// workspaceRoot returns the absolute workspace root from --root or the working directory.
func workspaceRoot() (string, error) {
	dir := rootDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve workspace root %s: %w", dir, err)
	}
	return abs, nil
}

// loadConfig reads configuration for root. --verbose turns verbose on but never off.
func loadConfig(root string) (*config.Config, error) {
	loader := config.NewLoader(root)
	if cfgFile != "" {
		loader = config.NewFileLoader(root, cfgFile)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

// newBridge loads configuration and builds a bridge over the workspace root.
func newBridge(opts ...bridge.Option) (*bridge.Bridge, error) {
	root, err := workspaceRoot()
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, err
	}
	return bridge.New(cfg, []string{root}, opts...)
}
