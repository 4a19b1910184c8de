package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

var (
	// ErrEmptyHostLanguage indicates a missing host language identifier
	ErrEmptyHostLanguage = errors.New("empty host language")

	// ErrInvalidSettleDelay indicates a negative settle delay
	ErrInvalidSettleDelay = errors.New("invalid settle delay")

	// ErrInvalidExtension indicates an unusable module extension
	ErrInvalidExtension = errors.New("invalid module extension")

	// ErrInvalidSourceDir indicates a source dir that escapes the workspace root
	ErrInvalidSourceDir = errors.New("invalid source directory")

	// ErrInvalidPattern indicates a glob pattern that does not compile
	ErrInvalidPattern = errors.New("invalid glob pattern")

	// ErrInvalidConcurrency indicates a non-positive scan concurrency
	ErrInvalidConcurrency = errors.New("invalid concurrency")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if strings.TrimSpace(cfg.HostLanguage) == "" {
		errs = append(errs, fmt.Errorf("%w: host_language is required", ErrEmptyHostLanguage))
	}

	if err := validateSuppression(&cfg.Suppression); err != nil {
		errs = append(errs, err)
	}

	if err := validateResolver(&cfg.Resolver); err != nil {
		errs = append(errs, err)
	}

	if err := validateWorkspace(&cfg.Workspace); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateSuppression(cfg *SuppressionConfig) error {
	// Analyzers may be empty; the classifier falls back to its defaults.
	if cfg.SettleDelay < 0 {
		return fmt.Errorf("%w: settle_delay cannot be negative, got %s", ErrInvalidSettleDelay, cfg.SettleDelay)
	}
	return nil
}

func validateResolver(cfg *ResolverConfig) error {
	var errs []error

	ext := strings.TrimPrefix(strings.TrimSpace(cfg.Extension), ".")
	if ext == "" || strings.ContainsAny(ext, `/\. `) {
		errs = append(errs, fmt.Errorf("%w: got '%s'", ErrInvalidExtension, cfg.Extension))
	}

	for _, dir := range cfg.SourceDirs {
		clean := strings.TrimSpace(dir)
		if clean == "" || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, "..") {
			errs = append(errs, fmt.Errorf("%w: '%s' must be relative to the workspace root", ErrInvalidSourceDir, dir))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateWorkspace(cfg *WorkspaceConfig) error {
	var errs []error

	for _, pattern := range append(append([]string(nil), cfg.Include...), cfg.Ignore...) {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %v", ErrInvalidPattern, pattern, err))
		}
	}

	if cfg.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("%w: concurrency must be positive, got %d", ErrInvalidConcurrency, cfg.Concurrency))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
// Sentinel errors remain reachable through errors.Is.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return &validationError{msg: fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - ")), errs: errs}
}

type validationError struct {
	msg  string
	errs []error
}

func (e *validationError) Error() string   { return e.msg }
func (e *validationError) Unwrap() []error { return e.errs }
