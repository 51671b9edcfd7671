package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var logLevels = []string{"debug", "info", "warn", "warning", "error"}

// Validate rejects configurations the commands cannot run with.
func (c Config) Validate() error {
	var errs []error

	level := strings.ToLower(strings.TrimSpace(c.LogLevel))
	if level != "" && !slices.Contains(logLevels, level) {
		errs = append(errs, fmt.Errorf("invalid log_level %q (expected debug|info|warn|error)", c.LogLevel))
	}
	if c.Dictionary.Watch && c.Dictionary.Path == "" {
		errs = append(errs, errors.New("dictionary.watch requires dictionary.path"))
	}
	if c.Analysis.Workers < 0 {
		errs = append(errs, fmt.Errorf("analysis.workers must be >= 0, got %d", c.Analysis.Workers))
	}
	if c.Server.MaxTextBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_text_bytes must be > 0, got %d", c.Server.MaxTextBytes))
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.request_timeout must be > 0, got %d", c.Server.RequestTimeout))
	}
	if c.Server.ShutdownTimeout < 0 {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout must be >= 0, got %d", c.Server.ShutdownTimeout))
	}
	if c.Server.Workers < 0 {
		errs = append(errs, fmt.Errorf("server.workers must be >= 0, got %d", c.Server.Workers))
	}

	return errors.Join(errs...)
}
