package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "mailbox.capacity")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// Bounds for the mailbox region size.
const (
	MinMailboxCapacity = 64
	MaxMailboxCapacity = 1 << 20
)

// Upper bound for both poll intervals.
const maxPollIntervalMs = 1000

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidThemes returns the list of built-in TUI themes
func ValidThemes() []string {
	return []string{"default", "monokai", "nord"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateMailbox()...)
	errors = append(errors, validatePollInterval("engine.poll_interval_ms", c.Engine.PollIntervalMs)...)
	errors = append(errors, validatePollInterval("frontend.poll_interval_ms", c.Frontend.PollIntervalMs)...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateTUI()...)

	return errors
}

func (c *Config) validateMailbox() []ValidationError {
	var errors []ValidationError

	if c.Mailbox.Capacity < MinMailboxCapacity || c.Mailbox.Capacity > MaxMailboxCapacity {
		errors = append(errors, ValidationError{
			Field:   "mailbox.capacity",
			Value:   c.Mailbox.Capacity,
			Message: fmt.Sprintf("must be between %d and %d bytes", MinMailboxCapacity, MaxMailboxCapacity),
		})
	}

	if c.Mailbox.Dir != "" && !filepath.IsAbs(c.Mailbox.Dir) {
		errors = append(errors, ValidationError{
			Field:   "mailbox.dir",
			Value:   c.Mailbox.Dir,
			Message: "must be an absolute path",
		})
	}

	return errors
}

func validatePollInterval(field string, ms int) []ValidationError {
	if ms <= 0 || ms > maxPollIntervalMs {
		return []ValidationError{{
			Field:   field,
			Value:   ms,
			Message: fmt.Sprintf("must be between 1 and %d", maxPollIntervalMs),
		}}
	}
	return nil
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	const maxLogSizeMB = 1000
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}

func (c *Config) validateTUI() []ValidationError {
	if c.TUI.Theme != "" && !slices.Contains(ValidThemes(), c.TUI.Theme) {
		return []ValidationError{{
			Field:   "tui.theme",
			Value:   c.TUI.Theme,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidThemes(), ", ")),
		}}
	}
	return nil
}
