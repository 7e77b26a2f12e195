package config

import (
	"fmt"
	"strings"
)

// ValidationError is a single configuration problem.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// ValidationErrors collects every problem found in one pass.
type ValidationErrors struct {
	Errors []*ValidationError
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Add appends an error to the collection.
func (e *ValidationErrors) Add(field, message string) {
	e.Errors = append(e.Errors, &ValidationError{Field: field, Message: message})
}

// HasErrors reports whether anything was collected.
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// Validate applies the semantic rules. It expects defaults to be filled in
// already; call it on a Parse/Load result or after applyDefaults.
func (c *Config) Validate() error {
	errs := &ValidationErrors{}

	if c.Listen == "" {
		errs.Add("listen", "listen address is required")
	}
	if c.Workers < 0 {
		errs.Add("workers", "must be >= 0 (0 means one per CPU)")
	}
	if c.QueueSize < 1 {
		errs.Add("queueSize", "must be >= 1")
	}
	if c.RequestTimeout <= 0 {
		errs.Add("requestTimeout", "must be a positive duration")
	}

	switch c.Source {
	case SourceThread, SourceProcess:
	default:
		errs.Add("source", fmt.Sprintf("unknown source %q (want thread or process)", c.Source))
	}
	if c.Source == SourceProcess && c.Workers > 1 {
		errs.Add("source", "process source readings are only attributable with workers: 1")
	}

	if c.SieveLimit < 2 {
		errs.Add("sieveLimit", "must be >= 2")
	}
	if c.TargetPrimes < 1 {
		errs.Add("targetPrimes", "must be >= 1")
	}

	switch c.Log.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		errs.Add("log.level", fmt.Sprintf("unknown level %q", c.Log.Level))
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
