package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/weiihann/threadbench/harness"
	"github.com/weiihann/threadbench/sweep"
)

// ValidationError represents a configuration validation error.
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

// ValidationErrors is a collection of validation errors.
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

// Add adds an error to the collection.
func (e *ValidationErrors) Add(field, message string) {
	e.Errors = append(e.Errors, &ValidationError{Field: field, Message: message})
}

// HasErrors returns true if there are any errors.
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// Validate checks the whole configuration.
//
// Returns nil if valid, or a ValidationErrors containing every problem
// found.
func (c *Config) Validate() error {
	errs := &ValidationErrors{}

	if strings.TrimSpace(c.Dataset) == "" {
		errs.Add("dataset", "dataset is required")
	}

	if c.Runs < 1 {
		errs.Add("runs", fmt.Sprintf("must be at least 1, got %d", c.Runs))
	}

	validateThreads(c.Threads, errs)
	validateVariants(c.Variants, errs)

	if _, err := harness.ParseExitPolicy(c.ExitPolicy); err != nil {
		errs.Add("exitPolicy", fmt.Sprintf(
			"%s (expected one of %v)", err, harness.ExitPolicies(),
		))
	}

	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			errs.Add("timeout", fmt.Sprintf("invalid duration: %s", err))
		} else if d < 0 {
			errs.Add("timeout", "must not be negative")
		}
	}

	for i, kv := range c.Env {
		if !strings.Contains(kv, "=") {
			errs.Add(fmt.Sprintf("env[%d]", i), fmt.Sprintf("%q is not KEY=VALUE", kv))
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func validateThreads(threads []int, errs *ValidationErrors) {
	if len(threads) == 0 {
		errs.Add("threads", "at least one thread count is required")
		return
	}

	seen := make(map[int]bool, len(threads))
	for i, n := range threads {
		field := fmt.Sprintf("threads[%d]", i)
		if n < 0 {
			errs.Add(field, fmt.Sprintf("must not be negative, got %d", n))
		}
		if seen[n] {
			errs.Add(field, fmt.Sprintf("duplicate thread count %d", n))
		}
		seen[n] = true
	}
}

func validateVariants(variants []harness.Variant, errs *ValidationErrors) {
	if len(variants) == 0 {
		errs.Add("variants", "at least one variant is required")
		return
	}

	seen := make(map[string]bool, len(variants))
	for i, v := range variants {
		field := fmt.Sprintf("variants[%d]", i)

		if v.Label == "" {
			errs.Add(field+".label", "label is required")
		} else if seen[v.Label] {
			errs.Add(field+".label", fmt.Sprintf("duplicate label %q", v.Label))
		}
		seen[v.Label] = true

		if v.Label == sweep.KeyColumn {
			errs.Add(field+".label", "label collides with the thread-count column")
		}

		if v.Program == "" {
			errs.Add(field+".program", "program is required")
		}
	}
}
