// validate.go - Startup configuration validation.
//
// Collects every problem with the environment before the service starts so
// an operator sees all of them at once instead of one per restart.
package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// FieldError represents a configuration validation error.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("config validation failed for %s: %s", e.Field, e.Message)
}

// Validator accumulates configuration errors.
type Validator struct {
	errors []FieldError
}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{
		errors: make([]FieldError, 0),
	}
}

// AddError adds a validation error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Err returns nil, or one error listing every problem.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d error(s):\n", len(v.errors)))
	for i, err := range v.errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return fmt.Errorf("%s", sb.String())
}

// ValidateRequired records an error when value is empty.
func (v *Validator) ValidateRequired(key, value string) {
	if value == "" {
		v.AddError(key, "required environment variable not set")
	}
}

// ValidateURL validates that a value is a valid URL.
func (v *Validator) ValidateURL(key, value string) {
	if value == "" {
		return // Skip validation if empty (check with ValidateRequired first)
	}

	parsed, err := url.Parse(value)
	if err != nil {
		v.AddError(key, fmt.Sprintf("invalid URL format: %v", err))
		return
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		v.AddError(key, "URL must use http or https scheme")
	}
}

// ValidateAddr validates a listen address in ":port" or "host:port" form.
func (v *Validator) ValidateAddr(key, value string) {
	if value == "" {
		return
	}

	i := strings.LastIndex(value, ":")
	if i < 0 {
		v.AddError(key, "address must be in host:port or :port form")
		return
	}

	port, err := strconv.Atoi(value[i+1:])
	if err != nil {
		v.AddError(key, "port must be a number")
		return
	}

	if port < 1 || port > 65535 {
		v.AddError(key, "port must be between 1 and 65535")
	}
}

// ValidateEnum validates that a value is one of allowed options.
func (v *Validator) ValidateEnum(key, value string, allowed []string) {
	if value == "" {
		return
	}

	for _, opt := range allowed {
		if value == opt {
			return
		}
	}

	v.AddError(key, fmt.Sprintf("must be one of: %s (got: %s)", strings.Join(allowed, ", "), value))
}

// Int parses value as an integer no smaller than floor, returning def when
// value is empty or invalid (the error is recorded).
func (v *Validator) Int(key, value string, def, floor int) int {
	if value == "" {
		return def
	}

	num, err := strconv.Atoi(value)
	if err != nil {
		v.AddError(key, "must be a valid integer")
		return def
	}

	if num < floor {
		v.AddError(key, fmt.Sprintf("must be at least %d", floor))
		return def
	}
	return num
}

// Duration parses value as a positive time.Duration string.
func (v *Validator) Duration(key, value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		v.AddError(key, "must be a positive duration (e.g., 24h, 90m)")
		return def
	}
	return d
}

// Bool parses "true"/"false" (case-insensitive); empty returns def.
func (v *Validator) Bool(key, value string, def bool) bool {
	switch strings.ToLower(value) {
	case "":
		return def
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		v.AddError(key, "must be true or false")
		return def
	}
}
