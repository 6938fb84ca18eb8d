package models

import "fmt"

// ParseError reports a raw listing field that could not be normalized.
// The offer carrying the field is dropped; the row keeps going.
type ParseError struct {
	Field  string
	Value  string
	Reason string
}

// NewParseError builds a ParseError for one raw field.
func NewParseError(field, value, reason string) *ParseError {
	return &ParseError{Field: field, Value: value, Reason: reason}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s %q: %s", e.Field, e.Value, e.Reason)
}

// ConfigurationError reports a malformed or missing row configuration
// field. The row is skipped and logged; the batch keeps going.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("row configuration %s: %s", e.Field, e.Reason)
}
