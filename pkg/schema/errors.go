package schema

import (
	"fmt"
	"strings"
)

// Error codes attached to FieldError values.
const (
	CodeTypeMismatch = "type_mismatch"
	CodeRequired     = "required"
	CodeEnum         = "enum"
	CodeMin          = "min"
	CodeMax          = "max"
	CodeMinLength    = "min_length"
	CodeMaxLength    = "max_length"
	CodeParse        = "parse_error"
)

// FieldError is one structural violation at a path inside the value.
// Path is empty for the root value; nested paths read "a.b[2].c".
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e FieldError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// Result is the outcome of a validation. On success Data holds the parsed
// (or passed-through) value; on failure Errors lists every violation found.
type Result struct {
	Valid  bool         `json:"valid"`
	Data   any          `json:"data,omitempty"`
	Errors []FieldError `json:"errors,omitempty"`
}

// ErrorSummary joins all violations as "path: message" lines.
func (r Result) ErrorSummary() string {
	lines := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		lines = append(lines, e.Error())
	}
	return strings.Join(lines, "; ")
}

// Err converts a failed result into a single error, nil for a valid one.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return fmt.Errorf("validation failed: %s", r.ErrorSummary())
}
