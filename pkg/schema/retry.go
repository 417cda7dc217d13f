package schema

import (
	"context"
	"fmt"
)

// RetryFunc obtains a corrected candidate string from the caller's model,
// given the rendered fix prompt.
type RetryFunc func(ctx context.Context, fixPrompt string) (string, error)

// RetryOptions configures ValidateWithRetry.
type RetryOptions struct {
	// Schema to validate against. Required.
	Schema *Schema

	// SchemaName labels the schema in the fix prompt.
	SchemaName string

	// Retry produces a replacement candidate. Required when MaxRetries > 0.
	Retry RetryFunc

	// MaxRetries is the number of repair attempts after the initial
	// validation. Zero means the default of exactly one.
	MaxRetries int
}

// RetryResult is the outcome of ValidateWithRetry.
type RetryResult struct {
	Result

	// Retried is true when at least one repair attempt was made before
	// this result was produced.
	Retried bool

	// Attempts counts validations performed (initial + repairs).
	Attempts int
}

// ValidateWithRetry extracts and validates initialResponse; on failure it
// builds the fix prompt, asks Retry for a corrected candidate, and validates
// again, up to MaxRetries repair attempts (default one).
//
// It returns an error only when the retry function itself fails; a response
// that never validates comes back as a RetryResult with Valid false and the
// last set of violations.
func ValidateWithRetry(ctx context.Context, initialResponse string, opts RetryOptions) (RetryResult, error) {
	if opts.Schema == nil {
		return RetryResult{}, fmt.Errorf("schema is required")
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}
	if opts.Retry == nil {
		maxRetries = 0
	}

	candidate := initialResponse
	attempts := 0
	for {
		attempts++
		res := SafeParse(opts.Schema, ExtractJSON(candidate))
		if res.Valid {
			return RetryResult{Result: res, Retried: attempts > 1, Attempts: attempts}, nil
		}
		if attempts > maxRetries {
			return RetryResult{Result: res, Retried: attempts > 1, Attempts: attempts}, nil
		}

		prompt := GenerateFixPrompt(opts.SchemaName, candidate, res.Errors)
		next, err := opts.Retry(ctx, prompt)
		if err != nil {
			return RetryResult{Result: res, Retried: true, Attempts: attempts},
				fmt.Errorf("retry attempt %d: %w", attempts, err)
		}
		candidate = next
	}
}
