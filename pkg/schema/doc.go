// Package schema validates JSON-shaped task output against a declarative
// schema description and drives the one-shot fix-retry repair cycle.
//
// A Schema is a tagged union of structural constraints (type, required
// fields, enum membership, numeric range, string length) interpreted by one
// generic validator. Validation is structural only: it never executes
// business rules.
//
// The repair cycle works on raw model output: ExtractJSON pulls a JSON
// candidate out of surrounding prose or code fences, Validate checks it, and
// on failure GenerateFixPrompt renders a deterministic instruction that
// ValidateWithRetry hands to a caller-supplied retry function. Exactly one
// repair attempt is the default contract.
package schema
