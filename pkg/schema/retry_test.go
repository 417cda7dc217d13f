package schema_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcfactory/arc/pkg/schema"
)

func ratingSchema() *schema.Schema {
	return &schema.Schema{
		Type:     schema.Object,
		Required: []string{"rating"},
		Properties: map[string]*schema.Schema{
			"rating": {Type: schema.String, Enum: []any{"buy", "hold", "sell"}},
		},
	}
}

func TestValidateWithRetry_RepairSucceeds(t *testing.T) {
	calls := 0
	res, err := schema.ValidateWithRetry(context.Background(), `{"rating":"mega buy"}`, schema.RetryOptions{
		Schema:     ratingSchema(),
		SchemaName: "rating",
		Retry: func(_ context.Context, fixPrompt string) (string, error) {
			calls++
			assert.Contains(t, fixPrompt, `"rating" schema`)
			assert.Contains(t, fixPrompt, "rating: value mega buy is not a permitted enum member")
			assert.Contains(t, fixPrompt, `{"rating":"mega buy"}`, "original embedded verbatim")
			return `{"rating":"buy"}`, nil
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "retry function invoked exactly once")
	assert.True(t, res.Valid)
	assert.True(t, res.Retried)
	assert.Equal(t, 2, res.Attempts)
}

func TestValidateWithRetry_ValidFirstTry(t *testing.T) {
	res, err := schema.ValidateWithRetry(context.Background(), "```json\n{\"rating\":\"hold\"}\n```", schema.RetryOptions{
		Schema: ratingSchema(),
		Retry: func(_ context.Context, _ string) (string, error) {
			t.Fatal("retry must not be invoked on valid input")
			return "", nil
		},
	})
	require.NoError(t, err)

	assert.True(t, res.Valid)
	assert.False(t, res.Retried)
	assert.Equal(t, 1, res.Attempts)
}

func TestValidateWithRetry_RepairStillInvalid(t *testing.T) {
	calls := 0
	res, err := schema.ValidateWithRetry(context.Background(), `{"rating":1}`, schema.RetryOptions{
		Schema: ratingSchema(),
		Retry: func(_ context.Context, _ string) (string, error) {
			calls++
			return `{"rating":2}`, nil
		},
	})
	require.NoError(t, err, "an invalid final result is not an error")

	assert.Equal(t, 1, calls, "default contract is a single repair attempt")
	assert.False(t, res.Valid)
	assert.True(t, res.Retried)
	assert.Equal(t, 2, res.Attempts)
	assert.NotEmpty(t, res.Errors)
}

func TestValidateWithRetry_RetryFnError(t *testing.T) {
	boom := errors.New("model unavailable")
	_, err := schema.ValidateWithRetry(context.Background(), `not json`, schema.RetryOptions{
		Schema: ratingSchema(),
		Retry: func(_ context.Context, _ string) (string, error) {
			return "", boom
		},
	})
	assert.ErrorIs(t, err, boom)
}

func TestValidateWithRetry_MultipleRetries(t *testing.T) {
	calls := 0
	res, err := schema.ValidateWithRetry(context.Background(), `{}`, schema.RetryOptions{
		Schema:     ratingSchema(),
		MaxRetries: 3,
		Retry: func(_ context.Context, _ string) (string, error) {
			calls++
			if calls < 3 {
				return `{}`, nil
			}
			return `{"rating":"sell"}`, nil
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, calls)
	assert.True(t, res.Valid)
	assert.True(t, res.Retried)
	assert.Equal(t, 4, res.Attempts)
}

func TestGenerateFixPrompt_Deterministic(t *testing.T) {
	errs := []schema.FieldError{
		{Path: "ticker", Message: "required field is missing", Code: schema.CodeRequired},
		{Path: "", Message: "expected object, got array", Code: schema.CodeTypeMismatch},
	}

	first := schema.GenerateFixPrompt("thesis", `[1]`, errs)
	second := schema.GenerateFixPrompt("thesis", `[1]`, errs)
	assert.Equal(t, first, second)

	assert.Contains(t, first, "- ticker: required field is missing")
	assert.Contains(t, first, "- (root): expected object, got array")
	assert.Contains(t, first, "Return only the corrected JSON")
	assert.True(t, strings.Contains(first, "[1]"))
}
